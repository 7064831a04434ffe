package mining

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dathao-chona/SocialMine-Z/internal/interfaces"
	"github.com/dathao-chona/SocialMine-Z/internal/lib"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Cache holds the latest snapshot of all known records. Refreshes replace
// the snapshot pointer atomically, so readers never observe a partially
// built one, and concurrent refresh calls are coalesced into a single
// fetch.
type Cache struct {
	reader           LedgerReader
	fetchConcurrency int

	group      singleflight.Group
	refreshing atomic.Bool
	snapshot   atomic.Pointer[Snapshot]

	log interfaces.ILogger
}

func NewCache(reader LedgerReader, fetchConcurrency int, log interfaces.ILogger) *Cache {
	if fetchConcurrency <= 0 {
		fetchConcurrency = 1
	}
	c := &Cache{
		reader:           reader,
		fetchConcurrency: fetchConcurrency,
		log:              log,
	}
	c.snapshot.Store(&Snapshot{})
	return c
}

// Snapshot returns the current snapshot. Never nil, safe to read from any
// goroutine; the contents are never mutated after the swap.
func (c *Cache) Snapshot() *Snapshot {
	return c.snapshot.Load()
}

func (c *Cache) IsRefreshing() bool {
	return c.refreshing.Load()
}

// Refresh rebuilds the snapshot from the ledger. Callers arriving while a
// refresh is in flight share its result instead of queueing another fetch.
func (c *Cache) Refresh(ctx context.Context) (*Snapshot, error) {
	v, err, _ := c.group.Do("refresh", func() (interface{}, error) {
		return c.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

func (c *Cache) refresh(ctx context.Context) (*Snapshot, error) {
	c.refreshing.Store(true)
	defer c.refreshing.Store(false)

	ids, err := c.reader.GetRecordIDs(ctx)
	if err != nil {
		return nil, lib.WrapError(ErrRefreshFailed, err)
	}

	records := make([]*Record, len(ids))
	var fetchErrors atomic.Int64

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.fetchConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			record, err := c.reader.GetRecord(gCtx, id)
			if err != nil {
				// partial success: the unreadable record is skipped, the
				// snapshot reflects whatever subset was retrievable
				c.log.Warnf("skipping record %s: %s", id, err)
				fetchErrors.Add(1)
				return nil
			}
			records[i] = record
			return nil
		})
	}
	_ = g.Wait()

	fetched := make([]*Record, 0, len(records))
	for _, record := range records {
		if record != nil {
			fetched = append(fetched, record)
		}
	}

	slices.SortStableFunc(fetched, func(a, b *Record) bool {
		return a.Timestamp.After(b.Timestamp)
	})

	snapshot := newSnapshot(fetched, int(fetchErrors.Load()))
	c.snapshot.Store(snapshot)

	c.log.Debugf("refreshed %d records, %d skipped", len(fetched), snapshot.FetchErrors)

	return snapshot, nil
}

// newSnapshot computes aggregates from exactly the record set it is given.
func newSnapshot(records []*Record, fetchErrors int) *Snapshot {
	creators := make(map[common.Address]*Contribution)
	var totalValue uint64
	verified := 0

	for _, record := range records {
		contribution, ok := creators[record.Creator]
		if !ok {
			contribution = &Contribution{Creator: record.Creator}
			creators[record.Creator] = contribution
		}
		if record.Timestamp.After(contribution.LastActive) {
			contribution.LastActive = record.Timestamp
		}
		if !record.IsVerified {
			continue
		}
		verified++
		totalValue += record.DecryptedValue
		contribution.TotalScore += record.DecryptedValue
		contribution.Records++
	}

	leaderboard := make([]Contribution, 0, len(creators))
	for _, contribution := range creators {
		leaderboard = append(leaderboard, *contribution)
	}
	slices.SortStableFunc(leaderboard, func(a, b Contribution) bool {
		return a.TotalScore > b.TotalScore
	})
	for i := range leaderboard {
		leaderboard[i].Rank = i + 1
	}

	avgScore := 0.0
	if verified > 0 {
		avgScore = float64(totalValue) / float64(verified)
	}

	return &Snapshot{
		Records: records,
		Stats: Stats{
			Participants: len(creators),
			TotalValue:   totalValue,
			AvgScore:     avgScore,
		},
		Leaderboard: leaderboard,
		FetchErrors: fetchErrors,
		RefreshedAt: time.Now(),
	}
}
