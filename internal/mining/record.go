package mining

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Record is one encrypted contribution record as stored on the ledger.
// Every field except IsVerified and DecryptedValue is immutable after
// creation; IsVerified flips to true exactly once, when a decryption proof
// for the record is accepted on-chain, and DecryptedValue is meaningful
// only from that point on.
type Record struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	EncryptedValue common.Hash    `json:"encryptedValue"`
	PublicValue1   uint64         `json:"publicValue1"`
	PublicValue2   uint64         `json:"publicValue2"`
	IsVerified     bool           `json:"isVerified"`
	DecryptedValue uint64         `json:"decryptedValue"`
	Creator        common.Address `json:"creator"`
	Timestamp      time.Time      `json:"timestamp"`
}

// CreateRecordParams is the payload of a submission. Ciphertext and Proof
// are produced together by the encryption bridge and are only valid as a
// pair. PublicValue1/2 are reserved plaintext fields, zero-valued at
// creation.
type CreateRecordParams struct {
	ID           string
	Name         string
	Ciphertext   common.Hash
	Proof        []byte
	PublicValue1 uint64
	PublicValue2 uint64
	Description  string
}

// Stats are aggregates over the verified subset of a snapshot.
type Stats struct {
	Participants int     `json:"participants"`
	TotalValue   uint64  `json:"totalValue"`
	AvgScore     float64 `json:"avgScore"`
}

// Contribution is one leaderboard row: the verified total of a single
// creator.
type Contribution struct {
	Creator    common.Address `json:"creator"`
	Rank       int            `json:"rank"`
	TotalScore uint64         `json:"totalScore"`
	Records    int            `json:"records"`
	LastActive time.Time      `json:"lastActive"`
}

// Snapshot is an immutable view of all records known as of one refresh,
// with aggregates recomputed from exactly the records it holds. It is
// replaced wholesale on refresh, never patched in place.
type Snapshot struct {
	Records     []*Record      `json:"records"`
	Stats       Stats          `json:"stats"`
	Leaderboard []Contribution `json:"leaderboard"`
	FetchErrors int            `json:"fetchErrors"`
	RefreshedAt time.Time      `json:"refreshedAt"`
}
