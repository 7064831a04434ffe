package lib

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewRecordID builds a ledger record id from the creation instant and a
// category prefix. The millisecond timestamp keeps ids roughly sortable by
// creation time; the uuid fragment breaks ties between submissions landing
// on the same millisecond.
func NewRecordID(category string, now time.Time) string {
	return fmt.Sprintf("%s-%d-%s", category, now.UnixMilli(), uuid.NewString()[:8])
}
