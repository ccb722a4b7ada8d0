package entity

import (
	"time"

	"github.com/google/uuid"
)

// SyncState is the per (owner, source) cursor record. Exactly one row
// exists per pair once the first successful run completes. The counter
// holds the number of successful delta runs since the last full
// reconciliation; it resets to zero when a reconciliation completes.
type SyncState struct {
	Id                     uuid.UUID
	UserId                 uuid.UUID
	SourceTag              string
	LastDeltaCursor        int64 // unix milliseconds; zero until the first run
	LastFullReconciliation *time.Time
	SyncCounter            int
	CredentialRef          uuid.UUID // Connection id; lifecycle owned by the connection service
	LastRunStatus          string
	LastRunError           *string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}
