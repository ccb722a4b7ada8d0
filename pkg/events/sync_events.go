package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeSyncCompleted         = "SYNC_COMPLETED"
	TypeSyncFailed            = "SYNC_FAILED"
	TypeConnectionAuthExpired = "CONNECTION_AUTH_EXPIRED"
)

func NewSyncCompleted(userId uuid.UUID, sourceTag string, added, removed, skipped int) Event {
	return BaseEvent{
		Type: TypeSyncCompleted,
		Data: map[string]interface{}{
			"user_id":       userId.String(),
			"source_tag":    sourceTag,
			"items_added":   added,
			"items_removed": removed,
			"items_skipped": skipped,
		},
		OccurredAt: time.Now(),
	}
}

func NewSyncFailed(userId uuid.UUID, sourceTag string, reason string) Event {
	return BaseEvent{
		Type: TypeSyncFailed,
		Data: map[string]interface{}{
			"user_id":    userId.String(),
			"source_tag": sourceTag,
			"reason":     reason,
		},
		OccurredAt: time.Now(),
	}
}

// NewConnectionAuthExpired fires when a sync run is rejected by the
// platform's auth. The notification consumer mails the owner to
// reconnect.
func NewConnectionAuthExpired(userId uuid.UUID, sourceTag string) Event {
	return BaseEvent{
		Type: TypeConnectionAuthExpired,
		Data: map[string]interface{}{
			"user_id":    userId.String(),
			"source_tag": sourceTag,
		},
		OccurredAt: time.Now(),
	}
}
