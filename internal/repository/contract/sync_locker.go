package contract

import (
	"context"

	"github.com/google/uuid"
)

// SyncLocker enforces at most one in-flight sync run per (owner, source).
// Acquire returns false when a run already holds the pair; the caller
// must reject rather than run concurrently, because two runs racing on
// cursor advancement can duplicate or lose updates. Locks carry a TTL so
// a crashed run cannot wedge the pair forever.
type SyncLocker interface {
	Acquire(ctx context.Context, userId uuid.UUID, sourceTag string) (bool, error)
	Release(ctx context.Context, userId uuid.UUID, sourceTag string) error
}
