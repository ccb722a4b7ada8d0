package contract

import (
	"context"

	"ai-recall-be/internal/entity"

	"github.com/google/uuid"
)

type SyncStateRepository interface {
	// Get returns the state for (owner, source), or nil before the first
	// successful run.
	Get(ctx context.Context, userId uuid.UUID, sourceTag string) (*entity.SyncState, error)

	// Save creates or replaces the single state row for (owner, source).
	Save(ctx context.Context, state *entity.SyncState) error

	Delete(ctx context.Context, userId uuid.UUID, sourceTag string) error
	FindAllByUser(ctx context.Context, userId uuid.UUID) ([]*entity.SyncState, error)
}
