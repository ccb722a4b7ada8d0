package syncengine

import (
	"context"

	"ai-recall-be/internal/entity"

	"github.com/google/uuid"
)

// ContentStore is the slice of persistence the engine needs: upserts,
// an id-set scan for reconciliation, and targeted deletes. The service
// layer adapts the repository implementations onto it.
type ContentStore interface {
	Upsert(ctx context.Context, item *entity.ContentItem) error

	// StableIds returns stable id -> stored recency marker for every
	// record the owner holds under one source tag.
	StableIds(ctx context.Context, userId uuid.UUID, sourceTag string) (map[string]int64, error)

	DeleteByStableIds(ctx context.Context, userId uuid.UUID, sourceTag string, stableIds []string) (int64, error)
}

// StateStore persists per (owner, source) sync metadata. Get returns
// (nil, nil) before the first successful run.
type StateStore interface {
	Get(ctx context.Context, userId uuid.UUID, sourceTag string) (*entity.SyncState, error)
	Save(ctx context.Context, state *entity.SyncState) error
}
