package contract

import (
	"context"

	"ai-recall-be/internal/entity"
	"ai-recall-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredContentItem pairs an item with its cosine similarity to a query
// embedding.
type ScoredContentItem struct {
	Item       *entity.ContentItem
	Similarity float64
}

type ContentItemRepository interface {
	// Upsert writes an item keyed on (user_id, source_tag, stable_id),
	// replacing document, embedding and metadata in place on conflict.
	Upsert(ctx context.Context, item *entity.ContentItem) error

	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContentItem, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentItem, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// StableIds returns stable id -> recency marker for one owner+source.
	// The sync engine diffs this against the remote set.
	StableIds(ctx context.Context, userId uuid.UUID, sourceTag string) (map[string]int64, error)

	// DeleteByStableIds removes the listed items for one owner+source and
	// reports how many rows went away.
	DeleteByStableIds(ctx context.Context, userId uuid.UUID, sourceTag string, stableIds []string) (int64, error)

	// SearchSimilar runs a cosine nearest-neighbour search scoped to one
	// owner, optionally narrowed to one source tag (empty string means
	// all sources). Ties are broken by the more recent item.
	SearchSimilar(ctx context.Context, embedding []float32, limit int, userId uuid.UUID, sourceTag string, threshold float64) ([]*ScoredContentItem, error)
}
