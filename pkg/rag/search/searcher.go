package search

import (
	"context"
	"fmt"
	"log"

	"ai-recall-be/internal/entity"
	"ai-recall-be/pkg/syncengine"

	"github.com/google/uuid"
)

// Hit is one retrieved record with its cosine similarity to the query.
type Hit struct {
	Item       *entity.ContentItem
	Similarity float64
}

// Store is the vector search surface the retriever needs. Results come
// back ordered by similarity, ties broken by newer recency marker.
type Store interface {
	SearchSimilar(ctx context.Context, embedding []float32, limit int, userId uuid.UUID, sourceTag string, threshold float64) ([]Hit, error)
}

// Searcher embeds a query with the same pipeline and dimension contract
// as ingestion and runs an owner-scoped similarity search. Using a
// different embedder here than at ingestion would silently break
// retrieval, which is why the pipeline is shared rather than duplicated.
type Searcher struct {
	pipeline *syncengine.Pipeline
	store    Store
	logger   *log.Logger
}

func NewSearcher(pipeline *syncengine.Pipeline, store Store, logger *log.Logger) *Searcher {
	return &Searcher{
		pipeline: pipeline,
		store:    store,
		logger:   logger,
	}
}

// Search returns up to topK nearest neighbors for the owner. An empty
// sourceTag searches across all connected sources.
func (s *Searcher) Search(ctx context.Context, userId uuid.UUID, query string, topK int, sourceTag string) ([]Hit, error) {
	embedding, err := s.pipeline.EmbedQuery(query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	hits, err := s.store.SearchSimilar(ctx, embedding, topK, userId, sourceTag, 0)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	s.logger.Printf("[RETRIEVAL] user=%s topK=%d hits=%d", userId, topK, len(hits))
	return hits, nil
}
