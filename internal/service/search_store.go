package service

import (
	"context"

	"ai-recall-be/internal/repository/unitofwork"
	"ai-recall-be/pkg/rag/search"

	"github.com/google/uuid"
)

// repoSearchStore exposes the pgvector-backed repository search to the
// retrieval layer. A fresh unit of work per call keeps the searcher free
// of any transaction started by the surrounding request.
type repoSearchStore struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewSearchStore(uowFactory unitofwork.RepositoryFactory) search.Store {
	return &repoSearchStore{uowFactory: uowFactory}
}

func (s *repoSearchStore) SearchSimilar(ctx context.Context, embedding []float32, limit int, userId uuid.UUID, sourceTag string, threshold float64) ([]search.Hit, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.ContentItemRepository().SearchSimilar(ctx, embedding, limit, userId, sourceTag, threshold)
	if err != nil {
		return nil, err
	}

	hits := make([]search.Hit, 0, len(scored))
	for _, item := range scored {
		hits = append(hits, search.Hit{Item: item.Item, Similarity: item.Similarity})
	}
	return hits, nil
}
