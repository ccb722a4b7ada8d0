package service

import (
	"context"

	"ai-recall-be/internal/entity"
	"ai-recall-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// Adapters exposing the repositories through the narrow store surfaces
// the sync engine consumes.

type uowContentStore struct {
	uow unitofwork.UnitOfWork
}

func (s *uowContentStore) Upsert(ctx context.Context, item *entity.ContentItem) error {
	return s.uow.ContentItemRepository().Upsert(ctx, item)
}

func (s *uowContentStore) StableIds(ctx context.Context, userId uuid.UUID, sourceTag string) (map[string]int64, error) {
	return s.uow.ContentItemRepository().StableIds(ctx, userId, sourceTag)
}

func (s *uowContentStore) DeleteByStableIds(ctx context.Context, userId uuid.UUID, sourceTag string, stableIds []string) (int64, error) {
	return s.uow.ContentItemRepository().DeleteByStableIds(ctx, userId, sourceTag, stableIds)
}

type uowStateStore struct {
	uow unitofwork.UnitOfWork
}

func (s *uowStateStore) Get(ctx context.Context, userId uuid.UUID, sourceTag string) (*entity.SyncState, error) {
	return s.uow.SyncStateRepository().Get(ctx, userId, sourceTag)
}

func (s *uowStateStore) Save(ctx context.Context, state *entity.SyncState) error {
	return s.uow.SyncStateRepository().Save(ctx, state)
}
