package service

import (
	"context"
	"errors"
	"time"

	"ai-recall-be/internal/dto"
	"ai-recall-be/internal/entity"
	"ai-recall-be/internal/repository/specification"
	"ai-recall-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

var ErrConnectionNotFound = errors.New("connection not found")

type IConnectionService interface {
	Connect(ctx context.Context, userId uuid.UUID, req *dto.ConnectSourceRequest) (*dto.ConnectionResponse, error)
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.ConnectionResponse, error)
	Disconnect(ctx context.Context, userId uuid.UUID, sourceTag string) error
}

type connectionService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewConnectionService(uowFactory unitofwork.RepositoryFactory) IConnectionService {
	return &connectionService{
		uowFactory: uowFactory,
	}
}

// Connect stores (or refreshes) the credential for one platform.
// Reconnecting an auth-expired source reactivates it; the next sync run
// picks the new token up.
func (s *connectionService) Connect(ctx context.Context, userId uuid.UUID, req *dto.ConnectSourceRequest) (*dto.ConnectionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.ConnectionRepository().FindOne(ctx,
		specification.OwnedBy{UserID: userId},
		specification.BySourceTag{SourceTag: req.SourceTag},
	)
	if err != nil {
		return nil, err
	}

	var refresh *string
	if req.RefreshToken != "" {
		refresh = &req.RefreshToken
	}

	if existing != nil {
		existing.AccessToken = req.AccessToken
		existing.RefreshToken = refresh
		existing.ExternalUsername = req.ExternalUsername
		existing.Status = entity.ConnectionStatusActive
		existing.UpdatedAt = time.Now()
		if err := uow.ConnectionRepository().Update(ctx, existing); err != nil {
			return nil, err
		}
		return mapConnection(existing, nil), nil
	}

	conn := entity.Connection{
		Id:               uuid.New(),
		UserId:           userId,
		SourceTag:        req.SourceTag,
		AccessToken:      req.AccessToken,
		RefreshToken:     refresh,
		ExternalUsername: req.ExternalUsername,
		Status:           entity.ConnectionStatusActive,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if err := uow.ConnectionRepository().Create(ctx, &conn); err != nil {
		return nil, err
	}
	return mapConnection(&conn, nil), nil
}

func (s *connectionService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.ConnectionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conns, err := uow.ConnectionRepository().FindAll(ctx, specification.OwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}

	states, err := uow.SyncStateRepository().FindAllByUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	lastSynced := make(map[string]*time.Time, len(states))
	for _, st := range states {
		if st.LastDeltaCursor > 0 {
			at := time.UnixMilli(st.LastDeltaCursor)
			lastSynced[st.SourceTag] = &at
		}
	}

	result := make([]*dto.ConnectionResponse, 0, len(conns))
	for _, conn := range conns {
		result = append(result, mapConnection(conn, lastSynced[conn.SourceTag]))
	}
	return result, nil
}

// Disconnect removes the connection together with the pair's sync state
// and mirrored content, inside one transaction: a half-removed source
// would let retrieval keep serving content the user asked to drop.
func (s *connectionService) Disconnect(ctx context.Context, userId uuid.UUID, sourceTag string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conn, err := uow.ConnectionRepository().FindOne(ctx,
		specification.OwnedBy{UserID: userId},
		specification.BySourceTag{SourceTag: sourceTag},
	)
	if err != nil {
		return err
	}
	if conn == nil {
		return ErrConnectionNotFound
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ConnectionRepository().Delete(ctx, conn.Id); err != nil {
		return err
	}
	if err := uow.SyncStateRepository().Delete(ctx, userId, sourceTag); err != nil {
		return err
	}

	stableIds, err := uow.ContentItemRepository().StableIds(ctx, userId, sourceTag)
	if err != nil {
		return err
	}
	if len(stableIds) > 0 {
		ids := make([]string, 0, len(stableIds))
		for id := range stableIds {
			ids = append(ids, id)
		}
		if _, err := uow.ContentItemRepository().DeleteByStableIds(ctx, userId, sourceTag, ids); err != nil {
			return err
		}
	}

	return uow.Commit()
}

func mapConnection(conn *entity.Connection, lastSyncedAt *time.Time) *dto.ConnectionResponse {
	return &dto.ConnectionResponse{
		Id:               conn.Id,
		SourceTag:        conn.SourceTag,
		ExternalUsername: conn.ExternalUsername,
		Status:           string(conn.Status),
		CreatedAt:        conn.CreatedAt,
		LastSyncedAt:     lastSyncedAt,
	}
}
