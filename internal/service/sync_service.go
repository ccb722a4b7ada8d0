package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"ai-recall-be/internal/dto"
	"ai-recall-be/internal/entity"
	"ai-recall-be/internal/pkg/logger"
	"ai-recall-be/internal/repository/contract"
	"ai-recall-be/internal/repository/specification"
	"ai-recall-be/internal/repository/unitofwork"
	"ai-recall-be/pkg/events"
	pktNats "ai-recall-be/pkg/nats"
	"ai-recall-be/pkg/source"
	"ai-recall-be/pkg/syncengine"

	"github.com/google/uuid"
)

var (
	ErrSyncInFlight      = errors.New("a sync run for this source is already in progress")
	ErrSourceNotPollable = errors.New("this source syncs via file upload, not polling")
	ErrUnknownSource     = errors.New("unknown source tag")
)

type ISyncService interface {
	// TriggerSync runs one blocking sync for (owner, source).
	TriggerSync(ctx context.Context, userId uuid.UUID, sourceTag string) (*dto.SyncResultResponse, error)

	// TriggerSyncAsync queues the run and returns immediately.
	TriggerSyncAsync(ctx context.Context, userId uuid.UUID, sourceTag string) (*dto.SyncResultResponse, error)

	// UploadSnapshot replaces the pocket mirror with an uploaded export.
	UploadSnapshot(ctx context.Context, userId uuid.UUID, entries []dto.UploadEntryDTO) (*dto.SyncResultResponse, error)

	Status(ctx context.Context, userId uuid.UUID) ([]*dto.SyncStatusResponse, error)
}

type syncService struct {
	uowFactory       unitofwork.RepositoryFactory
	providers        map[string]source.Provider
	pipeline         *syncengine.Pipeline
	locker           contract.SyncLocker
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	log              logger.ILogger
	engineLog        *log.Logger
}

func NewSyncService(
	uowFactory unitofwork.RepositoryFactory,
	providers map[string]source.Provider,
	pipeline *syncengine.Pipeline,
	locker contract.SyncLocker,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	appLogger logger.ILogger,
	engineLog *log.Logger,
) ISyncService {
	return &syncService{
		uowFactory:       uowFactory,
		providers:        providers,
		pipeline:         pipeline,
		locker:           locker,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		log:              appLogger,
		engineLog:        engineLog,
	}
}

func (s *syncService) TriggerSync(ctx context.Context, userId uuid.UUID, sourceTag string) (*dto.SyncResultResponse, error) {
	if sourceTag == source.TagPocket {
		return nil, ErrSourceNotPollable
	}
	provider, ok := s.providers[sourceTag]
	if !ok {
		return nil, ErrUnknownSource
	}

	conn, err := s.activeConnection(ctx, userId, sourceTag)
	if err != nil {
		return nil, err
	}

	return s.runLocked(ctx, conn, func(ctx context.Context, engine *syncengine.Engine) (*syncengine.Result, error) {
		return engine.Run(ctx, conn, provider)
	})
}

func (s *syncService) TriggerSyncAsync(ctx context.Context, userId uuid.UUID, sourceTag string) (*dto.SyncResultResponse, error) {
	if sourceTag == source.TagPocket {
		return nil, ErrSourceNotPollable
	}
	if _, ok := s.providers[sourceTag]; !ok {
		return nil, ErrUnknownSource
	}
	if _, err := s.activeConnection(ctx, userId, sourceTag); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(dto.PublishSyncJobMessage{
		UserId:    userId,
		SourceTag: sourceTag,
	})
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		return nil, err
	}

	return &dto.SyncResultResponse{Status: "queued"}, nil
}

func (s *syncService) UploadSnapshot(ctx context.Context, userId uuid.UUID, entries []dto.UploadEntryDTO) (*dto.SyncResultResponse, error) {
	conn, err := s.ensureUploadConnection(ctx, userId)
	if err != nil {
		return nil, err
	}

	pocketEntries := make([]source.PocketEntry, 0, len(entries))
	for _, e := range entries {
		addedAt := e.AddedAt
		if addedAt == 0 {
			addedAt = time.Now().UnixMilli()
		}
		pocketEntries = append(pocketEntries, source.PocketEntry{
			ItemId:  e.ItemId,
			Title:   e.Title,
			Excerpt: e.Excerpt,
			URL:     e.URL,
			AddedAt: addedAt,
			Tags:    e.Tags,
		})
	}
	provider := source.NewPocketProvider(pocketEntries)

	return s.runLocked(ctx, conn, func(ctx context.Context, engine *syncengine.Engine) (*syncengine.Result, error) {
		return engine.RunFullReplacement(ctx, conn, provider)
	})
}

func (s *syncService) Status(ctx context.Context, userId uuid.UUID) ([]*dto.SyncStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	states, err := uow.SyncStateRepository().FindAllByUser(ctx, userId)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.SyncStatusResponse, 0, len(states))
	for _, st := range states {
		res := &dto.SyncStatusResponse{
			SourceTag:              st.SourceTag,
			LastDeltaCursor:        st.LastDeltaCursor,
			LastFullReconciliation: st.LastFullReconciliation,
			SyncCounter:            st.SyncCounter,
			LastRunStatus:          st.LastRunStatus,
		}
		if st.LastRunError != nil {
			res.LastRunError = *st.LastRunError
		}
		result = append(result, res)
	}
	return result, nil
}

// runLocked wraps one engine run in the per-pair single-flight lock and
// publishes the outcome events.
func (s *syncService) runLocked(ctx context.Context, conn *entity.Connection, run func(ctx context.Context, engine *syncengine.Engine) (*syncengine.Result, error)) (*dto.SyncResultResponse, error) {
	acquired, err := s.locker.Acquire(ctx, conn.UserId, conn.SourceTag)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrSyncInFlight
	}
	defer func() {
		if err := s.locker.Release(ctx, conn.UserId, conn.SourceTag); err != nil {
			s.log.Warn("sync", "failed to release sync lock", map[string]interface{}{
				"user_id": conn.UserId, "source_tag": conn.SourceTag, "error": err.Error(),
			})
		}
	}()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	engine := syncengine.NewEngine(&uowContentStore{uow: uow}, &uowStateStore{uow: uow}, s.pipeline, s.engineLog)

	result, runErr := run(ctx, engine)
	if runErr != nil {
		s.log.Error("sync", "sync run failed", map[string]interface{}{
			"user_id": conn.UserId, "source_tag": conn.SourceTag, "error": runErr.Error(),
		})

		if errors.Is(runErr, source.ErrAuthExpired) {
			s.markAuthExpired(ctx, conn)
		}
		s.publishEvent(ctx, events.NewSyncFailed(conn.UserId, conn.SourceTag, runErr.Error()))

		return &dto.SyncResultResponse{
			Status: string(syncengine.StatusFailed),
			Reason: runErr.Error(),
		}, nil
	}

	s.log.Info("sync", "sync run completed", map[string]interface{}{
		"user_id": conn.UserId, "source_tag": conn.SourceTag, "mode": string(result.Mode),
		"items_added": result.ItemsAdded, "items_removed": result.ItemsRemoved, "items_skipped": result.ItemsSkipped,
	})
	s.publishEvent(ctx, events.NewSyncCompleted(conn.UserId, conn.SourceTag, result.ItemsAdded, result.ItemsRemoved, result.ItemsSkipped))

	return &dto.SyncResultResponse{
		Status:       string(result.Status),
		Mode:         string(result.Mode),
		ItemsAdded:   result.ItemsAdded,
		ItemsRemoved: result.ItemsRemoved,
		ItemsSkipped: result.ItemsSkipped,
	}, nil
}

func (s *syncService) activeConnection(ctx context.Context, userId uuid.UUID, sourceTag string) (*entity.Connection, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conn, err := uow.ConnectionRepository().FindOne(ctx,
		specification.OwnedBy{UserID: userId},
		specification.BySourceTag{SourceTag: sourceTag},
	)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, ErrConnectionNotFound
	}
	if conn.Status != entity.ConnectionStatusActive {
		return nil, fmt.Errorf("connection to %s is %s; reconnect first", sourceTag, conn.Status)
	}
	return conn, nil
}

// ensureUploadConnection returns the pocket connection, creating it on
// first upload. Uploads carry their own data, so the row exists only to
// anchor ownership and sync state.
func (s *syncService) ensureUploadConnection(ctx context.Context, userId uuid.UUID) (*entity.Connection, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conn, err := uow.ConnectionRepository().FindOne(ctx,
		specification.OwnedBy{UserID: userId},
		specification.BySourceTag{SourceTag: source.TagPocket},
	)
	if err != nil {
		return nil, err
	}
	if conn != nil {
		return conn, nil
	}

	conn = &entity.Connection{
		Id:        uuid.New(),
		UserId:    userId,
		SourceTag: source.TagPocket,
		Status:    entity.ConnectionStatusActive,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := uow.ConnectionRepository().Create(ctx, conn); err != nil {
		return nil, err
	}
	return conn, nil
}

func (s *syncService) markAuthExpired(ctx context.Context, conn *entity.Connection) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conn.Status = entity.ConnectionStatusAuthExpired
	conn.UpdatedAt = time.Now()
	if err := uow.ConnectionRepository().Update(ctx, conn); err != nil {
		s.log.Error("sync", "failed to mark connection auth_expired", map[string]interface{}{
			"connection_id": conn.Id, "error": err.Error(),
		})
		return
	}
	s.publishEvent(ctx, events.NewConnectionAuthExpired(conn.UserId, conn.SourceTag))
}

// publishEvent logs and moves on: events feed notifications, and a bus
// hiccup must not fail a finished sync run.
func (s *syncService) publishEvent(ctx context.Context, evt events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.log.Warn("sync", "failed to publish event", map[string]interface{}{
			"event_type": evt.EventType(), "error": err.Error(),
		})
	}
}
