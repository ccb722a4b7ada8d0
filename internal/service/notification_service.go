package service

import (
	"context"
	"fmt"
	"strings"

	"ai-recall-be/internal/pkg/logger"
	"ai-recall-be/internal/pkg/mailer"
	"ai-recall-be/internal/repository/specification"
	"ai-recall-be/internal/repository/unitofwork"
	"ai-recall-be/pkg/events"
	pktNats "ai-recall-be/pkg/nats"

	"github.com/google/uuid"
)

// NotificationService consumes sync events off the bus and turns the
// ones a user should know about into email. Right now that is a single
// case: a platform rejected stored credentials mid-sync, so the owner
// has to reconnect before their mirror drifts stale.
type NotificationService struct {
	uowFactory unitofwork.RepositoryFactory
	subscriber *pktNats.Subscriber
	mailer     mailer.IEmailService
	logger     logger.ILogger
}

func NewNotificationService(
	uowFactory unitofwork.RepositoryFactory,
	sub *pktNats.Subscriber,
	emailService mailer.IEmailService,
	log logger.ILogger,
) *NotificationService {
	return &NotificationService{
		uowFactory: uowFactory,
		subscriber: sub,
		mailer:     emailService,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events."+events.TypeConnectionAuthExpired, "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening for auth-expired events", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	// NATS subjects carry the stream prefix.
	typeCode := strings.TrimPrefix(event.EventType(), "events.")
	if typeCode != events.TypeConnectionAuthExpired {
		return nil
	}

	payload := event.Payload()
	rawUserId, _ := payload["user_id"].(string)
	sourceTag, _ := payload["source_tag"].(string)

	userId, err := uuid.Parse(rawUserId)
	if err != nil {
		s.logger.Warn("NotificationService", "Auth-expired event with bad user id", map[string]interface{}{"user_id": rawUserId})
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return fmt.Errorf("lookup user %s: %w", userId, err)
	}
	if user == nil {
		s.logger.Warn("NotificationService", "Auth-expired event for unknown user", map[string]interface{}{"user_id": rawUserId})
		return nil
	}

	if err := s.mailer.SendReconnectNotice(user.Email, sourceTag); err != nil {
		// Returning the error Naks the message so delivery retries.
		return fmt.Errorf("send reconnect notice to %s: %w", user.Email, err)
	}

	s.logger.Info("NotificationService", "Reconnect notice sent", map[string]interface{}{
		"user_id":    userId.String(),
		"source_tag": sourceTag,
	})
	return nil
}
