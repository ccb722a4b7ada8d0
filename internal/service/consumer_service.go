package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"ai-recall-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	syncService ISyncService
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	syncService ISyncService,
) IConsumerService {
	return &consumerService{
		pubSub:      pubSub,
		topicName:   topicName,
		syncService: syncService,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishSyncJobMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal sync job: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing queued sync for user %s source %s", payload.UserId, payload.SourceTag)

	result, err := cs.syncService.TriggerSync(ctx, payload.UserId, payload.SourceTag)
	if err != nil {
		if errors.Is(err, ErrSyncInFlight) {
			// Another run holds the lock. Requeue so this job lands
			// after it finishes.
			log.Printf("[WARN] Sync in flight for user %s source %s, requeueing", payload.UserId, payload.SourceTag)
			msg.Nack()
			return
		}
		// Validation failures (disconnected source, unknown tag) will
		// never succeed on retry.
		log.Printf("[ERROR] Queued sync rejected for user %s source %s: %v", payload.UserId, payload.SourceTag, err)
		msg.Ack()
		return
	}

	log.Printf("[INFO] Queued sync finished for user %s source %s: status=%s added=%d removed=%d skipped=%d",
		payload.UserId, payload.SourceTag, result.Status, result.ItemsAdded, result.ItemsRemoved, result.ItemsSkipped)
	msg.Ack()
}
