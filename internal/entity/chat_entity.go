package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Role          string
	Chat          string
	CreatedAt     time.Time
}

// ChatCitation links a model message to the mirrored item it was
// grounded on.
type ChatCitation struct {
	Id            uuid.UUID
	ChatMessageId uuid.UUID
	ContentItemId uuid.UUID
	CreatedAt     time.Time

	ContentItem *ContentItem
}
