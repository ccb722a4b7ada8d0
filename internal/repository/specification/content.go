package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BySourceTag scopes to one platform
type BySourceTag struct {
	SourceTag string
}

func (s BySourceTag) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source_tag = ?", s.SourceTag)
}

// ByStableId filters by the platform-stable item identifier
type ByStableId struct {
	StableId string
}

func (s ByStableId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("stable_id = ?", s.StableId)
}

// ByEmail filters users by email
type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

// ByChatSessionID filters chat messages by session
type ByChatSessionID struct {
	ChatSessionID uuid.UUID
}

func (s ByChatSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.ChatSessionID)
}
