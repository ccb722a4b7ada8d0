package dto

import (
	"time"

	"github.com/google/uuid"
)

type AskRequest struct {
	ChatSessionId *uuid.UUID `json:"chat_session_id,omitempty"`
	Query         string     `json:"query" validate:"required,min=2"`
	TopK          int        `json:"top_k,omitempty" validate:"omitempty,min=1,max=20"`
	SourceTag     string     `json:"source_tag,omitempty" validate:"omitempty,oneof=twitter reddit pocket"`
}

type CitationDTO struct {
	SourceTag string `json:"source_tag"`
	Label     string `json:"label"`
	URL       string `json:"url,omitempty"`
}

type AskResponse struct {
	ChatSessionId uuid.UUID     `json:"chat_session_id"`
	Answer        string        `json:"answer"`
	Sources       []CitationDTO `json:"sources"`
}

type ChatSessionResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type ChatMessageResponse struct {
	Id        uuid.UUID     `json:"id"`
	Role      string        `json:"role"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
	Citations []CitationDTO `json:"citations,omitempty"`
}
