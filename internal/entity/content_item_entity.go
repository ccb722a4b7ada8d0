package entity

import (
	"time"

	"github.com/google/uuid"
)

// ContentItem is one mirrored saved entry. (UserId, SourceTag, StableId)
// is unique: an item is created once and re-embedded in place when its
// upstream content changes, never duplicated.
type ContentItem struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	SourceTag      string
	StableId       string
	Title          string
	Document       string // preprocessed vectorization text, kept for context rendering
	URL            string
	Author         string
	RecencyMarker  int64 // unix milliseconds from the platform, drives delta cursoring
	EmbeddingValue []float32
	Metadata       map[string]interface{} // source-specific fields, opaque to the core
	StoredAt       time.Time
	UpdatedAt      *time.Time
}
