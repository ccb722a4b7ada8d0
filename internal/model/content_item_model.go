package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type ContentItem struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_content_items_identity"`
	SourceTag      string          `gorm:"type:varchar(32);not null;uniqueIndex:idx_content_items_identity"`
	StableId       string          `gorm:"type:varchar(255);not null;uniqueIndex:idx_content_items_identity"`
	Title          string          `gorm:"type:varchar(512)"`
	Document       string          `gorm:"type:text"`
	URL            string          `gorm:"type:text"`
	Author         string          `gorm:"type:varchar(255)"`
	RecencyMarker  int64           `gorm:"not null;index"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(1536)"`
	Metadata       datatypes.JSON  `gorm:"type:jsonb"`
	StoredAt       time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
}

func (ContentItem) TableName() string {
	return "content_items"
}
