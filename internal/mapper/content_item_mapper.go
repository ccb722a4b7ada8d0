package mapper

import (
	"encoding/json"
	"time"

	"ai-recall-be/internal/entity"
	"ai-recall-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type ContentItemMapper struct{}

func NewContentItemMapper() *ContentItemMapper {
	return &ContentItemMapper{}
}

func (m *ContentItemMapper) ToEntity(c *model.ContentItem) *entity.ContentItem {
	if c == nil {
		return nil
	}

	var metadata map[string]interface{}
	if len(c.Metadata) > 0 {
		// Undecodable metadata is dropped rather than failing the read;
		// it is opaque to the core anyway.
		_ = json.Unmarshal(c.Metadata, &metadata)
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.ContentItem{
		Id:             c.Id,
		UserId:         c.UserId,
		SourceTag:      c.SourceTag,
		StableId:       c.StableId,
		Title:          c.Title,
		Document:       c.Document,
		URL:            c.URL,
		Author:         c.Author,
		RecencyMarker:  c.RecencyMarker,
		EmbeddingValue: c.EmbeddingValue.Slice(),
		Metadata:       metadata,
		StoredAt:       c.StoredAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *ContentItemMapper) ToModel(c *entity.ContentItem) *model.ContentItem {
	if c == nil {
		return nil
	}

	var metadata datatypes.JSON
	if c.Metadata != nil {
		if raw, err := json.Marshal(c.Metadata); err == nil {
			metadata = datatypes.JSON(raw)
		}
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.ContentItem{
		Id:             c.Id,
		UserId:         c.UserId,
		SourceTag:      c.SourceTag,
		StableId:       c.StableId,
		Title:          c.Title,
		Document:       c.Document,
		URL:            c.URL,
		Author:         c.Author,
		RecencyMarker:  c.RecencyMarker,
		EmbeddingValue: pgvector.NewVector(c.EmbeddingValue),
		Metadata:       metadata,
		StoredAt:       c.StoredAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *ContentItemMapper) ToEntities(items []*model.ContentItem) []*entity.ContentItem {
	entities := make([]*entity.ContentItem, len(items))
	for i, c := range items {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
