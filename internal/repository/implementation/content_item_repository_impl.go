package implementation

import (
	"context"
	"errors"

	"ai-recall-be/internal/entity"
	"ai-recall-be/internal/mapper"
	"ai-recall-be/internal/model"
	"ai-recall-be/internal/repository/contract"
	"ai-recall-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContentItemRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ContentItemMapper
}

func NewContentItemRepository(db *gorm.DB) contract.ContentItemRepository {
	return &ContentItemRepositoryImpl{
		db:     db,
		mapper: mapper.NewContentItemMapper(),
	}
}

func (r *ContentItemRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// Upsert relies on the unique index over (user_id, source_tag, stable_id)
// so a re-synced item can never produce a duplicate row.
func (r *ContentItemRepositoryImpl) Upsert(ctx context.Context, item *entity.ContentItem) error {
	m := r.mapper.ToModel(item)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "source_tag"},
			{Name: "stable_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "document", "url", "author",
			"recency_marker", "embedding_value", "metadata", "updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*item = *r.mapper.ToEntity(m)
	return nil
}

func (r *ContentItemRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContentItem, error) {
	var m model.ContentItem
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ContentItemRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentItem, error) {
	var models []*model.ContentItem
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ContentItemRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.ContentItem{}).Count(&count).Error
	return count, err
}

func (r *ContentItemRepositoryImpl) StableIds(ctx context.Context, userId uuid.UUID, sourceTag string) (map[string]int64, error) {
	type row struct {
		StableId      string
		RecencyMarker int64
	}
	var rows []row

	err := r.db.WithContext(ctx).
		Model(&model.ContentItem{}).
		Select("stable_id, recency_marker").
		Where("user_id = ?", userId).
		Where("source_tag = ?", sourceTag).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	ids := make(map[string]int64, len(rows))
	for _, r := range rows {
		ids[r.StableId] = r.RecencyMarker
	}
	return ids, nil
}

func (r *ContentItemRepositoryImpl) DeleteByStableIds(ctx context.Context, userId uuid.UUID, sourceTag string, stableIds []string) (int64, error) {
	if len(stableIds) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Where("source_tag = ?", sourceTag).
		Where("stable_id IN ?", stableIds).
		Delete(&model.ContentItem{})
	return res.RowsAffected, res.Error
}

// SearchSimilar computes cosine similarity as 1 - (embedding <=> query)
// and orders by similarity, newest item first on ties.
func (r *ContentItemRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, limit int, userId uuid.UUID, sourceTag string, threshold float64) ([]*contract.ScoredContentItem, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.ContentItem
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("content_items").
		Select("content_items.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("user_id = ?", userId)

	if sourceTag != "" {
		query = query.Where("source_tag = ?", sourceTag)
	}
	if threshold > 0 {
		query = query.Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold)
	}

	err := query.
		Order("similarity DESC, recency_marker DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredContentItem, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredContentItem{
			Item:       r.mapper.ToEntity(&res.ContentItem),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
