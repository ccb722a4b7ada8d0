package implementation

import (
	"context"
	"errors"

	"ai-recall-be/internal/entity"
	"ai-recall-be/internal/mapper"
	"ai-recall-be/internal/model"
	"ai-recall-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SyncStateRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SyncStateMapper
}

func NewSyncStateRepository(db *gorm.DB) contract.SyncStateRepository {
	return &SyncStateRepositoryImpl{
		db:     db,
		mapper: mapper.NewSyncStateMapper(),
	}
}

func (r *SyncStateRepositoryImpl) Get(ctx context.Context, userId uuid.UUID, sourceTag string) (*entity.SyncState, error) {
	var m model.SyncState
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Where("source_tag = ?", sourceTag).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

// Save upserts on (user_id, source_tag) so exactly one state row can
// exist per pair.
func (r *SyncStateRepositoryImpl) Save(ctx context.Context, state *entity.SyncState) error {
	m := r.mapper.ToModel(state)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "source_tag"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"last_delta_cursor", "last_full_reconciliation", "sync_counter",
			"credential_ref", "last_run_status", "last_run_error", "updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*state = *r.mapper.ToEntity(m)
	return nil
}

func (r *SyncStateRepositoryImpl) Delete(ctx context.Context, userId uuid.UUID, sourceTag string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Where("source_tag = ?", sourceTag).
		Delete(&model.SyncState{}).Error
}

func (r *SyncStateRepositoryImpl) FindAllByUser(ctx context.Context, userId uuid.UUID) ([]*entity.SyncState, error) {
	var models []*model.SyncState
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("source_tag ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	states := make([]*entity.SyncState, len(models))
	for i, m := range models {
		states[i] = r.mapper.ToEntity(m)
	}
	return states, nil
}
