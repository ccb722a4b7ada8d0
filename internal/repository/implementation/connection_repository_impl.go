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
	"gorm.io/gorm"
)

type ConnectionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConnectionMapper
}

func NewConnectionRepository(db *gorm.DB) contract.ConnectionRepository {
	return &ConnectionRepositoryImpl{
		db:     db,
		mapper: mapper.NewConnectionMapper(),
	}
}

func (r *ConnectionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ConnectionRepositoryImpl) Create(ctx context.Context, conn *entity.Connection) error {
	m := r.mapper.ToModel(conn)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*conn = *r.mapper.ToEntity(m)
	return nil
}

func (r *ConnectionRepositoryImpl) Update(ctx context.Context, conn *entity.Connection) error {
	m := r.mapper.ToModel(conn)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*conn = *r.mapper.ToEntity(m)
	return nil
}

func (r *ConnectionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Connection{}, id).Error
}

func (r *ConnectionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Connection, error) {
	var m model.Connection
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ConnectionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Connection, error) {
	var models []*model.Connection
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Connection, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
