package contract

import (
	"context"

	"ai-recall-be/internal/entity"
	"ai-recall-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ConnectionRepository interface {
	Create(ctx context.Context, conn *entity.Connection) error
	Update(ctx context.Context, conn *entity.Connection) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Connection, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Connection, error)
}
