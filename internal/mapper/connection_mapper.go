package mapper

import (
	"ai-recall-be/internal/entity"
	"ai-recall-be/internal/model"
)

type ConnectionMapper struct{}

func NewConnectionMapper() *ConnectionMapper {
	return &ConnectionMapper{}
}

func (m *ConnectionMapper) ToEntity(c *model.Connection) *entity.Connection {
	if c == nil {
		return nil
	}
	return &entity.Connection{
		Id:               c.Id,
		UserId:           c.UserId,
		SourceTag:        c.SourceTag,
		AccessToken:      c.AccessToken,
		RefreshToken:     c.RefreshToken,
		TokenExpiry:      c.TokenExpiry,
		ExternalUsername: c.ExternalUsername,
		Status:           entity.ConnectionStatus(c.Status),
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func (m *ConnectionMapper) ToModel(c *entity.Connection) *model.Connection {
	if c == nil {
		return nil
	}
	return &model.Connection{
		Id:               c.Id,
		UserId:           c.UserId,
		SourceTag:        c.SourceTag,
		AccessToken:      c.AccessToken,
		RefreshToken:     c.RefreshToken,
		TokenExpiry:      c.TokenExpiry,
		ExternalUsername: c.ExternalUsername,
		Status:           string(c.Status),
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}
