package model

import (
	"time"

	"github.com/google/uuid"
)

type Connection struct {
	Id               uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId           uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_connections_user_source"`
	SourceTag        string     `gorm:"type:varchar(32);not null;uniqueIndex:idx_connections_user_source"`
	AccessToken      string     `gorm:"type:text;not null"`
	RefreshToken     *string    `gorm:"type:text"`
	TokenExpiry      *time.Time `gorm:""`
	ExternalUsername string     `gorm:"type:varchar(255)"`
	Status           string     `gorm:"type:varchar(32);not null;default:'active'"`
	CreatedAt        time.Time  `gorm:"autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime"`
}

func (Connection) TableName() string {
	return "connections"
}
