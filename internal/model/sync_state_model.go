package model

import (
	"time"

	"github.com/google/uuid"
)

type SyncState struct {
	Id                     uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId                 uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_sync_states_user_source"`
	SourceTag              string     `gorm:"type:varchar(32);not null;uniqueIndex:idx_sync_states_user_source"`
	LastDeltaCursor        int64      `gorm:"not null;default:0"`
	LastFullReconciliation *time.Time `gorm:""`
	SyncCounter            int        `gorm:"not null;default:0"`
	CredentialRef          uuid.UUID  `gorm:"type:uuid;not null"`
	LastRunStatus          string     `gorm:"type:varchar(32)"`
	LastRunError           *string    `gorm:"type:text"`
	CreatedAt              time.Time  `gorm:"autoCreateTime"`
	UpdatedAt              time.Time  `gorm:"autoUpdateTime"`
}

func (SyncState) TableName() string {
	return "sync_states"
}
