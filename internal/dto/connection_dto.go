package dto

import (
	"time"

	"github.com/google/uuid"
)

type ConnectSourceRequest struct {
	SourceTag        string `json:"source_tag" validate:"required,oneof=twitter reddit pocket"`
	AccessToken      string `json:"access_token" validate:"required"`
	RefreshToken     string `json:"refresh_token,omitempty"`
	ExternalUsername string `json:"external_username,omitempty"`
}

type ConnectionResponse struct {
	Id               uuid.UUID  `json:"id"`
	SourceTag        string     `json:"source_tag"`
	ExternalUsername string     `json:"external_username,omitempty"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	LastSyncedAt     *time.Time `json:"last_synced_at,omitempty"`
}
