package entity

import (
	"time"

	"github.com/google/uuid"
)

type ConnectionStatus string

const (
	ConnectionStatusActive      ConnectionStatus = "active"
	ConnectionStatusAuthExpired ConnectionStatus = "auth_expired"
)

// Connection ties an owner to one external platform. The token fields
// are opaque to the sync core; providers turn them into authorized HTTP
// clients. Token acquisition and refresh live outside this service.
type Connection struct {
	Id               uuid.UUID
	UserId           uuid.UUID
	SourceTag        string
	AccessToken      string
	RefreshToken     *string
	TokenExpiry      *time.Time
	ExternalUsername string
	Status           ConnectionStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
