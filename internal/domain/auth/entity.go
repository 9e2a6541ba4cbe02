// internal/domain/auth/entity.go
package auth

import (
	"database/sql"
	"time"
)

// Account statuses.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// User is a platform account.
type User struct {
	ID           int64          `json:"id"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"`
	FullName     sql.NullString `json:"fullName,omitempty"`
	Company      sql.NullString `json:"company,omitempty"`
	Status       string         `json:"status"`
	Roles        []string       `json:"roles"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// RefreshToken is a persisted, rotating refresh credential. The JTI of the
// issued refresh JWT is stored; presenting a revoked or unknown JTI is an
// authentication failure, not a retryable condition.
type RefreshToken struct {
	ID        int64
	UserID    int64
	JTI       string
	ExpiresAt time.Time
	RevokedAt sql.NullTime
	CreatedAt time.Time
}
