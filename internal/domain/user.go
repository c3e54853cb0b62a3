package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Name         string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal is the authenticated actor performing a request. It is resolved
// once per request from the bearer token and passed explicitly to every
// authorization and moderation call.
type Principal struct {
	ID   uuid.UUID
	Role Role
}

// EffectiveRole returns the principal's role, defaulting to buyer when the
// token carried no explicit role.
func (p Principal) EffectiveRole() Role {
	if p.Role == "" {
		return RoleBuyer
	}
	return p.Role
}

// RefreshToken represents a hashed refresh token stored in the database.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// IsRevoked returns true if the token has been revoked.
func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// IsExpired returns true if the token has expired relative to now.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
