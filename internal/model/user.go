package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role names known to the system. Roles must be seeded before any user can
// receive them; a missing default role is a startup error.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// UserStore defines persistence operations for canonical users, their role
// assignments and federated identity links.
type UserStore interface {
	// CreateWithRole inserts the user and assigns roleName in one
	// transaction. Returns ErrDuplicateIdentifier if the user id or email
	// is taken, ErrRoleNotConfigured if the role row does not exist.
	CreateWithRole(ctx context.Context, user User, roleName string) (User, error)
	// GetByUserID returns the user with role names eagerly loaded.
	GetByUserID(ctx context.Context, userID string) (User, error)
	// UpsertOAuthIdentity creates the identity link or refreshes its mutable
	// profile fields. Safe to repeat on every login; (provider,
	// provider_user_id) stays unique.
	UpsertOAuthIdentity(ctx context.Context, identity OAuthIdentity) error
}

// User represents a canonical account. Accounts created through OAuth have
// no password hash and use the provider-assigned id as their user id.
type User struct {
	ID              uuid.UUID
	UserID          string
	Email           *string
	PasswordHash    *string
	DisplayName     string
	ProfileImageURL *string
	IsActive        bool
	EmailVerified   bool
	Roles           []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasRole reports whether the user carries the named role.
func (u User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// OAuthIdentity links a user to one (provider, provider user id) pair.
// Mutable profile fields are refreshed on every successful login via the
// same provider; the raw payload is kept verbatim for audit.
type OAuthIdentity struct {
	ID              uuid.UUID
	UserID          string
	Provider        Provider
	ProviderUserID  string
	Email           *string
	DisplayName     *string
	ProfileImageURL *string
	RawAttributes   map[string]any
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
