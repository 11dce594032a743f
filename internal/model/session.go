package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionStore owns refresh-token session rows, one per (user, device).
// All mutual exclusion lives in these operations: each one is a single
// conditional statement at the store, never a read-then-write pair.
type SessionStore interface {
	// IssueOrReplace atomically updates the (user, device) row to the new
	// fingerprint and expiry, or inserts it if absent. Concurrent logins
	// from the same device leave exactly one row.
	IssueOrReplace(ctx context.Context, session Session) error
	// RotateIfValid atomically swaps oldFingerprint for newFingerprint on
	// the row matching (userID, deviceID, fingerprint, unrevoked, unexpired)
	// and reports whether exactly one row was updated. A replayed token no
	// longer matches and rotation fails closed.
	RotateIfValid(ctx context.Context, userID, deviceID, oldFingerprint, newFingerprint string, newExpiry time.Time, userAgent string, now time.Time) (bool, error)
	// Revoke soft-deletes the device's active session and returns the
	// affected row count. Revoking nothing is not an error.
	Revoke(ctx context.Context, userID, deviceID string) (int64, error)
	// RevokeAll soft-deletes every active session of the user.
	RevokeAll(ctx context.Context, userID string) (int64, error)
}

// Session is a per-(user, device) refresh-token record. Only the SHA-256
// fingerprint of the token is stored; the raw value is never persisted.
type Session struct {
	ID               uuid.UUID
	UserID           string
	DeviceID         string
	TokenFingerprint string
	UserAgent        string
	ExpiresAt        time.Time
	Revoked          bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
