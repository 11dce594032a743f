package model

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidCredentials covers both unknown user and wrong password.
	// Callers must not be able to tell which one happened.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateIdentifier is returned when a user id or email is already taken.
	ErrDuplicateIdentifier = errors.New("identifier already in use")

	// ErrStaleOrReusedToken is returned when refresh rotation matched no row:
	// the presented token was already rotated, revoked or expired.
	ErrStaleOrReusedToken = errors.New("refresh token is stale or already used")

	// ErrSessionNotFound is returned when no active session exists for a device.
	ErrSessionNotFound = errors.New("no active session for device")

	// ErrRoleNotConfigured indicates the role table was never seeded.
	// This is a fatal misconfiguration, not a runtime condition.
	ErrRoleNotConfigured = errors.New("required role is not configured")

	// ErrMalformedToken is returned for tokens that fail structural or
	// signature checks.
	ErrMalformedToken = errors.New("malformed token")

	// ErrStoreUnavailable wraps storage-level failures. Callers may retry
	// reads, but never rotation or issuance.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrUnknownProvider is returned for an unrecognized identity provider tag.
	ErrUnknownProvider = errors.New("unknown identity provider")
)
