package model

import "time"

// TokenCodec mints and verifies signed, time-bound tokens. It is a pure
// function over process-wide key material; key decoding happens once at
// startup and fails fatally there.
type TokenCodec interface {
	CreateAccessToken(userID string, roles []string) (string, error)
	CreateRefreshToken(userID string) (string, error)
	// Parse checks signature and expiry. Malformed input yields an error
	// wrapping ErrMalformedToken, never a panic.
	Parse(token string) (TokenClaims, error)
	// SubjectIgnoringExpiry still verifies the signature but skips expiry,
	// so logout can locate the session of an already-expired access token.
	SubjectIgnoringExpiry(token string) (string, error)
	// RefreshTTL is the validity window embedded into refresh tokens.
	// Session rows persist an expiry derived from the same duration.
	RefreshTTL() time.Duration
}

// TokenClaims is the verified content of a token.
type TokenClaims struct {
	Subject   string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
