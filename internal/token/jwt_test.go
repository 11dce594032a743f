package token

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avasilenko/authgate-server/internal/model"
)

// "test-secret-key-for-hmac-signing" in standard base64.
const testSecret = "dGVzdC1zZWNyZXQta2V5LWZvci1obWFjLXNpZ25pbmc="

func newTestCodec(t *testing.T, accessTTL, refreshTTL time.Duration) *JWT {
	t.Helper()
	codec, err := NewJWT(testSecret, accessTTL, refreshTTL)
	require.NoError(t, err)
	return codec
}

func TestNewJWT_InvalidSecret(t *testing.T) {
	_, err := NewJWT("not-base64!!!", time.Minute, time.Hour)
	require.Error(t, err)
}

func TestNewJWT_EmptySecret(t *testing.T) {
	_, err := NewJWT("", time.Minute, time.Hour)
	require.Error(t, err)
}

func TestJWT_AccessTokenRoundTrip(t *testing.T) {
	codec := newTestCodec(t, 15*time.Minute, time.Hour)

	tokenString, err := codec.CreateAccessToken("alice", []string{model.RoleUser, model.RoleAdmin})
	require.NoError(t, err)

	claims, err := codec.Parse(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.ElementsMatch(t, []string{model.RoleUser, model.RoleAdmin}, claims.Roles)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
}

func TestJWT_RefreshTokenHasNoRoles(t *testing.T) {
	codec := newTestCodec(t, 15*time.Minute, time.Hour)

	tokenString, err := codec.CreateRefreshToken("alice")
	require.NoError(t, err)

	claims, err := codec.Parse(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Empty(t, claims.Roles)
}

func TestJWT_Parse_Expired(t *testing.T) {
	codec := newTestCodec(t, -time.Minute, time.Hour)

	tokenString, err := codec.CreateAccessToken("alice", nil)
	require.NoError(t, err)

	_, err = codec.Parse(tokenString)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrMalformedToken))
}

func TestJWT_Parse_Garbage(t *testing.T) {
	codec := newTestCodec(t, time.Minute, time.Hour)

	for _, input := range []string{"", "garbage", "a.b.c", "eyJhbGciOiJIUzUxMiJ9"} {
		_, err := codec.Parse(input)
		require.Error(t, err, "input %q", input)
		assert.True(t, errors.Is(err, model.ErrMalformedToken))
	}
}

func TestJWT_Parse_TamperedSignature(t *testing.T) {
	codec := newTestCodec(t, time.Minute, time.Hour)
	other := newTestCodec(t, time.Minute, time.Hour)
	other.secretKey = []byte("a completely different key")

	tokenString, err := other.CreateAccessToken("alice", nil)
	require.NoError(t, err)

	_, err = codec.Parse(tokenString)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrMalformedToken))
}

func TestJWT_SubjectIgnoringExpiry(t *testing.T) {
	codec := newTestCodec(t, -time.Minute, time.Hour)

	tokenString, err := codec.CreateAccessToken("alice", []string{model.RoleUser})
	require.NoError(t, err)

	// Regular parse refuses the expired token.
	_, err = codec.Parse(tokenString)
	require.Error(t, err)

	// Subject is still recoverable with a valid signature.
	subject, err := codec.SubjectIgnoringExpiry(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestJWT_SubjectIgnoringExpiry_StillChecksSignature(t *testing.T) {
	codec := newTestCodec(t, time.Minute, time.Hour)
	other := newTestCodec(t, time.Minute, time.Hour)
	other.secretKey = []byte("a completely different key")

	tokenString, err := other.CreateAccessToken("alice", nil)
	require.NoError(t, err)

	_, err = codec.SubjectIgnoringExpiry(tokenString)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrMalformedToken))
}

func TestJWT_RefreshTTL(t *testing.T) {
	codec := newTestCodec(t, time.Minute, 42*time.Hour)
	assert.Equal(t, 42*time.Hour, codec.RefreshTTL())
}
