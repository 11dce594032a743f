package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"

	"github.com/avasilenko/authgate-server/internal/model"
)

// Client exchanges an authorization code with one provider and returns the
// provider's raw user payload. The payload is handed to identity
// normalization untouched.
type Client interface {
	Provider() model.Provider
	AuthURL(state string) string
	FetchUser(ctx context.Context, code string) (map[string]any, error)
}

// GenerateState returns a cryptographically random state value for the
// authorization redirect.
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
