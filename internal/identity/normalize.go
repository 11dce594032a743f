// Package identity converts provider-specific OAuth2 profile payloads into
// the provider-agnostic view consumed by the user directory. Each provider
// has one normalization function, dispatched on the explicit provider tag.
package identity

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/avasilenko/authgate-server/internal/model"
)

// Normalize maps a raw attribute payload to a canonical identity view.
// The view is derived from the latest payload on every login; cached
// identities are never trusted because consent can change between logins.
func Normalize(provider model.Provider, attrs map[string]any) (model.Identity, error) {
	switch provider {
	case model.ProviderGoogle:
		return normalizeGoogle(attrs)
	case model.ProviderKakao:
		return normalizeKakao(attrs)
	default:
		return model.Identity{}, fmt.Errorf("%w: %q", model.ErrUnknownProvider, provider)
	}
}

func stringAttr(attrs map[string]any, key string) *string {
	v, ok := attrs[key]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

func mapAttr(attrs map[string]any, key string) map[string]any {
	v, ok := attrs[key]
	if !ok {
		return nil
	}
	m, _ := v.(map[string]any)
	return m
}

// attrAsID renders a provider-assigned id as a string. Kakao sends a
// numeric id, which arrives as float64 or json.Number depending on the
// decoder.
func attrAsID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case json.Number:
		return id.String()
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(id, 10)
	default:
		return ""
	}
}
