package identity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avasilenko/authgate-server/internal/model"
)

func TestNormalize_UnknownProvider(t *testing.T) {
	_, err := Normalize(model.Provider("NAVER"), map[string]any{"id": "1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrUnknownProvider))
}

func TestNormalizeGoogle(t *testing.T) {
	attrs := map[string]any{
		"sub":     "109876543210",
		"email":   "alice@example.com",
		"name":    "Alice Park",
		"picture": "https://lh3.example.com/a/photo.jpg",
	}

	ident, err := Normalize(model.ProviderGoogle, attrs)
	require.NoError(t, err)

	assert.Equal(t, model.ProviderGoogle, ident.Provider)
	assert.Equal(t, "109876543210", ident.ProviderUserID)
	require.NotNil(t, ident.Email)
	assert.Equal(t, "alice@example.com", *ident.Email)
	require.NotNil(t, ident.DisplayName)
	assert.Equal(t, "Alice Park", *ident.DisplayName)
	require.NotNil(t, ident.ProfileImageURL)
	assert.Equal(t, "https://lh3.example.com/a/photo.jpg", *ident.ProfileImageURL)
	assert.Equal(t, attrs, ident.RawAttributes)
}

func TestNormalizeGoogle_NameFallback(t *testing.T) {
	tests := []struct {
		name     string
		attrs    map[string]any
		expected *string
	}{
		{
			name:     "given and family",
			attrs:    map[string]any{"sub": "1", "given_name": "Alice", "family_name": "Park"},
			expected: strPtr("Alice Park"),
		},
		{
			name:     "given only",
			attrs:    map[string]any{"sub": "1", "given_name": "Alice"},
			expected: strPtr("Alice"),
		},
		{
			name:     "no name fields",
			attrs:    map[string]any{"sub": "1"},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ident, err := Normalize(model.ProviderGoogle, tt.attrs)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ident.DisplayName)
		})
	}
}

func TestNormalizeGoogle_MissingSub(t *testing.T) {
	_, err := Normalize(model.ProviderGoogle, map[string]any{"email": "a@x.com"})
	require.Error(t, err)
}

func TestNormalizeKakao_AllConsented(t *testing.T) {
	attrs := kakaoPayload(map[string]any{
		"email_needs_agreement":            false,
		"email":                            "alice@example.com",
		"profile_nickname_needs_agreement": false,
		"profile_image_needs_agreement":    false,
		"gender_needs_agreement":           false,
		"gender":                           "female",
		"age_range_needs_agreement":        false,
		"age_range":                        "20~29",
		"birthday_needs_agreement":         false,
		"birthday":                         "0115",
	})

	ident, err := Normalize(model.ProviderKakao, attrs)
	require.NoError(t, err)

	assert.Equal(t, model.ProviderKakao, ident.Provider)
	assert.Equal(t, "123456789", ident.ProviderUserID)
	require.NotNil(t, ident.Email)
	assert.Equal(t, "alice@example.com", *ident.Email)
	require.NotNil(t, ident.DisplayName)
	assert.Equal(t, "alice", *ident.DisplayName)
	require.NotNil(t, ident.ProfileImageURL)
	require.NotNil(t, ident.Gender)
	assert.Equal(t, "female", *ident.Gender)
	require.NotNil(t, ident.AgeRange)
	require.NotNil(t, ident.Birthday)
	assert.Equal(t, attrs, ident.RawAttributes)
}

func TestNormalizeKakao_EmailGateDenied(t *testing.T) {
	// Value present but consent not granted: the email must stay absent.
	attrs := kakaoPayload(map[string]any{
		"email_needs_agreement": true,
		"email":                 "alice@example.com",
	})

	ident, err := Normalize(model.ProviderKakao, attrs)
	require.NoError(t, err)
	assert.Nil(t, ident.Email)
}

func TestNormalizeKakao_MissingGateMeansNotGranted(t *testing.T) {
	// No gate flag at all: conservative default, field stays absent.
	attrs := kakaoPayload(map[string]any{
		"email": "alice@example.com",
	})

	ident, err := Normalize(model.ProviderKakao, attrs)
	require.NoError(t, err)
	assert.Nil(t, ident.Email)
	assert.Nil(t, ident.Gender)
	assert.Nil(t, ident.Birthday)
}

func TestNormalizeKakao_NoAccountMap(t *testing.T) {
	ident, err := Normalize(model.ProviderKakao, map[string]any{"id": float64(42)})
	require.NoError(t, err)
	assert.Equal(t, "42", ident.ProviderUserID)
	assert.Nil(t, ident.Email)
	assert.Nil(t, ident.DisplayName)
}

func TestNormalizeKakao_MissingID(t *testing.T) {
	_, err := Normalize(model.ProviderKakao, map[string]any{})
	require.Error(t, err)
}

// kakaoPayload builds a payload with the numeric id Kakao sends and the
// given kakao_account fields. Nickname consent adds the profile submap.
func kakaoPayload(account map[string]any) map[string]any {
	account["profile"] = map[string]any{
		"nickname":          "alice",
		"profile_image_url": "https://k.kakaocdn.net/img.jpg",
	}
	return map[string]any{
		"id":            float64(123456789),
		"kakao_account": account,
	}
}

func strPtr(s string) *string { return &s }
