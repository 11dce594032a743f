package token

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/avasilenko/authgate-server/internal/model"
)

// Claims represents JWT claims with the role names carried by access tokens.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
}

// JWT implements model.TokenCodec backed by symmetric HMAC-SHA512. The key
// is decoded once at construction; the codec itself has no side effects.
type JWT struct {
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

var _ model.TokenCodec = (*JWT)(nil)

// NewJWT creates a token codec from a standard-base64 encoded secret.
// A secret that fails to decode is a startup error; callers are expected
// to treat it as fatal.
func NewJWT(secretBase64 string, accessTTL, refreshTTL time.Duration) (*JWT, error) {
	key, err := base64.StdEncoding.DecodeString(secretBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode jwt secret: %w", err)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("jwt secret is empty")
	}

	return &JWT{
		secretKey:  key,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// CreateAccessToken creates a short-lived token carrying the subject and
// its role names.
func (j *JWT) CreateAccessToken(userID string, roles []string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTTL)),
		},
		Roles: roles,
	})

	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// CreateRefreshToken creates a long-lived token carrying only the subject.
func (j *JWT) CreateRefreshToken(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.refreshTTL)),
		},
	})

	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return tokenString, nil
}

// Parse validates signature and expiry and returns the verified claims.
// Any failure, including garbage input, comes back as an error wrapping
// model.ErrMalformedToken.
func (j *JWT) Parse(tokenString string) (model.TokenClaims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, j.keyFunc)
	if err != nil {
		return model.TokenClaims{}, fmt.Errorf("%w: %w", model.ErrMalformedToken, err)
	}
	if !token.Valid {
		return model.TokenClaims{}, model.ErrMalformedToken
	}

	return toTokenClaims(claims), nil
}

// SubjectIgnoringExpiry verifies the signature but skips claims validation,
// so the subject of an already-expired access token is still recoverable.
// Logout needs this to locate the session to revoke.
func (j *JWT) SubjectIgnoringExpiry(tokenString string) (string, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, j.keyFunc)
	if err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrMalformedToken, err)
	}
	if !token.Valid {
		return "", model.ErrMalformedToken
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", model.ErrMalformedToken)
	}

	return claims.Subject, nil
}

// RefreshTTL returns the validity window embedded into refresh tokens.
func (j *JWT) RefreshTTL() time.Duration {
	return j.refreshTTL
}

func (j *JWT) keyFunc(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
	}
	return j.secretKey, nil
}

func toTokenClaims(c *Claims) model.TokenClaims {
	out := model.TokenClaims{
		Subject: c.Subject,
		Roles:   c.Roles,
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out
}
