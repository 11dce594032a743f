package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/avasilenko/authgate-server/internal/model"
)

// TokenCodec is a mock type for the model.TokenCodec interface.
type TokenCodec struct {
	mock.Mock
}

func (m *TokenCodec) CreateAccessToken(userID string, roles []string) (string, error) {
	args := m.Called(userID, roles)
	return args.String(0), args.Error(1)
}

func (m *TokenCodec) CreateRefreshToken(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *TokenCodec) Parse(token string) (model.TokenClaims, error) {
	args := m.Called(token)
	return args.Get(0).(model.TokenClaims), args.Error(1)
}

func (m *TokenCodec) SubjectIgnoringExpiry(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

func (m *TokenCodec) RefreshTTL() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}
