package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/avasilenko/authgate-server/internal/model"
)

// SessionStore is a mock type for the model.SessionStore interface.
type SessionStore struct {
	mock.Mock
}

func (m *SessionStore) IssueOrReplace(ctx context.Context, session model.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *SessionStore) RotateIfValid(ctx context.Context, userID, deviceID, oldFingerprint, newFingerprint string, newExpiry time.Time, userAgent string, now time.Time) (bool, error) {
	args := m.Called(ctx, userID, deviceID, oldFingerprint, newFingerprint, newExpiry, userAgent, now)
	return args.Bool(0), args.Error(1)
}

func (m *SessionStore) Revoke(ctx context.Context, userID, deviceID string) (int64, error) {
	args := m.Called(ctx, userID, deviceID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *SessionStore) RevokeAll(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
