package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/avasilenko/authgate-server/internal/model"
)

// UserStore is a mock type for the model.UserStore interface.
type UserStore struct {
	mock.Mock
}

func (m *UserStore) CreateWithRole(ctx context.Context, user model.User, roleName string) (model.User, error) {
	args := m.Called(ctx, user, roleName)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetByUserID(ctx context.Context, userID string) (model.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) UpsertOAuthIdentity(ctx context.Context, identity model.OAuthIdentity) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}
