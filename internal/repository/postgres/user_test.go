package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avasilenko/authgate-server/internal/model"
)

func userColumns() []string {
	return []string{
		"id", "user_id", "email", "password_hash", "display_name", "profile_image_url",
		"is_active", "email_verified", "created_at", "updated_at",
	}
}

func TestUserRepository_CreateWithRole(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	roleID := uuid.New()
	email := "a@x.com"
	hash := "$2a$10$hash"
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), "alice", &email, &hash, "Alice", (*string)(nil)).
		WillReturnRows(pgxmock.NewRows(userColumns()).
			AddRow(id, "alice", &email, &hash, "Alice", nil, true, false, now, now))
	mock.ExpectQuery("SELECT id FROM roles").
		WithArgs(model.RoleUser).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(roleID))
	mock.ExpectExec("INSERT INTO user_roles").
		WithArgs(id, roleID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	repo := NewUserRepository(mock)
	saved, err := repo.CreateWithRole(context.Background(), model.User{
		UserID:       "alice",
		Email:        &email,
		PasswordHash: &hash,
		DisplayName:  "Alice",
	}, model.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, "alice", saved.UserID)
	assert.Equal(t, []string{model.RoleUser}, saved.Roles)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateWithRole_Duplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_user_id_key"})
	mock.ExpectRollback()

	repo := NewUserRepository(mock)
	_, err = repo.CreateWithRole(context.Background(), model.User{UserID: "alice", DisplayName: "Alice"}, model.RoleUser)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrDuplicateIdentifier)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateWithRole_RoleNotConfigured(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(pgxmock.NewRows(userColumns()).
			AddRow(id, "alice", nil, nil, "Alice", nil, true, false, now, now))
	mock.ExpectQuery("SELECT id FROM roles").
		WithArgs(model.RoleUser).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	repo := NewUserRepository(mock)
	_, err = repo.CreateWithRole(context.Background(), model.User{UserID: "alice", DisplayName: "Alice"}, model.RoleUser)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrRoleNotConfigured)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByUserID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	email := "a@x.com"
	now := time.Now()

	columns := append(userColumns(), "roles")
	mock.ExpectQuery("SELECT u.id, u.user_id").
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(id, "alice", &email, nil, "Alice", nil, true, false, now, now, []string{model.RoleUser, model.RoleAdmin}))

	repo := NewUserRepository(mock)
	user, err := repo.GetByUserID(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.UserID)
	assert.ElementsMatch(t, []string{model.RoleUser, model.RoleAdmin}, user.Roles)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByUserID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT u.id, u.user_id").
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	repo := NewUserRepository(mock)
	_, err = repo.GetByUserID(context.Background(), "ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUserRepository_UpsertOAuthIdentity(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	email := "alice@example.com"
	name := "alice"

	mock.ExpectExec("INSERT INTO oauth_identities").
		WithArgs(pgxmock.AnyArg(), "123456789", "KAKAO", "123456789", &email, &name, (*string)(nil), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewUserRepository(mock)
	err = repo.UpsertOAuthIdentity(context.Background(), model.OAuthIdentity{
		UserID:         "123456789",
		Provider:       model.ProviderKakao,
		ProviderUserID: "123456789",
		Email:          &email,
		DisplayName:    &name,
		RawAttributes:  map[string]any{"id": float64(123456789)},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
