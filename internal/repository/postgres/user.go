package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/avasilenko/authgate-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

// UserRepository owns users, role assignments and oauth identity rows.
type UserRepository struct {
	db Querier
}

func NewUserRepository(db Querier) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// CreateWithRole inserts the user and its role assignment in one
// transaction, so a user never exists without the default role.
func (r *UserRepository) CreateWithRole(ctx context.Context, user model.User, roleName string) (model.User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return model.User{}, storeError("begin user creation", err)
	}

	const insertUser = `
        INSERT INTO users (id, user_id, email, password_hash, display_name, profile_image_url, is_active, email_verified, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, TRUE, FALSE, NOW(), NOW())
        RETURNING id, user_id, email, password_hash, display_name, profile_image_url, is_active, email_verified, created_at, updated_at
    `

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	var saved model.User
	err = tx.QueryRow(ctx, insertUser,
		user.ID, user.UserID, user.Email, user.PasswordHash, user.DisplayName, user.ProfileImageURL,
	).Scan(
		&saved.ID, &saved.UserID, &saved.Email, &saved.PasswordHash, &saved.DisplayName,
		&saved.ProfileImageURL, &saved.IsActive, &saved.EmailVerified, &saved.CreatedAt, &saved.UpdatedAt,
	)
	if err != nil {
		_ = tx.Rollback(ctx)
		if isUniqueViolation(err) {
			return model.User{}, fmt.Errorf("create user %q: %w", user.UserID, model.ErrDuplicateIdentifier)
		}
		return model.User{}, storeError("create user", err)
	}

	const selectRole = `SELECT id FROM roles WHERE role_name = $1`

	var roleID uuid.UUID
	if err := tx.QueryRow(ctx, selectRole, roleName).Scan(&roleID); err != nil {
		_ = tx.Rollback(ctx)
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, fmt.Errorf("role %q: %w", roleName, model.ErrRoleNotConfigured)
		}
		return model.User{}, storeError("look up role", err)
	}

	const insertAssignment = `INSERT INTO user_roles (user_id, role_id, created_at) VALUES ($1, $2, NOW())`

	if _, err := tx.Exec(ctx, insertAssignment, saved.ID, roleID); err != nil {
		_ = tx.Rollback(ctx)
		return model.User{}, storeError("assign role", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.User{}, storeError("commit user creation", err)
	}

	saved.Roles = []string{roleName}
	return saved, nil
}

// GetByUserID loads the user with its role names in a single query, so role
// evaluation never triggers a second lookup.
func (r *UserRepository) GetByUserID(ctx context.Context, userID string) (model.User, error) {
	const query = `
        SELECT u.id, u.user_id, u.email, u.password_hash, u.display_name, u.profile_image_url,
               u.is_active, u.email_verified, u.created_at, u.updated_at,
               COALESCE(ARRAY_AGG(r.role_name) FILTER (WHERE r.role_name IS NOT NULL), '{}')
        FROM users u
        LEFT JOIN user_roles ur ON ur.user_id = u.id
        LEFT JOIN roles r ON r.id = ur.role_id
        WHERE u.user_id = $1
        GROUP BY u.id
    `

	var user model.User
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&user.ID, &user.UserID, &user.Email, &user.PasswordHash, &user.DisplayName,
		&user.ProfileImageURL, &user.IsActive, &user.EmailVerified, &user.CreatedAt, &user.UpdatedAt,
		&user.Roles,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, storeError("get user by user id", err)
	}

	return user, nil
}

// UpsertOAuthIdentity creates the (provider, provider user id) link or
// refreshes its mutable profile fields. One atomic statement: repeating it
// on every login can never duplicate the row.
func (r *UserRepository) UpsertOAuthIdentity(ctx context.Context, identity model.OAuthIdentity) error {
	const query = `
        INSERT INTO oauth_identities (id, user_id, provider, provider_user_id, email, display_name, profile_image_url, raw_attributes, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
        ON CONFLICT (provider, provider_user_id) DO UPDATE
        SET email = EXCLUDED.email,
            display_name = EXCLUDED.display_name,
            profile_image_url = EXCLUDED.profile_image_url,
            raw_attributes = EXCLUDED.raw_attributes,
            updated_at = NOW()
    `

	if identity.ID == uuid.Nil {
		identity.ID = uuid.New()
	}

	rawJSON, err := json.Marshal(identity.RawAttributes)
	if err != nil {
		return fmt.Errorf("failed to marshal raw attributes: %w", err)
	}

	_, err = r.db.Exec(ctx, query,
		identity.ID, identity.UserID, string(identity.Provider), identity.ProviderUserID,
		identity.Email, identity.DisplayName, identity.ProfileImageURL, rawJSON,
	)
	if err != nil {
		return storeError("upsert oauth identity", err)
	}

	return nil
}
