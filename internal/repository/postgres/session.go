package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/avasilenko/authgate-server/internal/model"
)

var _ model.SessionStore = (*SessionRepository)(nil)

// SessionRepository owns per-(user, device) refresh-token rows. Every
// mutation here is a single conditional statement; the row-level atomicity
// of these statements is the only mutual exclusion in the whole flow.
type SessionRepository struct {
	db Querier
}

func NewSessionRepository(db Querier) *SessionRepository {
	return &SessionRepository{db: db}
}

// IssueOrReplace installs the new fingerprint for (user, device), reviving
// a revoked row if one exists. The upsert keys on the (user_id, device_id)
// unique constraint, so two racing logins from the same device still leave
// exactly one row.
func (r *SessionRepository) IssueOrReplace(ctx context.Context, session model.Session) error {
	const query = `
        INSERT INTO user_refresh_tokens (id, user_id, device_id, token_hash, user_agent, expires_at, revoked, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, FALSE, NOW(), NOW())
        ON CONFLICT (user_id, device_id) DO UPDATE
        SET token_hash = EXCLUDED.token_hash,
            user_agent = EXCLUDED.user_agent,
            expires_at = EXCLUDED.expires_at,
            revoked = FALSE,
            updated_at = NOW()
    `

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}

	_, err := r.db.Exec(ctx, query,
		session.ID, session.UserID, session.DeviceID, session.TokenFingerprint,
		session.UserAgent, session.ExpiresAt,
	)
	if err != nil {
		return storeError("issue session", err)
	}

	return nil
}

// RotateIfValid is the replay gate. The old fingerprint, the revoked flag
// and the expiry are all part of the UPDATE predicate, so checking and
// swapping happen in one statement. A token that was already rotated no
// longer matches and the update touches zero rows.
func (r *SessionRepository) RotateIfValid(ctx context.Context, userID, deviceID, oldFingerprint, newFingerprint string, newExpiry time.Time, userAgent string, now time.Time) (bool, error) {
	const query = `
        UPDATE user_refresh_tokens
        SET token_hash = $4,
            expires_at = $5,
            user_agent = $6,
            updated_at = NOW()
        WHERE user_id = $1
          AND device_id = $2
          AND token_hash = $3
          AND revoked = FALSE
          AND expires_at > $7
    `

	tag, err := r.db.Exec(ctx, query, userID, deviceID, oldFingerprint, newFingerprint, newExpiry, userAgent, now)
	if err != nil {
		return false, storeError("rotate session", err)
	}

	return tag.RowsAffected() == 1, nil
}

// Revoke soft-deletes the device's active session. Revoking a revoked or
// missing session is a silent no-op; the count is for the caller's logs.
func (r *SessionRepository) Revoke(ctx context.Context, userID, deviceID string) (int64, error) {
	const query = `
        UPDATE user_refresh_tokens
        SET revoked = TRUE, updated_at = NOW()
        WHERE user_id = $1 AND device_id = $2 AND revoked = FALSE
    `

	tag, err := r.db.Exec(ctx, query, userID, deviceID)
	if err != nil {
		return 0, storeError("revoke session", err)
	}

	return tag.RowsAffected(), nil
}

// RevokeAll soft-deletes every active session of the user.
func (r *SessionRepository) RevokeAll(ctx context.Context, userID string) (int64, error) {
	const query = `
        UPDATE user_refresh_tokens
        SET revoked = TRUE, updated_at = NOW()
        WHERE user_id = $1 AND revoked = FALSE
    `

	tag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return 0, storeError("revoke all sessions", err)
	}

	return tag.RowsAffected(), nil
}
