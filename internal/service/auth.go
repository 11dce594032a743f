package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/avasilenko/authgate-server/internal/identity"
	"github.com/avasilenko/authgate-server/internal/logger"
	"github.com/avasilenko/authgate-server/internal/model"
)

// maxUserAgentLen bounds what gets persisted on the session row.
const maxUserAgentLen = 512

// Device carries the caller-side device context of an auth request.
// An empty ID means the caller has no device identity yet and one
// must be minted.
type Device struct {
	ID        string
	UserAgent string
}

// TokenPair is the outcome of a successful login or refresh. NewDevice is
// set when the device id was minted during this call and must be handed
// back to the caller.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
	DeviceID         string
	NewDevice        bool
}

// Auth orchestrates the credential and session lifecycle: local and
// federated login, refresh-token rotation and logout.
type Auth struct {
	directory *Directory
	sessions  model.SessionStore
	codec     model.TokenCodec
	logger    *logger.Logger
}

func NewAuth(
	directory *Directory,
	sessions model.SessionStore,
	codec model.TokenCodec,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		directory: directory,
		sessions:  sessions,
		codec:     codec,
		logger:    logger,
	}
}

// Signup registers a password-based account. The plaintext password is
// hashed here and never travels further down.
func (a *Auth) Signup(ctx context.Context, userID, email, password, displayName string) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		a.logger.Error("Auth service: failed to hash password",
			"user_id", userID,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	return a.directory.RegisterLocalUser(ctx, userID, email, string(hash), displayName)
}

// Login verifies local credentials and opens a session for the device.
// Unknown user, missing password hash, inactive account and wrong password
// all collapse into ErrInvalidCredentials so the response never reveals
// which check failed.
func (a *Auth) Login(ctx context.Context, userID, password string, device Device) (TokenPair, error) {
	a.logger.Debug("Auth service: local login attempt",
		"user_id", userID)

	user, err := a.directory.FindForAuth(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return TokenPair{}, model.ErrInvalidCredentials
		}
		a.logger.Error("Auth service: failed to load user for login",
			"user_id", userID,
			"error", err.Error())
		return TokenPair{}, fmt.Errorf("failed to load user: %w", err)
	}

	if user.PasswordHash == nil || !user.IsActive {
		return TokenPair{}, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return TokenPair{}, model.ErrInvalidCredentials
	}

	return a.openSession(ctx, user, device)
}

// LoginWithProvider normalizes a raw provider payload, resolves the
// canonical user and opens a session for the device.
func (a *Auth) LoginWithProvider(ctx context.Context, provider model.Provider, attributes map[string]any, device Device) (TokenPair, error) {
	a.logger.Debug("Auth service: federated login attempt",
		"provider", provider)

	ident, err := identity.Normalize(provider, attributes)
	if err != nil {
		a.logger.Error("Auth service: failed to normalize provider payload",
			"provider", provider,
			"error", err.Error())
		return TokenPair{}, fmt.Errorf("failed to normalize provider payload: %w", err)
	}

	user, err := a.directory.ResolveOrCreateFromIdentity(ctx, ident)
	if err != nil {
		return TokenPair{}, err
	}

	if !user.IsActive {
		return TokenPair{}, model.ErrInvalidCredentials
	}

	return a.openSession(ctx, user, device)
}

// Refresh rotates the device's refresh token. The presented token must
// parse, its subject must still exist and be active, and its fingerprint
// must still be the live one for (user, device); a fingerprint that no
// longer matches means the token was already spent or revoked and yields
// ErrStaleOrReusedToken.
func (a *Auth) Refresh(ctx context.Context, refreshToken string, device Device) (TokenPair, error) {
	if strings.TrimSpace(device.ID) == "" {
		return TokenPair{}, model.ErrSessionNotFound
	}

	claims, err := a.codec.Parse(refreshToken)
	if err != nil {
		return TokenPair{}, err
	}

	user, err := a.directory.FindForAuth(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return TokenPair{}, model.ErrInvalidCredentials
		}
		a.logger.Error("Auth service: failed to load user for refresh",
			"user_id", claims.Subject,
			"error", err.Error())
		return TokenPair{}, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive {
		return TokenPair{}, model.ErrInvalidCredentials
	}

	pair, err := a.mintPair(user)
	if err != nil {
		return TokenPair{}, err
	}

	rotated, err := a.sessions.RotateIfValid(ctx,
		user.UserID, device.ID,
		fingerprint(refreshToken), fingerprint(pair.RefreshToken),
		pair.RefreshExpiresAt, truncate(device.UserAgent, maxUserAgentLen), time.Now())
	if err != nil {
		a.logger.Error("Auth service: failed to rotate session",
			"user_id", user.UserID,
			"device_id", device.ID,
			"error", err.Error())
		return TokenPair{}, fmt.Errorf("failed to rotate session: %w", err)
	}
	if !rotated {
		a.logger.Info("Auth service: refresh token replay or stale session",
			"user_id", user.UserID,
			"device_id", device.ID)
		return TokenPair{}, model.ErrStaleOrReusedToken
	}

	pair.DeviceID = device.ID

	a.logger.Info("Auth service: session rotated",
		"user_id", user.UserID,
		"device_id", device.ID)

	return pair, nil
}

// Logout revokes the session the access token belongs to. The token's
// signature must verify but its expiry is ignored, so an expired access
// token can still end its own session. Store failures are logged and
// swallowed: logout reports success unless the token itself is invalid.
func (a *Auth) Logout(ctx context.Context, accessToken, deviceID string) error {
	subject, err := a.codec.SubjectIgnoringExpiry(accessToken)
	if err != nil {
		return err
	}

	var count int64
	if strings.TrimSpace(deviceID) == "" {
		count, err = a.sessions.RevokeAll(ctx, subject)
	} else {
		count, err = a.sessions.Revoke(ctx, subject, deviceID)
	}
	if err != nil {
		a.logger.Error("Auth service: failed to revoke session on logout",
			"user_id", subject,
			"device_id", deviceID,
			"error", err.Error())
		return nil
	}

	a.logger.Info("Auth service: logout",
		"user_id", subject,
		"device_id", deviceID,
		"revoked", count)

	return nil
}

// Profile returns the authenticated user's account with roles.
func (a *Auth) Profile(ctx context.Context, userID string) (model.User, error) {
	return a.directory.FindForAuth(ctx, userID)
}

// openSession mints a token pair and installs the refresh fingerprint for
// the device, replacing whatever session the device held before.
func (a *Auth) openSession(ctx context.Context, user model.User, device Device) (TokenPair, error) {
	deviceID := strings.TrimSpace(device.ID)
	minted := false
	if deviceID == "" {
		deviceID = uuid.NewString()
		minted = true
	}

	pair, err := a.mintPair(user)
	if err != nil {
		return TokenPair{}, err
	}

	err = a.sessions.IssueOrReplace(ctx, model.Session{
		UserID:           user.UserID,
		DeviceID:         deviceID,
		TokenFingerprint: fingerprint(pair.RefreshToken),
		UserAgent:        truncate(device.UserAgent, maxUserAgentLen),
		ExpiresAt:        pair.RefreshExpiresAt,
	})
	if err != nil {
		a.logger.Error("Auth service: failed to issue session",
			"user_id", user.UserID,
			"device_id", deviceID,
			"error", err.Error())
		return TokenPair{}, fmt.Errorf("failed to issue session: %w", err)
	}

	pair.DeviceID = deviceID
	pair.NewDevice = minted

	a.logger.Info("Auth service: session opened",
		"user_id", user.UserID,
		"device_id", deviceID,
		"new_device", minted)

	return pair, nil
}

func (a *Auth) mintPair(user model.User) (TokenPair, error) {
	access, err := a.codec.CreateAccessToken(user.UserID, user.Roles)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to create access token: %w", err)
	}

	refresh, err := a.codec.CreateRefreshToken(user.UserID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to create refresh token: %w", err)
	}

	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		RefreshExpiresAt: time.Now().Add(a.codec.RefreshTTL()),
	}, nil
}

// fingerprint is the stored form of a refresh token. Only this digest ever
// reaches the session store.
func fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
