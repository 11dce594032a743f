package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/avasilenko/authgate-server/internal/logger"
	"github.com/avasilenko/authgate-server/internal/model"
)

// Directory resolves and creates canonical user accounts, both for local
// credential signups and for federated logins.
type Directory struct {
	users  model.UserStore
	logger *logger.Logger
}

func NewDirectory(users model.UserStore, logger *logger.Logger) *Directory {
	return &Directory{
		users:  users,
		logger: logger,
	}
}

// RegisterLocalUser creates a password-based account with the default role.
// The password is already hashed by the caller; the directory never sees
// plaintext credentials.
func (d *Directory) RegisterLocalUser(ctx context.Context, userID, email, passwordHash, displayName string) (model.User, error) {
	d.logger.Debug("Directory service: registering local user",
		"user_id", userID)

	user := model.User{
		UserID:       userID,
		PasswordHash: &passwordHash,
		DisplayName:  displayName,
	}
	// The email column is unique only across present values; an absent
	// email must reach the store as NULL, never as "".
	if email != "" {
		user.Email = &email
	}

	created, err := d.users.CreateWithRole(ctx, user, model.RoleUser)
	if err != nil {
		if errors.Is(err, model.ErrDuplicateIdentifier) {
			d.logger.Info("Directory service: identifier already taken",
				"user_id", userID)
			return model.User{}, err
		}
		d.logger.Error("Directory service: failed to create local user",
			"user_id", userID,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to create local user: %w", err)
	}

	d.logger.Info("Directory service: local user registered",
		"user_id", created.UserID)

	return created, nil
}

// ResolveOrCreateFromIdentity maps a federated identity to a canonical user,
// creating the account with the default role on first login. The identity
// link row is upserted on every call so profile fields track the latest
// consented payload.
func (d *Directory) ResolveOrCreateFromIdentity(ctx context.Context, identity model.Identity) (model.User, error) {
	d.logger.Debug("Directory service: resolving federated identity",
		"provider", identity.Provider,
		"provider_user_id", identity.ProviderUserID)

	user, err := d.users.GetByUserID(ctx, identity.ProviderUserID)
	if errors.Is(err, model.ErrNotFound) {
		user, err = d.users.CreateWithRole(ctx, model.User{
			UserID:          identity.ProviderUserID,
			Email:           identity.Email,
			DisplayName:     displayNameFor(identity),
			ProfileImageURL: identity.ProfileImageURL,
		}, model.RoleUser)
		if errors.Is(err, model.ErrDuplicateIdentifier) {
			// Lost the race against a concurrent first login; the winner's
			// row is the canonical one.
			user, err = d.users.GetByUserID(ctx, identity.ProviderUserID)
		}
	}
	if err != nil {
		d.logger.Error("Directory service: failed to resolve federated user",
			"provider", identity.Provider,
			"provider_user_id", identity.ProviderUserID,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to resolve federated user: %w", err)
	}

	err = d.users.UpsertOAuthIdentity(ctx, model.OAuthIdentity{
		UserID:          user.UserID,
		Provider:        identity.Provider,
		ProviderUserID:  identity.ProviderUserID,
		Email:           identity.Email,
		DisplayName:     identity.DisplayName,
		ProfileImageURL: identity.ProfileImageURL,
		RawAttributes:   identity.RawAttributes,
	})
	if err != nil {
		d.logger.Error("Directory service: failed to upsert identity link",
			"provider", identity.Provider,
			"provider_user_id", identity.ProviderUserID,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to upsert identity link: %w", err)
	}

	d.logger.Info("Directory service: federated identity resolved",
		"provider", identity.Provider,
		"user_id", user.UserID)

	return user, nil
}

// FindForAuth loads the user with roles for credential checks and profile
// reads.
func (d *Directory) FindForAuth(ctx context.Context, userID string) (model.User, error) {
	return d.users.GetByUserID(ctx, userID)
}

func displayNameFor(identity model.Identity) string {
	if identity.DisplayName != nil && *identity.DisplayName != "" {
		return *identity.DisplayName
	}
	return identity.ProviderUserID
}
