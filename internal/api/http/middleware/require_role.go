package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avasilenko/authgate-server/internal/logger"
	"github.com/avasilenko/authgate-server/internal/model"
)

// UserLoader resolves an account with its role names.
type UserLoader interface {
	Profile(ctx context.Context, userID string) (model.User, error)
}

// RequireRole rejects authenticated callers that do not carry the named
// role. Roles are read from the directory, not from the token, so a role
// revoked mid-session takes effect on the next request. Must run after
// Authenticate.
type RequireRole struct {
	users          UserLoader
	contextManager model.ContextManager
	role           string
	logger         *logger.Logger
}

func NewRequireRole(users UserLoader, contextManager model.ContextManager, role string, logger *logger.Logger) *RequireRole {
	return &RequireRole{
		users:          users,
		contextManager: contextManager,
		role:           role,
		logger:         logger,
	}
}

func (m *RequireRole) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := m.contextManager.GetUserIDFromContext(r.Context())
		if !ok {
			unauthorized(w)
			return
		}

		user, err := m.users.Profile(r.Context(), userID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				forbidden(w)
				return
			}
			m.logger.Error("failed to load user for role check",
				"user_id", userID,
				"error", err.Error())
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
			return
		}

		if !user.HasRole(m.role) {
			m.logger.Info("caller lacks required role",
				"user_id", userID,
				"role", m.role)
			forbidden(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func forbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "forbidden"})
}
