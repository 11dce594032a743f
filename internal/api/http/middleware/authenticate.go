package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/avasilenko/authgate-server/internal/logger"
	"github.com/avasilenko/authgate-server/internal/model"
)

// TokenParser verifies access tokens.
type TokenParser interface {
	Parse(token string) (model.TokenClaims, error)
}

// Authenticate validates bearer tokens and injects the user id into the
// request context.
type Authenticate struct {
	parser         TokenParser
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewAuthenticate(parser TokenParser, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{parser: parser, contextManager: contextManager, logger: logger}
}

// Handle rejects requests without a verifiable bearer token. Expired and
// tampered tokens get the same 401 as missing ones.
func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			unauthorized(w)
			return
		}

		claims, err := m.parser.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			m.logger.Debug("rejected access token", "error", err.Error())
			unauthorized(w)
			return
		}

		ctx := m.contextManager.SetUserIDToContext(r.Context(), claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}
