package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avasilenko/authgate-server/internal/logger"
	"github.com/avasilenko/authgate-server/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleError maps domain errors onto HTTP statuses. Credential failures
// share one 401 so the response never reveals which check failed.
func handleError(w http.ResponseWriter, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidCredentials),
		errors.Is(err, model.ErrMalformedToken),
		errors.Is(err, model.ErrStaleOrReusedToken),
		errors.Is(err, model.ErrSessionNotFound):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, model.ErrDuplicateIdentifier):
		writeError(w, http.StatusConflict, "identifier already taken")
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, model.ErrUnknownProvider):
		writeError(w, http.StatusBadRequest, "unknown provider")
	case errors.Is(err, model.ErrStoreUnavailable):
		log.Error("store unavailable", "error", err.Error())
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	default:
		log.Error("internal server error", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
