package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avasilenko/authgate-server/internal/logger"
	"github.com/avasilenko/authgate-server/internal/model"
	"github.com/avasilenko/authgate-server/internal/service"
)

const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/api/auth/refresh"

	deviceCookieName = "device_id"
	deviceHeaderName = "X-Device-Id"
	// Device identity outlives any single session.
	deviceCookieTTL = 365 * 24 * time.Hour
)

// AuthService is the slice of the auth coordinator the handler depends on.
type AuthService interface {
	Signup(ctx context.Context, userID, email, password, displayName string) (model.User, error)
	Login(ctx context.Context, userID, password string, device service.Device) (service.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string, device service.Device) (service.TokenPair, error)
	Logout(ctx context.Context, accessToken, deviceID string) error
	Profile(ctx context.Context, userID string) (model.User, error)
}

// Auth exposes the credential and session lifecycle over HTTP. Refresh
// tokens travel only in an HttpOnly cookie scoped to the refresh path;
// access tokens travel in response bodies and Authorization headers.
type Auth struct {
	service        AuthService
	contextManager model.ContextManager
	logger         *logger.Logger
	secureCookies  bool
}

func NewAuth(service AuthService, contextManager model.ContextManager, secureCookies bool, logger *logger.Logger) *Auth {
	return &Auth{
		service:        service,
		contextManager: contextManager,
		logger:         logger,
		secureCookies:  secureCookies,
	}
}

type signupRequest struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type userResponse struct {
	UserID          string   `json:"userId"`
	Email           *string  `json:"email,omitempty"`
	DisplayName     string   `json:"displayName"`
	ProfileImageURL *string  `json:"profileImageUrl,omitempty"`
	Roles           []string `json:"roles"`
}

func toUserResponse(user model.User) userResponse {
	return userResponse{
		UserID:          user.UserID,
		Email:           user.Email,
		DisplayName:     user.DisplayName,
		ProfileImageURL: user.ProfileImageURL,
		Roles:           user.Roles,
	}
}

// Signup handles POST /api/auth/signup.
func (h *Auth) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.UserID == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "userId, email and password are required")
		return
	}

	user, err := h.service.Signup(r.Context(), req.UserID, req.Email, req.Password, req.DisplayName)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

type loginRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
	DeviceID    string `json:"deviceId"`
}

// Login handles POST /api/auth/login.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, err := h.service.Login(r.Context(), req.UserID, req.Password, deviceFromRequest(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeSessionCookies(w, pair, h.secureCookies)
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: pair.AccessToken, DeviceID: pair.DeviceID})
}

// Refresh handles POST /api/auth/refresh. The refresh token is read from
// its cookie only, never from the body.
func (h *Auth) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	pair, err := h.service.Refresh(r.Context(), cookie.Value, deviceFromRequest(r))
	if err != nil {
		clearSessionCookies(w, h.secureCookies)
		handleError(w, h.logger, err)
		return
	}

	writeSessionCookies(w, pair, h.secureCookies)
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: pair.AccessToken, DeviceID: pair.DeviceID})
}

// Logout handles POST /api/auth/logout. Succeeds for any well-formed
// token, even an expired one or one without a live session.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	device := deviceFromRequest(r)
	if err := h.service.Logout(r.Context(), token, device.ID); err != nil {
		handleError(w, h.logger, err)
		return
	}

	clearSessionCookies(w, h.secureCookies)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Me handles GET /api/auth/me behind the authentication middleware.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// GetUser handles GET /api/admin/users/{userId}. Reachable only through
// the admin-role middleware.
func (h *Auth) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Profile(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// deviceFromRequest resolves the caller's device identity: explicit header
// first, then the long-lived cookie. An empty result makes the service
// mint a fresh id.
func deviceFromRequest(r *http.Request) service.Device {
	deviceID := strings.TrimSpace(r.Header.Get(deviceHeaderName))
	if deviceID == "" {
		if cookie, err := r.Cookie(deviceCookieName); err == nil {
			deviceID = cookie.Value
		}
	}
	return service.Device{ID: deviceID, UserAgent: r.UserAgent()}
}

func writeSessionCookies(w http.ResponseWriter, pair service.TokenPair, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    pair.RefreshToken,
		Path:     refreshCookiePath,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  pair.RefreshExpiresAt,
	})
	if pair.NewDevice {
		http.SetCookie(w, &http.Cookie{
			Name:     deviceCookieName,
			Value:    pair.DeviceID,
			Path:     "/",
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int(deviceCookieTTL.Seconds()),
		})
	}
}

// clearSessionCookies expires the refresh cookie. The device cookie stays:
// the device is still the same device after logout.
func clearSessionCookies(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
