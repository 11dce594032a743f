package handler

import (
	"context"
	"crypto/subtle"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avasilenko/authgate-server/internal/logger"
	"github.com/avasilenko/authgate-server/internal/model"
	"github.com/avasilenko/authgate-server/internal/oauth"
	"github.com/avasilenko/authgate-server/internal/service"
)

const (
	stateCookieName = "oauth_state"
	stateCookiePath = "/api/auth/oauth"
	stateCookieTTL  = 10 * time.Minute
)

// OAuthService is the slice of the auth coordinator the OAuth handler
// depends on.
type OAuthService interface {
	LoginWithProvider(ctx context.Context, provider model.Provider, attributes map[string]any, device service.Device) (service.TokenPair, error)
}

// OAuth drives the browser-facing authorization-code flow. The state value
// lives in a short-lived cookie; the final redirect hands the access token
// to the frontend as a query parameter while the refresh token travels only
// in its cookie.
type OAuth struct {
	clients       map[string]oauth.Client
	service       OAuthService
	logger        *logger.Logger
	secureCookies bool
	frontendURL   string
}

func NewOAuth(clients []oauth.Client, service OAuthService, frontendURL string, secureCookies bool, logger *logger.Logger) *OAuth {
	byName := make(map[string]oauth.Client, len(clients))
	for _, c := range clients {
		byName[strings.ToLower(string(c.Provider()))] = c
	}
	return &OAuth{
		clients:       byName,
		service:       service,
		logger:        logger,
		secureCookies: secureCookies,
		frontendURL:   frontendURL,
	}
}

// Initiate handles GET /api/auth/oauth/{provider} and redirects the
// browser to the provider's consent screen.
func (h *OAuth) Initiate(w http.ResponseWriter, r *http.Request) {
	client, ok := h.clients[strings.ToLower(chi.URLParam(r, "provider"))]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown provider")
		return
	}

	state, err := oauth.GenerateState()
	if err != nil {
		h.logger.Error("failed to generate oauth state", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     stateCookiePath,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(stateCookieTTL.Seconds()),
	})

	http.Redirect(w, r, client.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback handles GET /api/auth/oauth/{provider}/callback.
func (h *OAuth) Callback(w http.ResponseWriter, r *http.Request) {
	client, ok := h.clients[strings.ToLower(chi.URLParam(r, "provider"))]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown provider")
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil {
		h.logger.Info("oauth callback without state cookie",
			"provider", client.Provider())
		h.redirectWithError(w, r, "invalid_state")
		return
	}
	h.clearStateCookie(w)

	if subtle.ConstantTimeCompare([]byte(stateCookie.Value), []byte(r.URL.Query().Get("state"))) != 1 {
		h.logger.Info("oauth callback state mismatch",
			"provider", client.Provider())
		h.redirectWithError(w, r, "invalid_state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectWithError(w, r, "missing_code")
		return
	}

	attributes, err := client.FetchUser(r.Context(), code)
	if err != nil {
		h.logger.Error("failed to fetch provider user",
			"provider", client.Provider(),
			"error", err.Error())
		h.redirectWithError(w, r, "provider_error")
		return
	}

	pair, err := h.service.LoginWithProvider(r.Context(), client.Provider(), attributes, deviceFromRequest(r))
	if err != nil {
		h.logger.Error("federated login failed",
			"provider", client.Provider(),
			"error", err.Error())
		h.redirectWithError(w, r, "login_failed")
		return
	}

	writeSessionCookies(w, pair, h.secureCookies)

	redirect, err := url.Parse(h.frontendURL)
	if err != nil {
		h.logger.Error("invalid frontend redirect url",
			"url", h.frontendURL,
			"error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	query := redirect.Query()
	query.Set("accessToken", pair.AccessToken)
	query.Set("deviceId", pair.DeviceID)
	redirect.RawQuery = query.Encode()

	http.Redirect(w, r, redirect.String(), http.StatusTemporaryRedirect)
}

func (h *OAuth) redirectWithError(w http.ResponseWriter, r *http.Request, code string) {
	redirect, err := url.Parse(h.frontendURL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	query := redirect.Query()
	query.Set("error", code)
	redirect.RawQuery = query.Encode()

	http.Redirect(w, r, redirect.String(), http.StatusTemporaryRedirect)
}

func (h *OAuth) clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     stateCookiePath,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
