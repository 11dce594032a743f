package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	httpcontext "github.com/avasilenko/authgate-server/internal/api/http/context"
	"github.com/avasilenko/authgate-server/internal/mocks"
	"github.com/avasilenko/authgate-server/internal/model"
	"github.com/avasilenko/authgate-server/internal/testutil"
)

func TestAuthenticate_ValidToken(t *testing.T) {
	codec := new(mocks.TokenCodec)
	codec.On("Parse", "valid-token").Return(model.TokenClaims{Subject: "alice"}, nil)

	manager := httpcontext.NewManager()
	m := NewAuthenticate(codec, manager, testutil.MakeNoopLogger())

	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = manager.GetUserIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()

	m.Handle(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", gotUserID)
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	codec := new(mocks.TokenCodec)
	m := NewAuthenticate(codec, httpcontext.NewManager(), testutil.MakeNoopLogger())

	called := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()

	m.Handle(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
	codec.AssertNotCalled(t, "Parse", "")
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	codec := new(mocks.TokenCodec)
	codec.On("Parse", "expired-token").Return(model.TokenClaims{}, model.ErrMalformedToken)

	m := NewAuthenticate(codec, httpcontext.NewManager(), testutil.MakeNoopLogger())

	called := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	rec := httptest.NewRecorder()

	m.Handle(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}
