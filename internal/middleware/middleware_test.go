package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GOTOURS_BACK-END/internal/authz"
	"GOTOURS_BACK-END/internal/config"
	"GOTOURS_BACK-END/internal/models"
	"GOTOURS_BACK-END/internal/store"
	"GOTOURS_BACK-END/internal/utils"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{Secret: "test-secret", AccessTokenTTL: time.Hour, Issuer: "gotours-test"}
}

func TestGenerateAndValidateToken(t *testing.T) {
	cfg := testJWTConfig()
	user := models.User{ID: uuid.New(), Email: "guide@example.com", Role: models.RoleGuide}

	token, err := NewTokenIssuer(cfg).IssueToken(user)
	require.NoError(t, err)

	claims, err := ValidateToken(token, cfg)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, models.RoleGuide, claims.Role)

	_, err = ValidateToken(token, &config.JWTConfig{Secret: "other"})
	assert.Error(t, err)

	expired := *cfg
	expired.AccessTokenTTL = -time.Minute
	old, err := GenerateToken(user, &expired)
	require.NoError(t, err)
	_, err = ValidateToken(old, cfg)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidateTokenRejectsOtherAlgorithms(t *testing.T) {
	cfg := testJWTConfig()
	claims := JWTClaims{UserID: uuid.New(), Role: models.RoleAdmin}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(cfg.Secret))
	require.NoError(t, err)

	_, err = ValidateToken(token, cfg)
	assert.Error(t, err)
}

type fakeUsers struct {
	users map[uuid.UUID]models.User
	err   error
}

func (f *fakeUsers) GetUser(ctx context.Context, id uuid.UUID) (models.User, error) {
	if f.err != nil {
		return models.User{}, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testJWTConfig()
	user := models.User{ID: uuid.New(), Email: "a@example.com", Role: models.RoleAdmin}
	token, err := GenerateToken(user, cfg)
	require.NoError(t, err)
	users := &fakeUsers{users: map[uuid.UUID]models.User{user.ID: user}}

	var seen authz.Actor
	h := AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		seen = utils.ActorFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}, cfg, users)

	serve := func(header string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, serve(tt.header))
		})
	}
	assert.Equal(t, authz.Actor{ID: user.ID, Email: user.Email, Role: models.RoleAdmin}, seen)

	t.Run("role is read from the user record", func(t *testing.T) {
		demoted := user
		demoted.Role = models.RoleUser
		users.users[user.ID] = demoted
		t.Cleanup(func() { users.users[user.ID] = user })

		require.Equal(t, http.StatusNoContent, serve("Bearer "+token))
		assert.Equal(t, models.RoleUser, seen.Role)
	})

	t.Run("deleted user", func(t *testing.T) {
		delete(users.users, user.ID)
		t.Cleanup(func() { users.users[user.ID] = user })
		assert.Equal(t, http.StatusUnauthorized, serve("Bearer "+token))
	})

	t.Run("lookup failure", func(t *testing.T) {
		users.err = errors.New("connection reset")
		t.Cleanup(func() { users.err = nil })
		assert.Equal(t, http.StatusInternalServerError, serve("Bearer "+token))
	})
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
