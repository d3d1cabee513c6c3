package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pharmacy-auth-api/internal/model"
	"pharmacy-auth-api/internal/token"
)

func newGuardFixture(t *testing.T, accessTTL time.Duration) (*AuthMiddleware, *token.Manager) {
	t.Helper()

	manager, err := token.NewManager(token.Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     accessTTL,
		RefreshTTL:    time.Hour,
	})
	require.NoError(t, err)

	return NewAuthMiddleware(manager), manager
}

func requireGuardCode(t *testing.T, rec *httptest.ResponseRecorder, code string) {
	t.Helper()

	var envelope model.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	require.Equal(t, code, envelope.Error.Code)
}

func cashierUser() model.User {
	return model.User{
		ID:    "u-1",
		Email: "cashier@pharmacy.local",
		Role:  model.Role{ID: "r-1", RoleName: model.RoleCashier},
	}
}

func okHandler(t *testing.T, sawClaims *bool) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if ok && claims.Subject != "" {
			*sawClaims = true
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	t.Run("valid access token passes and exposes claims", func(t *testing.T) {
		mw, manager := newGuardFixture(t, time.Hour)
		pair, err := manager.IssuePair(cashierUser())
		require.NoError(t, err)

		var sawClaims bool
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		rec := httptest.NewRecorder()

		mw.RequireAuth(okHandler(t, &sawClaims)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, sawClaims)
	})

	t.Run("missing header is unauthorized", func(t *testing.T) {
		mw, _ := newGuardFixture(t, time.Hour)

		var sawClaims bool
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		rec := httptest.NewRecorder()

		mw.RequireAuth(okHandler(t, &sawClaims)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.False(t, sawClaims)
		requireGuardCode(t, rec, "UNAUTHORIZED")
	})

	t.Run("refresh token at access gate is unauthorized", func(t *testing.T) {
		mw, manager := newGuardFixture(t, time.Hour)
		pair, err := manager.IssuePair(cashierUser())
		require.NoError(t, err)

		var sawClaims bool
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
		rec := httptest.NewRecorder()

		mw.RequireAuth(okHandler(t, &sawClaims)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired access token is unauthorized", func(t *testing.T) {
		mw, manager := newGuardFixture(t, -time.Minute)
		pair, err := manager.IssuePair(cashierUser())
		require.NoError(t, err)

		var sawClaims bool
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		rec := httptest.NewRecorder()

		mw.RequireAuth(okHandler(t, &sawClaims)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRoles(t *testing.T) {
	t.Parallel()

	t.Run("role in the declared set is authorized", func(t *testing.T) {
		mw, manager := newGuardFixture(t, time.Hour)
		pair, err := manager.IssuePair(cashierUser())
		require.NoError(t, err)

		var sawClaims bool
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		rec := httptest.NewRecorder()

		guarded := mw.RequireAuth(mw.RequireRoles(model.RoleAdmin, model.RoleCashier)(okHandler(t, &sawClaims)))
		guarded.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("authenticated but wrong role is forbidden", func(t *testing.T) {
		mw, manager := newGuardFixture(t, time.Hour)
		pair, err := manager.IssuePair(cashierUser())
		require.NoError(t, err)

		var sawClaims bool
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/users/u-2", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		rec := httptest.NewRecorder()

		guarded := mw.RequireAuth(mw.RequireRoles(model.RoleAdmin)(okHandler(t, &sawClaims)))
		guarded.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		requireGuardCode(t, rec, "FORBIDDEN")
	})

	t.Run("role gate without authentication gate rejects", func(t *testing.T) {
		mw, _ := newGuardFixture(t, time.Hour)

		var sawClaims bool
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		rec := httptest.NewRecorder()

		mw.RequireRoles(model.RoleAdmin)(okHandler(t, &sawClaims)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
