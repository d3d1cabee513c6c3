package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"pharmacy-auth-api/internal/model"
	"pharmacy-auth-api/internal/token"
)

type tokenVerifier interface {
	Verify(raw string, class token.Class) (*token.Claims, error)
}

type contextKey string

const authClaimsContextKey contextKey = "auth_claims"

// AuthMiddleware is the two-gate guard pipeline: RequireAuth authenticates
// the bearer token, RequireRoles authorizes the authenticated role against
// the endpoint's declared role set.
type AuthMiddleware struct {
	verifier tokenVerifier
}

func NewAuthMiddleware(verifier tokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireAuth verifies the Authorization bearer token as an access token.
// Expired and invalid tokens both answer 401; the distinction is kept for
// logs only.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			writeGuardError(w, model.ErrUnauthorized, "missing or invalid authorization header")
			return
		}

		raw := strings.TrimSpace(header[7:])
		claims, err := m.verifier.Verify(raw, token.ClassAccess)
		if err != nil {
			if errors.Is(err, model.ErrTokenExpired) {
				slog.Debug("access token expired", "path", r.URL.Path)
			}
			writeGuardError(w, model.ErrUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles passes only authenticated requests whose role is in the
// declared set. An endpoint without this wrapper is open to any
// authenticated role.
func (m *AuthMiddleware) RequireRoles(allowedRoles ...string) func(http.Handler) http.Handler {
	roleSet := map[string]struct{}{}
	for _, role := range allowedRoles {
		roleSet[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeGuardError(w, model.ErrUnauthorized, "authentication required")
				return
			}

			if _, exists := roleSet[strings.ToLower(claims.Role)]; !exists {
				writeGuardError(w, model.ErrForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(*token.Claims)
	return claims, ok
}

// writeGuardError answers a guard rejection. The sentinel picks the status
// and code so guard responses carry the same taxonomy handlers map from.
func writeGuardError(w http.ResponseWriter, sentinel error, message string) {
	status := http.StatusUnauthorized
	code := "UNAUTHORIZED"
	if errors.Is(sentinel, model.ErrForbidden) {
		status = http.StatusForbidden
		code = "FORBIDDEN"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = jsonEncode(w, model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}
