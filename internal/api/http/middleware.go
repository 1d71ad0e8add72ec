package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"safesite-backend/internal/roles"
	"safesite-backend/internal/security"
)

type contextKey string

const claimsKey contextKey = "claims"

// AuthMiddleware verifies bearer tokens and gates admin routes. Admin-ness
// is derived from the token's email claim through the role resolver, never
// from a role claim the client could have minted elsewhere.
type AuthMiddleware struct {
	tokens   security.TokenManager
	resolver *roles.Resolver
}

func NewAuthMiddleware(tokens security.TokenManager, resolver *roles.Resolver) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:   tokens,
		resolver: resolver,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "missing_token", "Authorization header is required.")
			return
		}

		claims, err := m.tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			if errors.Is(err, security.ErrExpiredToken) {
				// Routes the client back to re-authentication, not a
				// generic failure.
				writeError(w, http.StatusUnauthorized, "session_expired", "Your session has expired. Please sign in again.")
				return
			}
			writeError(w, http.StatusUnauthorized, "invalid_token", "The provided token is not valid.")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing_token", "Authorization header is required.")
			return
		}
		if !roles.IsAdmin(m.resolver.Resolve(claims.Email)) {
			writeError(w, http.StatusForbidden, "admin_required", "This action requires administrator privileges.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func ClaimsFromContext(ctx context.Context) (*security.UserClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*security.UserClaims)
	return claims, ok
}
