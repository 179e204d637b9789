package middlewares

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jcmexdev/tradehub/internal/pkg/apperr"
	"github.com/jcmexdev/tradehub/internal/storefront/core/auth"
	"github.com/jcmexdev/tradehub/internal/storefront/infra/httpx/respond"
)

// TokenVerifier resolves a bearer token to its claims.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type claimsKey struct{}

// ClaimsFrom returns the claims stored by RequireAdmin.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return c, ok
}

// WithClaims is exposed for handlers tested without the auth chain.
func WithClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// RequireAdmin rejects requests without a valid bearer token.
func RequireAdmin(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				respond.Error(w, r, apperr.Authentication("No authorization token provided"))
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				slog.WarnContext(r.Context(), "admin token rejected", "error", err)
				respond.Error(w, r, apperr.Authentication("Invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequirePermission allows the request only when the caller's role grants
// permission. It must run after RequireAdmin.
func RequirePermission(policy auth.Policy, permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok {
				respond.Error(w, r, apperr.Authentication("No authorization token provided"))
				return
			}
			if !policy.HasPermission(claims.Role, permission) {
				slog.WarnContext(r.Context(), "permission denied",
					"user_id", claims.UserID,
					"role", claims.Role,
					"permission", permission,
				)
				respond.Error(w, r, apperr.Authorization(""))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
