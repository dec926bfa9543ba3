package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/agronexus/marketplace/internal/service/models/user"
)

type contextKey struct{}

var userKey contextKey

// verifier resolves a bearer token to a user.
type verifier interface {
	VerifyToken(ctx context.Context, token string) (*user.User, error)
}

// NewAuthMiddleware rejects requests without a valid bearer token and stores
// the resolved user on the request context.
func NewAuthMiddleware(v verifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)

				return
			}

			u, err := v.VerifyToken(r.Context(), token)
			if err != nil {
				http.Error(w, "invalid authentication token", http.StatusUnauthorized)

				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// WithUser stores the authenticated user on the context.
func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the authenticated user, nil when absent.
func UserFromContext(ctx context.Context) *user.User {
	u, _ := ctx.Value(userKey).(*user.User)

	return u
}
