package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/BradenHooton/tiktok-automation/internal/models"
	pkghttp "github.com/BradenHooton/tiktok-automation/pkg/http"
)

type contextKey string

const (
	// UserContextKey is the key for storing the authenticated user in context
	UserContextKey contextKey = "user"
)

const credentialsMessage = "Could not validate credentials"

// TokenResolver turns a bearer token into the account it names
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*models.User, error)
}

// AuthMiddleware rejects requests without a valid bearer token and injects
// the resolved user into the request context.
func AuthMiddleware(resolver TokenResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				pkghttp.WriteUnauthorized(w, "Not authenticated")
				return
			}

			// Every resolution failure looks the same to the caller
			user, err := resolver.ResolveToken(r.Context(), tokenString)
			if err != nil {
				pkghttp.WriteUnauthorized(w, credentialsMessage)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireAdmin allows only users with is_admin. Must run after AuthMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r)
		if user == nil {
			pkghttp.WriteUnauthorized(w, credentialsMessage)
			return
		}
		if !user.IsAdmin {
			pkghttp.WriteForbidden(w, "Admin privileges required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser stores user in ctx
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// GetUserFromContext extracts the authenticated user from request context
func GetUserFromContext(r *http.Request) *models.User {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
