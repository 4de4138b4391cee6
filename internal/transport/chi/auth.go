package chi

import (
	"context"
	"net/http"
	"strings"

	"github.com/postforge/postforge/internal/config"
)

type contextKey string

const userIDKey contextKey = "user_id"

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// UserIDFromContext extracts the authenticated user set by BearerAuthMiddleware.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// ContextWithUserID is used by tests and the dev pass-through path.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// BearerAuthMiddleware returns a middleware that resolves a Bearer token to
// the user it acts as. If apiKeys is empty, authentication is disabled and
// the caller may identify itself via the X-User-ID header (local dev).
func BearerAuthMiddleware(apiKeys []config.APIKeyConfig) func(http.Handler) http.Handler {
	users := make(map[string]string, len(apiKeys))
	for _, k := range apiKeys {
		if k.Key != "" {
			users[k.Key] = k.UserID
		}
	}

	return func(next http.Handler) http.Handler {
		// Auth disabled — trust the X-User-ID header
		if len(users) == 0 {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				userID := r.Header.Get("X-User-ID")
				if userID == "" {
					userID = "anonymous"
				}
				next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
			})
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Exempt paths
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "authorization header must use Bearer scheme")
				return
			}

			token := auth[len(bearerPrefix):]
			userID, ok := users[token]
			if !ok {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
		})
	}
}
