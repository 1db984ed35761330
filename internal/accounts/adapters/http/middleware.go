package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/dejobratic/storefront/internal/accounts/app"
)

type contextKey string

const userIDKey contextKey = "user_id"

// CurrentUser reports the authenticated user ID stashed by WithAuth, if any.
func CurrentUser(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// WithAuth resolves a Bearer session token to its user and records the user
// ID on the request context. Requests without a valid token pass through
// unauthenticated; handlers that need a user enforce it themselves.
func WithAuth(next http.Handler, service *app.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token != "" {
			if user, err := service.Authenticate(r.Context(), token); err == nil {
				ctx := context.WithValue(r.Context(), userIDKey, user.ID)
				r = r.WithContext(ctx)
			}
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
