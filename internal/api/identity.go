package api

import (
	"context"
	"net/http"

	"github.com/focusflowapp/focusflow-server/internal/http/response"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// userIDKey is the context key for the caller's user ID.
const userIDKey ctxKey = "userID"

// identityHeader carries the caller's ID. Authentication happens at
// the gateway; this server trusts the header it forwards.
const identityHeader = "X-User-ID"

// getUserID returns the caller's user ID from context, or "" when the
// request carried no identity.
func getUserID(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}

// setUserID stores the user ID in context.
func setUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// identityMiddleware copies the identity header into the request
// context. Requests without the header continue anonymously; handlers
// that need an identity reject them.
func identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID := r.Header.Get(identityHeader); userID != "" {
			r = r.WithContext(setUserID(r.Context(), userID))
		}
		next.ServeHTTP(w, r)
	})
}

// requireUser rejects requests that arrived without an identity.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if getUserID(r.Context()) == "" {
			response.Unauthorized(w, "Authentication required", s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}
