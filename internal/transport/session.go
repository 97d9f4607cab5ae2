package transport

import (
	"context"
	"net/http"
)

type sessionKey struct{}

// WithSessionID stores a session ID in ctx.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// SessionIDFromContext returns the session ID from context, if present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(sessionKey{}).(string)
	return sessionID, ok
}

// SessionMiddleware extracts Mcp-Session-Id and stores it in context.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sessionID := r.Header.Get("Mcp-Session-Id"); sessionID != "" {
			r = r.WithContext(WithSessionID(r.Context(), sessionID))
		}
		next.ServeHTTP(w, r)
	})
}
