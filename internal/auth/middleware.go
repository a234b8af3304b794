package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. A plain string key like
// "userID" could be read or shadowed by any package that knows the string.
// A package-private type prevents collisions: only THIS package can create a
// key of type contextKey, so only this package can read or write userID
// values in the context.
type contextKey string

const userIDKey contextKey = "userID"

// TokenValidator resolves a bearer token to a user ID. AuthService implements
// it; the middleware depends on the interface so this package doesn't import
// the service layer.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (string, error)
}

// RequireAuth is a middleware that enforces authentication on protected routes.
//
// It reads the `Authorization: Bearer <token>` header, resolves the token
// against the session store, and puts the userID in the request context.
// Missing, unknown, or expired tokens end the request with 401.
//
// MIDDLEWARE PATTERN IN GO:
// A middleware is a function that takes an http.Handler and returns a new
// http.Handler wrapping it. Chi applies middlewares in a chain:
// req → M1 → M2 → Handler → M2 → M1 → resp.
func RequireAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				unauthorized(w)
				return
			}

			userID, err := validator.ValidateToken(r.Context(), token)
			if err != nil {
				unauthorized(w)
				return
			}

			// Store userID in context so handlers can read it
			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID from the request
// context. Returns ("", false) if no valid token was presented — which on a
// RequireAuth-protected route means a programming error, not a client one.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// BearerToken extracts the token from the Authorization header.
// Returns "" if the header is absent or not of the Bearer scheme.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	// "Bearer xxx" — scheme match is case-insensitive per RFC 6750.
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthenticated","message":"valid authentication required"}`))
}
