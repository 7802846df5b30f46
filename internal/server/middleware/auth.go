// Package middleware provides HTTP middleware for authentication.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

const identityKey ContextKey = "identity"

// Identity is the authenticated caller. It only ever comes from a verified
// token; request headers such as X-Username are never consulted.
type Identity struct {
	UserID   int64
	Username string
}

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (Principal, error)
}

// Principal is what a validated token says about its holder.
type Principal interface {
	GetUserID() int64
	GetUsername() string
}

// BearerToken extracts the token from an Authorization header. The scheme is
// case-insensitive.
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// AuthMiddleware rejects requests without a valid bearer token and stores the
// caller's identity in the request context.
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}
			principal, err := validator.ValidateToken(token)
			if err != nil {
				unauthorized(w)
				return
			}
			id := Identity{UserID: principal.GetUserID(), Username: principal.GetUsername()}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","message":"Unauthorized"}`))
}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity extracts the authenticated caller from the request context.
func GetIdentity(r *http.Request) (Identity, error) {
	id, ok := r.Context().Value(identityKey).(Identity)
	if !ok {
		return Identity{}, fmt.Errorf("identity not found in request context")
	}
	return id, nil
}
