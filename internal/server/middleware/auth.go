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

const collaboratorIDKey ContextKey = "collaboratorID"

// TokenValidator validates a bearer token and returns the collaborator it was issued to.
type TokenValidator interface {
	ValidateToken(tokenString string) (string, error)
}

// AuthMiddleware creates middleware that validates bearer tokens and adds the
// collaborator ID to the request context.
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Handle case-insensitive "Bearer" prefix
			parts := strings.Fields(r.Header.Get("Authorization"))
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			collaboratorID, err := validator.ValidateToken(parts[1])
			if err != nil || collaboratorID == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), collaboratorIDKey, collaboratorID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CollaboratorID extracts the authenticated collaborator ID from the request context.
func CollaboratorID(r *http.Request) (string, error) {
	id, ok := r.Context().Value(collaboratorIDKey).(string)
	if !ok || id == "" {
		return "", fmt.Errorf("collaborator ID not found in request context")
	}
	return id, nil
}
