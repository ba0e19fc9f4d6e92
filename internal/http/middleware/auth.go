package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/GnandeepVenigalla/gd25th-backend/internal/utils/jwt"
	"github.com/GnandeepVenigalla/gd25th-backend/internal/utils/response"
)

// AuthMiddleware creates a middleware that validates the bearer token minted
// at login. The gallery has a single shared secret, so the token carries no
// per-user identity.
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Get the Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(
					errors.New("Authorization header required")))
				return
			}

			// Check if the header starts with "Bearer "
			if !strings.HasPrefix(authHeader, "Bearer ") {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(
					errors.New("Invalid authorization header format")))
				return
			}

			// Extract the token
			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == "" {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(
					errors.New("Token not provided")))
				return
			}

			if _, err := jwt.ExtractSubjectFromToken(token, jwtSecret); err != nil {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(
					errors.New("Invalid token")))
				return
			}

			// Call the next handler
			next.ServeHTTP(w, r)
		})
	}
}
