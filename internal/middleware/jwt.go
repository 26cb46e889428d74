// Package middleware provides HTTP middleware components for the API.
// Middleware functions wrap HTTP handlers to provide cross-cutting concerns
// like authentication, logging, metrics, and rate limiting.
//
// Middleware in this package:
//   - JWT authentication with user resolution
//   - Structured request/response logging with correlation IDs
//   - Prometheus metrics collection
//   - Rate limiting per IP address
//
// All middleware is designed to be composable with Chi router.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/osintlab/osint-platform/internal/models"
	"github.com/osintlab/osint-platform/internal/services"
	"github.com/osintlab/osint-platform/pkg/utils"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// UserKey is the context key for the resolved authenticated user.
	// Set by JWTAuth after token validation and user lookup.
	UserKey contextKey = "user"

	// TokenKey is the context key for the raw bearer token.
	// Logout needs it to blacklist the token being used.
	TokenKey contextKey = "token"
)

// UserResolver resolves a username from validated token claims into a full
// user record. Implemented by the user cache so the middleware does not hit
// Postgres on every request.
type UserResolver interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// JWTAuth creates middleware that validates bearer tokens and resolves the
// authenticated user into the request context.
//
// The token is read from the Authorization header ("Bearer <token>").
// Validation covers signature, expiry, and the revocation blacklist; the
// subject claim is then resolved to a user record, and inactive users are
// rejected.
//
// On failure the request is rejected with 401 and a {"detail": ...} body,
// which API clients surface as the error message.
//
// Usage:
//
//	r.Group(func(r chi.Router) {
//	    r.Use(middleware.JWTAuth(jwtService, userCache))
//	    r.Get("/api/v1/auth/me", authHandler.Me)
//	})
func JWTAuth(jwtService *services.JWTService, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				log.Warn().Msg("Missing authorization token")
				utils.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
				return
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := jwtService.ValidateToken(r.Context(), token)
			if err != nil {
				log.Warn().Err(err).Msg("Invalid token")
				utils.RespondWithError(w, r, http.StatusUnauthorized, "Could not validate credentials")
				return
			}

			user, err := users.GetUserByUsername(r.Context(), claims.Subject)
			if err != nil {
				log.Warn().Err(err).Str("username", claims.Subject).Msg("Token subject not found")
				utils.RespondWithError(w, r, http.StatusUnauthorized, "Could not validate credentials")
				return
			}

			if !user.IsActive {
				utils.RespondWithError(w, r, http.StatusBadRequest, "Inactive user")
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			ctx = context.WithValue(ctx, TokenKey, token)

			log.Debug().
				Str("user_id", user.ID.String()).
				Str("username", user.Username).
				Msg("User authenticated via JWT")

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser extracts the authenticated user from the request context.
//
// Example:
//
//	user, ok := middleware.GetUser(r.Context())
//	if !ok {
//	    utils.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
//	    return
//	}
func GetUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok
}

// GetToken extracts the raw bearer token from the request context.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}
