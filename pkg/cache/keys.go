// Package cache provides standardized cache key generation functions.
// Using consistent key naming helps avoid collisions and makes cache
// management easier. All keys follow the pattern: "prefix:identifier".
package cache

import (
	"fmt"

	"github.com/google/uuid"
)

// Key prefixes for different cache types.
const (
	UserPrefix       = "user:"
	SessionPrefix    = "session:"
	TokenPrefix      = "blacklist:"
	OAuthStatePrefix = "oauth_state:"
	StatsPrefix      = "stats:"
	JobPrefix        = "job:"
	RateLimitPrefix  = "ratelimit:"
)

// UserKey generates a cache key for user data by ID.
//
// Example: "user:123e4567-e89b-12d3-a456-426614174000"
func UserKey(userID uuid.UUID) string {
	return fmt.Sprintf("%s%s", UserPrefix, userID.String())
}

// UserByUsernameKey generates a cache key for user lookup by username.
// Login and token validation both resolve users by username, so this is
// the hottest lookup path.
//
// Example: "user:name:analyst42"
func UserByUsernameKey(username string) string {
	return fmt.Sprintf("%sname:%s", UserPrefix, username)
}

// UserByEmailKey generates a cache key for user lookup by email.
//
// Example: "user:email:user@example.com"
func UserByEmailKey(email string) string {
	return fmt.Sprintf("%semail:%s", UserPrefix, email)
}

// SessionKey generates a cache key for login session data.
// Sessions are scoped per user and identified by a unique session ID.
//
// Example: "session:123e4567-e89b-12d3-a456-426614174000:abc123"
func SessionKey(userID uuid.UUID, sessionID string) string {
	return fmt.Sprintf("%s%s:%s", SessionPrefix, userID.String(), sessionID)
}

// TokenKey generates a cache key for a blacklisted token JTI.
// Logout writes these so revoked access tokens stop validating before
// their natural expiry.
//
// Example: "blacklist:7f3c..."
func TokenKey(jti string) string {
	return fmt.Sprintf("%s%s", TokenPrefix, jti)
}

// OAuthStateKey generates a cache key for a pending OAuth authorization.
// The state parameter is single-use and expires shortly after issuance.
//
// Example: "oauth_state:xK9f..."
func OAuthStateKey(state string) string {
	return fmt.Sprintf("%s%s", OAuthStatePrefix, state)
}

// StatsKey generates a cache key for a user's dashboard dataset.
// The kind discriminates stats, threats and activity payloads.
//
// Example: "stats:overview:123e4567-e89b-12d3-a456-426614174000"
func StatsKey(kind string, userID uuid.UUID) string {
	return fmt.Sprintf("%s%s:%s", StatsPrefix, kind, userID.String())
}

// JobKey generates a cache key for collection job status.
//
// Example: "job:9c1d..."
func JobKey(jobID string) string {
	return fmt.Sprintf("%s%s", JobPrefix, jobID)
}

// RateLimitKey generates a cache key for a rate limit counter window.
//
// Example: "ratelimit:192.168.1.1:/api/v1/auth/login"
func RateLimitKey(identifier, route string) string {
	return fmt.Sprintf("%s%s:%s", RateLimitPrefix, identifier, route)
}

// UserPattern returns a glob pattern matching all user cache keys for a
// specific user. Use with DeletePattern to invalidate all user-related cache.
//
// Example: "user:123e4567-e89b-12d3-a456-426614174000*"
func UserPattern(userID uuid.UUID) string {
	return fmt.Sprintf("%s%s*", UserPrefix, userID.String())
}

// StatsPattern returns a glob pattern matching all dashboard cache entries
// for a user. Invalidated after a collection run completes.
//
// Example: "stats:*:123e4567-e89b-12d3-a456-426614174000"
func StatsPattern(userID uuid.UUID) string {
	return fmt.Sprintf("%s*:%s", StatsPrefix, userID.String())
}

// SessionPattern returns a glob pattern matching all sessions for a user.
//
// Example: "session:123e4567-e89b-12d3-a456-426614174000:*"
func SessionPattern(userID uuid.UUID) string {
	return fmt.Sprintf("%s%s:*", SessionPrefix, userID.String())
}
