// Package models defines the core domain models for the platform.
// These models represent the data structures used throughout the system
// for users, connected social accounts, OAuth handshakes, and collection
// jobs.
//
// All models include appropriate JSON and database struct tags for
// serialization and storage mapping. Sensitive fields are marked with
// `json:"-"` to prevent accidental exposure in API responses.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account on the platform.
// Users authenticate with username/password and receive a bearer token.
//
// EnabledPlatforms mirrors the platform permission flags the user has
// granted; PermissionsGranted flips to true the first time any platform
// is enabled and stays true until explicitly revoked.
//
// JSON example:
//
//	{
//	  "id": "550e8400-e29b-41d4-a716-446655440000",
//	  "username": "alice",
//	  "email": "alice@example.com",
//	  "full_name": "Alice Example",
//	  "is_active": true
//	}
type User struct {
	ID                    uuid.UUID  `json:"id" db:"id"`
	Username              string     `json:"username" db:"username"`
	Email                 string     `json:"email" db:"email"`
	FullName              *string    `json:"full_name,omitempty" db:"full_name"`
	HashedPassword        string     `json:"-" db:"hashed_password"` // bcrypt hash, never serialized
	IsActive              bool       `json:"is_active" db:"is_active"`
	PermissionsGranted    bool       `json:"permissions_granted" db:"permissions_granted"`
	EnabledPlatforms      []Platform `json:"enabled_platforms" db:"enabled_platforms"`
	LastPermissionsUpdate *time.Time `json:"last_permissions_update,omitempty" db:"last_permissions_update"`
	CreatedAt             time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at" db:"updated_at"`
}

// LoginSession records one successful login for the sessions listing.
// Sessions are stored in Redis with automatic expiration; the token JTI is
// intentionally excluded from JSON so it never leaks through the API.
type LoginSession struct {
	ID         string    `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	JTI        string    `json:"-"`
	DeviceInfo string    `json:"device_info"`
	IPAddress  string    `json:"ip_address"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}
