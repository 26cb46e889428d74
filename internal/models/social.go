package models

import (
	"time"

	"github.com/google/uuid"
)

// SocialAccount is a connected third-party account for a user.
// Created by a completed OAuth callback or a credential-based connect;
// removed by disconnect. One logical connection exists per (user, platform)
// and the accounts table is the source of truth; clients re-derive
// "is platform X connected" from the list endpoint, never from local state.
//
// Access and refresh tokens are stored for the collectors' use only and are
// never serialized.
type SocialAccount struct {
	ID                  uuid.UUID  `json:"id" db:"id"`
	UserID              uuid.UUID  `json:"user_id" db:"user_id"`
	Platform            Platform   `json:"platform" db:"platform"`
	PlatformUserID      string     `json:"platform_user_id" db:"platform_user_id"`
	Username            string     `json:"username" db:"username"`
	DisplayName         *string    `json:"display_name,omitempty" db:"display_name"`
	Email               *string    `json:"email,omitempty" db:"email"`
	ProfileURL          *string    `json:"profile_url,omitempty" db:"profile_url"`
	ProfilePicture      *string    `json:"profile_picture,omitempty" db:"profile_picture"`
	AccessToken         string     `json:"-" db:"access_token"`
	RefreshToken        *string    `json:"-" db:"refresh_token"`
	TokenExpiresAt      *time.Time `json:"-" db:"token_expires_at"`
	ConnectedAt         time.Time  `json:"connected_at" db:"connected_at"`
	LastSync            *time.Time `json:"last_sync,omitempty" db:"last_sync"`
	IsActive            bool       `json:"is_active" db:"is_active"`
	CollectPosts        bool       `json:"collect_posts" db:"collect_posts"`
	CollectConnections  bool       `json:"collect_connections" db:"collect_connections"`
	CollectInteractions bool       `json:"collect_interactions" db:"collect_interactions"`
}

// OAuthState is the ephemeral handshake record created when an authorization
// URL is issued and consumed exactly once by the callback. Stored in Redis
// with a short TTL; never persisted beyond the handshake.
//
// CodeVerifier is only set for PKCE flows (Twitter).
type OAuthState struct {
	State        string    `json:"state"`
	UserID       string    `json:"user_id"`
	Platform     Platform  `json:"platform"`
	CodeVerifier string    `json:"code_verifier,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// BrowserCredential is a vaulted credential set for the browser-automation
// fallback collectors. The password is write-only through the API.
type BrowserCredential struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Platform  Platform  `json:"platform" db:"platform"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
