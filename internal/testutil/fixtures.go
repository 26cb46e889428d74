// Package testutil provides common testing utilities, fixtures, and helpers
// for use across test files in the platform.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/osintlab/osint-platform/internal/models"
)

// TestUser creates a test user with default values
func TestUser() *models.User {
	return &models.User{
		ID:        uuid.New(),
		Username:  "testuser",
		Email:     "test@example.com",
		FullName:  StringPtr("Test User"),
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// TestUserWithUsername creates a test user with a specific username
func TestUserWithUsername(username string) *models.User {
	user := TestUser()
	user.Username = username
	return user
}

// TestUserWithID creates a test user with a specific ID
func TestUserWithID(id uuid.UUID) *models.User {
	user := TestUser()
	user.ID = id
	return user
}

// TestUserWithPlatforms creates a test user with collection permissions
// granted for the given platforms
func TestUserWithPlatforms(platforms ...models.Platform) *models.User {
	user := TestUser()
	user.PermissionsGranted = len(platforms) > 0
	user.EnabledPlatforms = platforms
	user.LastPermissionsUpdate = TimePtr(time.Now())
	return user
}

// TestSocialAccount creates a connected social account for a user
func TestSocialAccount(userID uuid.UUID, platform models.Platform) *models.SocialAccount {
	return &models.SocialAccount{
		ID:             uuid.New(),
		UserID:         userID,
		Platform:       platform,
		PlatformUserID: "platform-user-123",
		Username:       "connected_account",
		AccessToken:    "provider-access-token",
		ConnectedAt:    time.Now(),
		IsActive:       true,
		CollectPosts:   true,
	}
}

// TestJob creates a pending collection job for a user
func TestJob(userID uuid.UUID, platform models.Platform) *models.CollectionJob {
	now := time.Now()
	return &models.CollectionJob{
		ID:        uuid.New().String(),
		UserID:    userID.String(),
		Platform:  platform,
		Status:    models.JobPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TimePtr returns a pointer to the given time
func TimePtr(t time.Time) *time.Time {
	return &t
}

// StringPtr returns a pointer to the given string
func StringPtr(s string) *string {
	return &s
}

// UserAgents provides common user agent strings for testing
var UserAgents = struct {
	Chrome       string
	Safari       string
	Firefox      string
	MobileChrome string
	MobileSafari string
	Unknown      string
}{
	Chrome:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	Safari:       "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
	Firefox:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	MobileChrome: "Mozilla/5.0 (Linux; Android 13) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.6099.144 Mobile Safari/537.36",
	MobileSafari: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
	Unknown:      "",
}

// IPAddresses provides test IP addresses
var IPAddresses = struct {
	Public     string
	Private    string
	Localhost  string
	Private10  string
	Private172 string
}{
	Public:     "203.0.113.42",
	Private:    "192.168.1.100",
	Localhost:  "127.0.0.1",
	Private10:  "10.0.0.1",
	Private172: "172.16.0.1",
}
