package client

import "time"

// User is the account profile returned by the backend.
type User struct {
	ID                 string     `json:"id"`
	Username           string     `json:"username"`
	Email              string     `json:"email"`
	FullName           *string    `json:"full_name,omitempty"`
	IsActive           bool       `json:"is_active"`
	PermissionsGranted bool       `json:"permissions_granted"`
	EnabledPlatforms   []Platform `json:"enabled_platforms"`
	CreatedAt          time.Time  `json:"created_at"`
}

// Token is the authentication response from login and register.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *User     `json:"user"`
}

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name,omitempty"`
}

// SocialAccount is one connected platform account.
type SocialAccount struct {
	ID                  string     `json:"id"`
	Platform            Platform   `json:"platform"`
	PlatformUserID      string     `json:"platform_user_id"`
	Username            string     `json:"username"`
	DisplayName         *string    `json:"display_name,omitempty"`
	ConnectedAt         time.Time  `json:"connected_at"`
	LastSync            *time.Time `json:"last_sync,omitempty"`
	IsActive            bool       `json:"is_active"`
	CollectPosts        bool       `json:"collect_posts"`
	CollectConnections  bool       `json:"collect_connections"`
	CollectInteractions bool       `json:"collect_interactions"`
}

// Permissions reports the collection permission flags for the user.
type Permissions struct {
	PermissionsGranted bool       `json:"permissions_granted"`
	EnabledPlatforms   []Platform `json:"enabled_platforms"`
	LastUpdate         *time.Time `json:"last_update,omitempty"`
}

// CredentialConnectRequest is the payload for the credential-based connect
// fallback used by platforms without OAuth support in this deployment.
type CredentialConnectRequest struct {
	Platform Platform `json:"platform"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Target   string   `json:"target,omitempty"`
	MaxPosts int      `json:"max_posts,omitempty"`
	APIToken string   `json:"api_token,omitempty"`
}

// CollectionJob is the status record for a background collection run.
type CollectionJob struct {
	ID             string    `json:"id"`
	Platform       Platform  `json:"platform"`
	Target         string    `json:"target,omitempty"`
	Status         string    `json:"status"`
	CollectedPosts int       `json:"collected_posts"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DashboardStats is the headline counter card data.
type DashboardStats struct {
	TotalPosts     int       `json:"total_posts"`
	ActiveThreats  int       `json:"active_threats"`
	TrendingTopics int       `json:"trending_topics"`
	SystemHealth   float64   `json:"system_health"`
	LastUpdated    time.Time `json:"last_updated"`
}

// ThreatAlert is one entry in the recent-threats list.
type ThreatAlert struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Platform        string  `json:"platform"`
	TimeAgo         string  `json:"time_ago"`
	Severity        string  `json:"severity"`
	ConfidenceScore float64 `json:"confidence_score"`
	ThreatType      string  `json:"threat_type"`
}

// ActivityPoint is one day of collection activity.
type ActivityPoint struct {
	Date    string `json:"date"`
	Posts   int    `json:"posts"`
	Threats int    `json:"threats"`
	Trends  int    `json:"trends"`
}
