package models

import "time"

// DashboardStats is the aggregate headline card data for the dashboard.
type DashboardStats struct {
	TotalPosts     int       `json:"total_posts"`
	ActiveThreats  int       `json:"active_threats"`
	TrendingTopics int       `json:"trending_topics"`
	SystemHealth   float64   `json:"system_health"`
	LastUpdated    time.Time `json:"last_updated"`
}

// ThreatAlert is one row in the recent-threats list.
type ThreatAlert struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Platform        string  `json:"platform"`
	TimeAgo         string  `json:"time_ago"`
	Severity        string  `json:"severity"`
	ConfidenceScore float64 `json:"confidence_score"`
	ThreatType      string  `json:"threat_type"`
	SourceURL       *string `json:"source_url,omitempty"`
}

// ActivityPoint is one day of collection activity for the trend chart.
type ActivityPoint struct {
	Date    string `json:"date"`
	Posts   int    `json:"posts"`
	Threats int    `json:"threats"`
	Trends  int    `json:"trends"`
}
