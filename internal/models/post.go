package models

import (
	"time"

	"github.com/google/uuid"
)

// CollectedPost is one scraped post persisted by the collection workers.
// Dashboard aggregates (stats, threats, activity) are computed over these
// rows per user.
type CollectedPost struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	Platform    Platform   `json:"platform" db:"platform"`
	ExternalID  string     `json:"external_id" db:"external_id"`
	Author      string     `json:"author" db:"author"`
	Content     string     `json:"content" db:"content"`
	ThreatScore float64    `json:"threat_score" db:"threat_score"`
	PostedAt    *time.Time `json:"posted_at,omitempty" db:"posted_at"`
	CollectedAt time.Time  `json:"collected_at" db:"collected_at"`
}
