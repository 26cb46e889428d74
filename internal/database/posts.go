package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/osintlab/osint-platform/internal/models"
)

// Threat score cutoffs used by the dashboard aggregates. Scores come from
// the collectors' scoring pass and range 0..1.
const (
	threatScoreActive = 0.7
	threatScoreMedium = 0.4
)

// InsertCollectedPosts stores a batch of scraped posts for a user.
// Duplicate (user, platform, external_id) rows are skipped so re-running a
// collection for the same target is idempotent. Returns the number of rows
// actually inserted.
func (p *PostgresDB) InsertCollectedPosts(ctx context.Context, posts []models.CollectedPost) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO collected_posts (user_id, platform, external_id, author, content, threat_score, posted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, platform, external_id) DO NOTHING`

	inserted := 0
	err := p.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, post := range posts {
			result, err := tx.ExecContext(ctx, query,
				post.UserID, post.Platform, post.ExternalID,
				post.Author, post.Content, post.ThreatScore, post.PostedAt)
			if err != nil {
				return fmt.Errorf("failed to insert collected post: %w", err)
			}
			if n, err := result.RowsAffected(); err == nil {
				inserted += int(n)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return inserted, nil
}

// GetDashboardStats computes the headline numbers for a user's dashboard.
// Trending topics approximates distinct high-activity authors over the last
// week; system health is the share of recent collection passes without a
// threat spike.
func (p *PostgresDB) GetDashboardStats(ctx context.Context, userID uuid.UUID) (*models.DashboardStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE threat_score >= $2),
			COUNT(DISTINCT author) FILTER (WHERE collected_at > NOW() - INTERVAL '7 days')
		FROM collected_posts
		WHERE user_id = $1`

	stats := models.DashboardStats{LastUpdated: time.Now().UTC()}
	err := p.db.QueryRowContext(ctx, query, userID, threatScoreActive).Scan(
		&stats.TotalPosts,
		&stats.ActiveThreats,
		&stats.TrendingTopics,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute dashboard stats: %w", err)
	}

	if stats.TotalPosts == 0 {
		stats.SystemHealth = 100
	} else {
		stats.SystemHealth = 100 * (1 - float64(stats.ActiveThreats)/float64(stats.TotalPosts))
	}

	return &stats, nil
}

// GetRecentThreats returns the highest-scoring recent posts as threat
// alerts, newest first, capped at limit.
func (p *PostgresDB) GetRecentThreats(ctx context.Context, userID uuid.UUID, limit int) ([]models.ThreatAlert, error) {
	query := `
		SELECT id, platform, author, content, threat_score, collected_at
		FROM collected_posts
		WHERE user_id = $1 AND threat_score >= $2
		ORDER BY collected_at DESC
		LIMIT $3`

	rows, err := p.db.QueryContext(ctx, query, userID, threatScoreMedium, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent threats: %w", err)
	}
	defer rows.Close()

	threats := make([]models.ThreatAlert, 0, limit)
	for rows.Next() {
		var (
			alert       models.ThreatAlert
			author      string
			content     string
			collectedAt time.Time
		)
		if err := rows.Scan(&alert.ID, &alert.Platform, &author, &content, &alert.ConfidenceScore, &collectedAt); err != nil {
			return nil, fmt.Errorf("failed to scan threat row: %w", err)
		}

		alert.Title = threatTitle(author, content)
		alert.TimeAgo = humanizeSince(time.Since(collectedAt))
		alert.ThreatType = "content"
		switch {
		case alert.ConfidenceScore >= threatScoreActive:
			alert.Severity = "high"
		default:
			alert.Severity = "medium"
		}

		threats = append(threats, alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate threat rows: %w", err)
	}

	return threats, nil
}

// GetActivity returns one point per day over the last days, oldest first.
// Days with no collected posts are filled with zero rows so charts do not
// show gaps.
func (p *PostgresDB) GetActivity(ctx context.Context, userID uuid.UUID, days int) ([]models.ActivityPoint, error) {
	query := `
		SELECT
			d::date,
			COUNT(cp.id),
			COUNT(cp.id) FILTER (WHERE cp.threat_score >= $3),
			COUNT(DISTINCT cp.author)
		FROM generate_series(NOW()::date - ($2 - 1) * INTERVAL '1 day', NOW()::date, INTERVAL '1 day') AS d
		LEFT JOIN collected_posts cp
			ON cp.user_id = $1 AND cp.collected_at::date = d::date
		GROUP BY d
		ORDER BY d`

	rows, err := p.db.QueryContext(ctx, query, userID, days, threatScoreActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity: %w", err)
	}
	defer rows.Close()

	points := make([]models.ActivityPoint, 0, days)
	for rows.Next() {
		var (
			point models.ActivityPoint
			day   time.Time
		)
		if err := rows.Scan(&day, &point.Posts, &point.Threats, &point.Trends); err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		point.Date = day.Format("2006-01-02")
		points = append(points, point)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity rows: %w", err)
	}

	return points, nil
}

func threatTitle(author, content string) string {
	const maxTitle = 80
	title := content
	if len(title) > maxTitle {
		title = title[:maxTitle] + "..."
	}
	if author != "" {
		return fmt.Sprintf("%s: %s", author, title)
	}
	return title
}

func humanizeSince(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
