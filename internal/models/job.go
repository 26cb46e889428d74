package models

import "time"

// JobStatus enumerates the lifecycle of a background collection job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// CollectionJob tracks one background collection or scrape run.
// The authoritative copy lives in Redis keyed by job ID; the worker updates
// it as the run progresses and clients poll it through the job endpoint.
type CollectionJob struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Platform       Platform  `json:"platform"`
	Target         string    `json:"target,omitempty"`
	Status         JobStatus `json:"status"`
	CollectedPosts int       `json:"collected_posts"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
