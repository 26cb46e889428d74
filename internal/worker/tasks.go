// Package worker implements background collection processing on asynq.
// The HTTP layer enqueues tasks through Client; a separate worker process
// consumes them, runs the platform collectors, and reports progress through
// the Redis job store.
package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"github.com/osintlab/osint-platform/internal/models"
	"github.com/osintlab/osint-platform/pkg/config"
)

// Task type names routed by the worker mux.
const (
	TypeCollection           = "collection:run"
	TypeCredentialCollection = "collection:credentials"
	TypeBrowserScrape        = "browser:scrape"
)

// CollectionPayload is the payload for an API-token collection run.
type CollectionPayload struct {
	JobID    string          `json:"job_id"`
	UserID   string          `json:"user_id"`
	Platform models.Platform `json:"platform"`
	Target   string          `json:"target,omitempty"`
}

// CredentialPayload is the payload for a credential-based collection run.
// MaxPosts caps how many posts one run may fetch.
type CredentialPayload struct {
	JobID    string          `json:"job_id"`
	UserID   string          `json:"user_id"`
	Platform models.Platform `json:"platform"`
	Target   string          `json:"target,omitempty"`
	MaxPosts int             `json:"max_posts"`
}

// ScrapePayload is the payload for a browser-automation scrape.
type ScrapePayload struct {
	JobID    string          `json:"job_id"`
	UserID   string          `json:"user_id"`
	Platform models.Platform `json:"platform"`
	Target   string          `json:"target"`
}

// NewCollectionTask builds an asynq task for a collection job.
func NewCollectionTask(job *models.CollectionJob) (*asynq.Task, error) {
	data, err := json.Marshal(CollectionPayload{
		JobID:    job.ID,
		UserID:   job.UserID,
		Platform: job.Platform,
		Target:   job.Target,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal collection payload: %w", err)
	}
	return asynq.NewTask(TypeCollection, data), nil
}

// NewCredentialCollectionTask builds an asynq task for a credential-based
// collection job.
func NewCredentialCollectionTask(job *models.CollectionJob, maxPosts int) (*asynq.Task, error) {
	data, err := json.Marshal(CredentialPayload{
		JobID:    job.ID,
		UserID:   job.UserID,
		Platform: job.Platform,
		Target:   job.Target,
		MaxPosts: maxPosts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal credential payload: %w", err)
	}
	return asynq.NewTask(TypeCredentialCollection, data), nil
}

// NewBrowserScrapeTask builds an asynq task for a browser scrape job.
func NewBrowserScrapeTask(job *models.CollectionJob) (*asynq.Task, error) {
	data, err := json.Marshal(ScrapePayload{
		JobID:    job.ID,
		UserID:   job.UserID,
		Platform: job.Platform,
		Target:   job.Target,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scrape payload: %w", err)
	}
	return asynq.NewTask(TypeBrowserScrape, data), nil
}

// Client enqueues background tasks onto the collection queue.
// Implements the services.TaskEnqueuer interface.
type Client struct {
	client *asynq.Client
	queue  string
}

// NewClient creates an asynq client against the shared Redis instance.
func NewClient(cfg *config.RedisConfig, queue string) *Client {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Client{client: client, queue: queue}
}

// Close releases the underlying asynq client.
func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueCollection queues an API-token collection run.
func (c *Client) EnqueueCollection(ctx context.Context, job *models.CollectionJob) error {
	task, err := NewCollectionTask(job)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task, job.ID)
}

// EnqueueCredentialCollection queues a credential-based collection run.
func (c *Client) EnqueueCredentialCollection(ctx context.Context, job *models.CollectionJob, maxPosts int) error {
	task, err := NewCredentialCollectionTask(job, maxPosts)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task, job.ID)
}

// EnqueueBrowserScrape queues a browser-automation scrape.
func (c *Client) EnqueueBrowserScrape(ctx context.Context, job *models.CollectionJob) error {
	task, err := NewBrowserScrapeTask(job)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task, job.ID)
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task, jobID string) error {
	info, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.MaxRetry(3),
		asynq.TaskID(jobID),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	log.Debug().
		Str("task_id", info.ID).
		Str("type", task.Type()).
		Str("queue", info.Queue).
		Msg("Task enqueued")

	return nil
}
