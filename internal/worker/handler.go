package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"github.com/osintlab/osint-platform/internal/database"
	"github.com/osintlab/osint-platform/internal/models"
	"github.com/osintlab/osint-platform/pkg/cache"
)

// Handler processes collection tasks.
// Each task loads its job record, flips it to running, executes the
// platform collector, persists the results, and records the final state.
// Task errors are also written to the job so clients polling the job
// endpoint see failures without access to worker logs.
type Handler struct {
	db       *database.PostgresDB
	redis    *database.RedisDB
	cache    *cache.Cache
	registry map[models.Platform]Collector
	maxPosts int
}

// NewHandler creates a task handler with the given collector registry.
func NewHandler(db *database.PostgresDB, redis *database.RedisDB, c *cache.Cache, registry map[models.Platform]Collector, maxPosts int) *Handler {
	return &Handler{
		db:       db,
		redis:    redis,
		cache:    c,
		registry: registry,
		maxPosts: maxPosts,
	}
}

// Register attaches the handler's task processors to the mux.
func (h *Handler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeCollection, h.ProcessCollection)
	mux.HandleFunc(TypeCredentialCollection, h.ProcessCredentialCollection)
	mux.HandleFunc(TypeBrowserScrape, h.ProcessBrowserScrape)
}

// ProcessCollection runs an API-token collection for one platform.
func (h *Handler) ProcessCollection(ctx context.Context, task *asynq.Task) error {
	var payload CollectionPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal collection payload: %w", err)
	}

	return h.runJob(ctx, payload.JobID, func(ctx context.Context, job *models.CollectionJob) (int, error) {
		userID, err := uuid.Parse(payload.UserID)
		if err != nil {
			return 0, fmt.Errorf("corrupt payload user id: %w", err)
		}

		acc, err := h.db.GetSocialAccount(ctx, userID, payload.Platform)
		if err != nil {
			return 0, fmt.Errorf("no %s account connected: %w", payload.Platform, err)
		}

		return h.collect(ctx, acc, payload.Platform, payload.Target, h.maxPosts)
	})
}

// ProcessCredentialCollection runs a credential-based collection.
// The vaulted credential proves the user can access the platform; the
// actual fetching still goes through the platform collector with whatever
// account record exists, or a synthetic one bound to the credential email.
func (h *Handler) ProcessCredentialCollection(ctx context.Context, task *asynq.Task) error {
	var payload CredentialPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal credential payload: %w", err)
	}

	return h.runJob(ctx, payload.JobID, func(ctx context.Context, job *models.CollectionJob) (int, error) {
		userID, err := uuid.Parse(payload.UserID)
		if err != nil {
			return 0, fmt.Errorf("corrupt payload user id: %w", err)
		}

		cred, err := h.db.GetBrowserCredential(ctx, userID, payload.Platform)
		if err != nil {
			return 0, fmt.Errorf("no stored credentials for %s: %w", payload.Platform, err)
		}

		acc, err := h.db.GetSocialAccount(ctx, userID, payload.Platform)
		if err != nil {
			// No OAuth connection; collect against the credential identity
			acc = &models.SocialAccount{
				UserID:   userID,
				Platform: payload.Platform,
				Username: cred.Email,
			}
		}

		maxPosts := payload.MaxPosts
		if maxPosts <= 0 {
			maxPosts = h.maxPosts
		}

		return h.collect(ctx, acc, payload.Platform, payload.Target, maxPosts)
	})
}

// ProcessBrowserScrape runs a browser-automation scrape.
// The scrape reuses the credential collection path; a dedicated headless
// browser driver can be slotted into the registry per platform.
func (h *Handler) ProcessBrowserScrape(ctx context.Context, task *asynq.Task) error {
	var payload ScrapePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal scrape payload: %w", err)
	}

	return h.runJob(ctx, payload.JobID, func(ctx context.Context, job *models.CollectionJob) (int, error) {
		userID, err := uuid.Parse(payload.UserID)
		if err != nil {
			return 0, fmt.Errorf("corrupt payload user id: %w", err)
		}

		cred, err := h.db.GetBrowserCredential(ctx, userID, payload.Platform)
		if err != nil {
			return 0, fmt.Errorf("no stored credentials for %s: %w", payload.Platform, err)
		}

		acc := &models.SocialAccount{
			UserID:   userID,
			Platform: payload.Platform,
			Username: cred.Email,
		}

		return h.collect(ctx, acc, payload.Platform, payload.Target, h.maxPosts)
	})
}

// CollectTwitterHandle runs a handle-based Twitter collection inline.
// Handle collection goes through twitterapi.io with a server-side key, so
// it needs neither a connected account nor a queue round trip; the job
// record is still written to Redis for a uniform status surface.
func (h *Handler) CollectTwitterHandle(ctx context.Context, userID uuid.UUID, handle string, maxPosts int) (*models.CollectionJob, error) {
	if maxPosts <= 0 {
		maxPosts = h.maxPosts
	}

	now := time.Now().UTC()
	job := &models.CollectionJob{
		ID:        uuid.New().String(),
		UserID:    userID.String(),
		Platform:  models.PlatformTwitter,
		Target:    handle,
		Status:    models.JobRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.redis.SetJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to record job: %w", err)
	}

	acc := &models.SocialAccount{
		UserID:   userID,
		Platform: models.PlatformTwitter,
		Username: handle,
	}

	collected, runErr := h.collect(ctx, acc, models.PlatformTwitter, handle, maxPosts)

	job.UpdatedAt = time.Now().UTC()
	if runErr != nil {
		job.Status = models.JobFailed
		job.Error = runErr.Error()
	} else {
		job.Status = models.JobCompleted
		job.CollectedPosts = collected
	}
	if err := h.redis.SetJob(ctx, job); err != nil {
		log.Warn().Err(err).Str("job_id", job.ID).Msg("Failed to record job result")
	}

	if runErr != nil {
		return job, runErr
	}
	return job, nil
}

// collect dispatches to the platform collector and persists the results.
func (h *Handler) collect(ctx context.Context, acc *models.SocialAccount, platform models.Platform, target string, maxPosts int) (int, error) {
	collector, ok := h.registry[platform.Canonical()]
	if !ok {
		return 0, fmt.Errorf("no collector registered for platform %s", platform)
	}

	posts, err := collector.Collect(ctx, acc, target, maxPosts)
	if err != nil {
		return 0, err
	}

	inserted, err := h.db.InsertCollectedPosts(ctx, posts)
	if err != nil {
		return 0, err
	}

	if err := h.db.TouchSocialAccountSync(ctx, acc.UserID, platform); err != nil {
		log.Warn().Err(err).Str("platform", string(platform)).Msg("Failed to record sync time")
	}

	// Drop cached dashboard data so the next fetch sees the new posts
	if err := h.cache.DeletePattern(ctx, cache.StatsPattern(acc.UserID)); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate dashboard cache")
	}

	return inserted, nil
}

// runJob wraps a collection function with job state bookkeeping.
func (h *Handler) runJob(ctx context.Context, jobID string, fn func(ctx context.Context, job *models.CollectionJob) (int, error)) error {
	job, err := h.redis.GetJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("job %s not found: %w", jobID, err)
	}

	job.Status = models.JobRunning
	job.UpdatedAt = time.Now().UTC()
	if err := h.redis.SetJob(ctx, job); err != nil {
		log.Warn().Err(err).Str("job_id", jobID).Msg("Failed to mark job running")
	}

	collected, runErr := fn(ctx, job)

	job.UpdatedAt = time.Now().UTC()
	if runErr != nil {
		job.Status = models.JobFailed
		job.Error = runErr.Error()
	} else {
		job.Status = models.JobCompleted
		job.CollectedPosts = collected
	}

	if err := h.redis.SetJob(ctx, job); err != nil {
		log.Error().Err(err).Str("job_id", jobID).Msg("Failed to record job result")
	}

	if runErr != nil {
		log.Error().
			Err(runErr).
			Str("job_id", jobID).
			Str("platform", string(job.Platform)).
			Msg("Collection job failed")
		return runErr
	}

	log.Info().
		Str("job_id", jobID).
		Str("platform", string(job.Platform)).
		Int("collected", collected).
		Msg("Collection job completed")

	return nil
}
