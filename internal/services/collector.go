package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/osintlab/osint-platform/internal/models"
)

// ErrNoPlatformsEnabled is returned when a collection run is requested but
// the user has not enabled any platform for data collection.
var ErrNoPlatformsEnabled = errors.New("No platforms enabled for data collection")

// JobStore tracks collection job state in Redis.
type JobStore interface {
	SetJob(ctx context.Context, job *models.CollectionJob) error
	GetJob(ctx context.Context, jobID string) (*models.CollectionJob, error)
}

// TaskEnqueuer dispatches background work to the worker pool.
// Implemented by the asynq client wrapper in internal/worker.
type TaskEnqueuer interface {
	EnqueueCollection(ctx context.Context, job *models.CollectionJob) error
	EnqueueCredentialCollection(ctx context.Context, job *models.CollectionJob, maxPosts int) error
	EnqueueBrowserScrape(ctx context.Context, job *models.CollectionJob) error
}

// CredentialVault stores credential sets for the browser-automation
// collectors.
type CredentialVault interface {
	UpsertBrowserCredential(ctx context.Context, cred *models.BrowserCredential) (*models.BrowserCredential, error)
	GetBrowserCredential(ctx context.Context, userID uuid.UUID, platform models.Platform) (*models.BrowserCredential, error)
}

// CollectorService coordinates background data collection.
// It validates collection requests, records job state, and hands the actual
// work to the asynq worker pool. Handlers return the job IDs immediately so
// clients can poll for progress.
type CollectorService struct {
	jobs     JobStore
	queue    TaskEnqueuer
	vault    CredentialVault
	maxPosts int
}

// NewCollectorService creates a new collector service.
func NewCollectorService(jobs JobStore, queue TaskEnqueuer, vault CredentialVault, maxPosts int) *CollectorService {
	return &CollectorService{
		jobs:     jobs,
		queue:    queue,
		vault:    vault,
		maxPosts: maxPosts,
	}
}

// StartCollection enqueues one collection job per enabled platform.
// Fails with ErrNoPlatformsEnabled when the user has granted no platform
// permissions, before any job is created.
func (s *CollectorService) StartCollection(ctx context.Context, user *models.User) ([]models.CollectionJob, error) {
	if !user.PermissionsGranted || len(user.EnabledPlatforms) == 0 {
		return nil, ErrNoPlatformsEnabled
	}

	jobs := make([]models.CollectionJob, 0, len(user.EnabledPlatforms))
	for _, platform := range user.EnabledPlatforms {
		job := newJob(user.ID, platform, "")

		if err := s.jobs.SetJob(ctx, &job); err != nil {
			return nil, err
		}
		if err := s.queue.EnqueueCollection(ctx, &job); err != nil {
			s.markFailed(ctx, &job, err)
			return nil, err
		}

		jobs = append(jobs, job)
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Int("jobs", len(jobs)).
		Msg("Collection run dispatched")

	return jobs, nil
}

// ConnectWithCredentials stores a credential set and starts a credential
// based collection for platforms without a usable OAuth API (Instagram in
// particular). The target and post cap ride along in the job.
func (s *CollectorService) ConnectWithCredentials(ctx context.Context, userID uuid.UUID, platform models.Platform, email, password, target string, maxPosts int) (*models.CollectionJob, error) {
	if maxPosts <= 0 {
		maxPosts = s.maxPosts
	}

	cred := &models.BrowserCredential{
		UserID:   userID,
		Platform: platform,
		Email:    email,
		Password: password,
	}
	if _, err := s.vault.UpsertBrowserCredential(ctx, cred); err != nil {
		return nil, err
	}

	job := newJob(userID, platform, target)
	if err := s.jobs.SetJob(ctx, &job); err != nil {
		return nil, err
	}
	if err := s.queue.EnqueueCredentialCollection(ctx, &job, maxPosts); err != nil {
		s.markFailed(ctx, &job, err)
		return nil, err
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("platform", string(platform)).
		Str("job_id", job.ID).
		Msg("Credential collection dispatched")

	return &job, nil
}

// StartBrowserScrape enqueues a browser-automation scrape against a target
// profile using previously vaulted credentials.
func (s *CollectorService) StartBrowserScrape(ctx context.Context, userID uuid.UUID, platform models.Platform, target string) (*models.CollectionJob, error) {
	// Verify credentials exist before accepting the job
	if _, err := s.vault.GetBrowserCredential(ctx, userID, platform); err != nil {
		return nil, err
	}

	job := newJob(userID, platform, target)
	if err := s.jobs.SetJob(ctx, &job); err != nil {
		return nil, err
	}
	if err := s.queue.EnqueueBrowserScrape(ctx, &job); err != nil {
		s.markFailed(ctx, &job, err)
		return nil, err
	}

	return &job, nil
}

// GetJob returns the current state of a collection job, enforcing that the
// caller owns it.
func (s *CollectorService) GetJob(ctx context.Context, userID uuid.UUID, jobID string) (*models.CollectionJob, error) {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID.String() {
		// Hide other users' jobs entirely
		return nil, errors.New("collection job not found")
	}
	return job, nil
}

// SaveCredential vaults a credential set without starting a collection.
func (s *CollectorService) SaveCredential(ctx context.Context, userID uuid.UUID, platform models.Platform, email, password string) (*models.BrowserCredential, error) {
	return s.vault.UpsertBrowserCredential(ctx, &models.BrowserCredential{
		UserID:   userID,
		Platform: platform,
		Email:    email,
		Password: password,
	})
}

// GetCredential returns the vaulted credential for (user, platform).
func (s *CollectorService) GetCredential(ctx context.Context, userID uuid.UUID, platform models.Platform) (*models.BrowserCredential, error) {
	return s.vault.GetBrowserCredential(ctx, userID, platform)
}

func newJob(userID uuid.UUID, platform models.Platform, target string) models.CollectionJob {
	now := time.Now().UTC()
	return models.CollectionJob{
		ID:        uuid.New().String(),
		UserID:    userID.String(),
		Platform:  platform,
		Target:    target,
		Status:    models.JobPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *CollectorService) markFailed(ctx context.Context, job *models.CollectionJob, cause error) {
	job.Status = models.JobFailed
	job.Error = cause.Error()
	job.UpdatedAt = time.Now().UTC()
	if err := s.jobs.SetJob(ctx, job); err != nil {
		log.Warn().Err(err).Str("job_id", job.ID).Msg("Failed to record job failure")
	}
}
