package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/osintlab/osint-platform/internal/database"
	"github.com/osintlab/osint-platform/internal/middleware"
	"github.com/osintlab/osint-platform/internal/models"
	"github.com/osintlab/osint-platform/pkg/utils"
)

// CollectorManager dispatches credential-based collection and scrape jobs
// and manages the credential vault.
type CollectorManager interface {
	ConnectWithCredentials(ctx context.Context, userID uuid.UUID, platform models.Platform, email, password, target string, maxPosts int) (*models.CollectionJob, error)
	StartBrowserScrape(ctx context.Context, userID uuid.UUID, platform models.Platform, target string) (*models.CollectionJob, error)
	GetJob(ctx context.Context, userID uuid.UUID, jobID string) (*models.CollectionJob, error)
	SaveCredential(ctx context.Context, userID uuid.UUID, platform models.Platform, email, password string) (*models.BrowserCredential, error)
	GetCredential(ctx context.Context, userID uuid.UUID, platform models.Platform) (*models.BrowserCredential, error)
}

// HandleCollector runs a synchronous handle-based Twitter collection.
type HandleCollector interface {
	CollectTwitterHandle(ctx context.Context, userID uuid.UUID, handle string, maxPosts int) (*models.CollectionJob, error)
}

// CollectHandler handles credential connects, browser scraping, and job
// status polling.
type CollectHandler struct {
	collector CollectorManager
	twitter   HandleCollector
}

// NewCollectHandler creates a collection handler.
func NewCollectHandler(collector CollectorManager, twitter HandleCollector) *CollectHandler {
	return &CollectHandler{
		collector: collector,
		twitter:   twitter,
	}
}

// ConnectCredentials stores platform credentials and starts a background
// credential-based collection. Used for platforms whose APIs don't expose
// enough data through OAuth (Instagram in particular). Replies as soon as
// the job is queued; progress is polled through the status endpoint.
//
// @Summary      Connect with credentials
// @Description  Vaults credentials and enqueues a credential-based collection job.
// @Tags         collect
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      object  true  "Credentials"  example({"platform": "instagram", "email": "a@b.c", "password": "pw", "target": "someuser", "max_posts": 20})
// @Success      202   {object}  map[string]interface{}  "Job queued"
// @Failure      400   {object}  utils.ErrorResponse     "Missing fields or unknown platform"
// @Failure      401   {object}  utils.ErrorResponse
// @Router       /api/v1/collect/connect/credentials [post]
func (h *CollectHandler) ConnectCredentials(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req struct {
		Platform string `json:"platform"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Target   string `json:"target"`
		MaxPosts int    `json:"max_posts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		utils.RespondWithError(w, r, http.StatusBadRequest, "email and password are required")
		return
	}

	platform, err := models.ParsePlatform(req.Platform)
	if err != nil {
		utils.RespondWithError(w, r, http.StatusBadRequest, "Unsupported platform: "+req.Platform)
		return
	}

	job, err := h.collector.ConnectWithCredentials(r.Context(), user.ID, platform, req.Email, req.Password, req.Target, req.MaxPosts)
	if err != nil {
		log.Error().Err(err).Str("platform", string(platform)).Msg("Failed to start credential collection")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to start collection")
		return
	}

	middleware.IncrementCollectionJobs(string(platform), "enqueued")

	utils.RespondWithJSON(w, r, http.StatusAccepted, map[string]interface{}{
		"success": true,
		"message": "Collection started for " + string(platform),
		"job_id":  job.ID,
	})
}

// ConnectStatus reports the state of a credential collection job.
//
// @Summary      Credential collection status
// @Tags         collect
// @Produce      json
// @Security     BearerAuth
// @Param        job_id  query     string  true  "Job ID returned by the connect endpoint"
// @Success      200     {object}  models.CollectionJob
// @Failure      400     {object}  utils.ErrorResponse  "Missing job_id"
// @Failure      404     {object}  utils.ErrorResponse  "Job not found"
// @Router       /api/v1/collect/connect/status [get]
func (h *CollectHandler) ConnectStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	jobID := r.URL.Query().Get("job_id")
	if jobID == "" {
		utils.RespondWithError(w, r, http.StatusBadRequest, "job_id query parameter is required")
		return
	}

	h.respondJob(w, r, user.ID, jobID)
}

// TwitterCredentials collects recent tweets for a public handle.
// Runs synchronously against twitterapi.io; the response carries the
// completed (or failed) job.
//
// @Summary      Connect Twitter by handle
// @Description  Collects recent tweets for a public handle without OAuth.
// @Tags         collect
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      object  true  "Handle"  example({"username": "jack", "max_posts": 20})
// @Success      200   {object}  models.CollectionJob
// @Failure      400   {object}  utils.ErrorResponse  "Missing username"
// @Failure      502   {object}  utils.ErrorResponse  "Collection failed"
// @Router       /api/v1/twitter/connect/credentials [post]
func (h *CollectHandler) TwitterCredentials(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req struct {
		Username string `json:"username"`
		MaxPosts int    `json:"max_posts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	handle := strings.TrimPrefix(strings.TrimSpace(req.Username), "@")
	if handle == "" {
		utils.RespondWithError(w, r, http.StatusBadRequest, "username is required")
		return
	}

	job, err := h.twitter.CollectTwitterHandle(r.Context(), user.ID, handle, req.MaxPosts)
	if err != nil {
		log.Error().Err(err).Str("handle", handle).Msg("Twitter handle collection failed")
		middleware.IncrementCollectionJobs(string(models.PlatformTwitter), "failed")
		if job != nil {
			// Return the failed job so the client sees the recorded error
			utils.RespondWithJSON(w, r, http.StatusBadGateway, job)
			return
		}
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to collect tweets")
		return
	}

	middleware.IncrementCollectionJobs(string(models.PlatformTwitter), "completed")
	utils.RespondWithJSON(w, r, http.StatusOK, job)
}

// SaveBrowserCredentials vaults credentials for the browser collectors.
//
// @Summary      Store browser credentials
// @Tags         browser
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        platform  path      string  true  "Platform"
// @Param        body      body      object  true  "Credentials"  example({"email": "a@b.c", "password": "pw"})
// @Success      201       {object}  map[string]string    "Credentials stored"
// @Failure      400       {object}  utils.ErrorResponse
// @Router       /api/v1/browser/credentials/{platform} [post]
func (h *CollectHandler) SaveBrowserCredentials(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	platform, err := models.ParsePlatform(chi.URLParam(r, "platform"))
	if err != nil {
		utils.RespondWithError(w, r, http.StatusBadRequest, "Unsupported platform: "+chi.URLParam(r, "platform"))
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		utils.RespondWithError(w, r, http.StatusBadRequest, "email and password are required")
		return
	}

	if _, err := h.collector.SaveCredential(r.Context(), user.ID, platform, req.Email, req.Password); err != nil {
		log.Error().Err(err).Str("platform", string(platform)).Msg("Failed to store credentials")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to store credentials")
		return
	}

	utils.RespondWithMessage(w, r, http.StatusCreated, "Credentials stored for "+string(platform))
}

// GetBrowserCredentials returns the vaulted credential record with the
// email masked. The password never leaves the vault.
//
// @Summary      Fetch stored browser credentials
// @Tags         browser
// @Produce      json
// @Security     BearerAuth
// @Param        platform  path      string  true  "Platform"
// @Success      200       {object}  map[string]interface{}  "Masked credential record"
// @Failure      404       {object}  utils.ErrorResponse     "No credentials stored"
// @Router       /api/v1/browser/credentials/{platform} [get]
func (h *CollectHandler) GetBrowserCredentials(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	platform, err := models.ParsePlatform(chi.URLParam(r, "platform"))
	if err != nil {
		utils.RespondWithError(w, r, http.StatusBadRequest, "Unsupported platform: "+chi.URLParam(r, "platform"))
		return
	}

	cred, err := h.collector.GetCredential(r.Context(), user.ID, platform)
	if err != nil {
		if errors.Is(err, database.ErrAccountNotFound) {
			utils.RespondWithError(w, r, http.StatusNotFound, "No "+string(platform)+" credentials stored")
			return
		}
		log.Error().Err(err).Str("platform", string(platform)).Msg("Failed to load credentials")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to load credentials")
		return
	}

	utils.RespondWithJSON(w, r, http.StatusOK, map[string]interface{}{
		"platform":   cred.Platform,
		"email":      maskEmail(cred.Email),
		"created_at": cred.CreatedAt,
		"updated_at": cred.UpdatedAt,
	})
}

// BrowserScrape enqueues a browser-automation scrape job.
// Requires previously stored credentials for the platform.
//
// @Summary      Start a browser scrape
// @Tags         browser
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      object  true  "Scrape request"  example({"platform": "instagram", "target": "someuser"})
// @Success      202   {object}  map[string]interface{}  "Job queued"
// @Failure      400   {object}  utils.ErrorResponse     "No credentials stored"
// @Router       /api/v1/browser/scrape [post]
func (h *CollectHandler) BrowserScrape(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req struct {
		Platform string `json:"platform"`
		Target   string `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	platform, err := models.ParsePlatform(req.Platform)
	if err != nil {
		utils.RespondWithError(w, r, http.StatusBadRequest, "Unsupported platform: "+req.Platform)
		return
	}

	job, err := h.collector.StartBrowserScrape(r.Context(), user.ID, platform, req.Target)
	if err != nil {
		if errors.Is(err, database.ErrAccountNotFound) {
			utils.RespondWithError(w, r, http.StatusBadRequest, "No "+string(platform)+" credentials stored. Store credentials first.")
			return
		}
		log.Error().Err(err).Str("platform", string(platform)).Msg("Failed to start scrape")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to start scrape")
		return
	}

	middleware.IncrementCollectionJobs(string(platform), "enqueued")

	utils.RespondWithJSON(w, r, http.StatusAccepted, map[string]interface{}{
		"message": "Scrape started",
		"job_id":  job.ID,
	})
}

// BrowserJob reports the state of a scrape or collection job.
//
// @Summary      Job status
// @Tags         browser
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  models.CollectionJob
// @Failure      404  {object}  utils.ErrorResponse  "Job not found"
// @Router       /api/v1/browser/job/{id} [get]
func (h *CollectHandler) BrowserJob(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	h.respondJob(w, r, user.ID, chi.URLParam(r, "id"))
}

// respondJob looks up a job for the user and writes it, mapping lookup
// failures to 404. Ownership checks happen in the service so other users'
// jobs are indistinguishable from missing ones.
func (h *CollectHandler) respondJob(w http.ResponseWriter, r *http.Request, userID uuid.UUID, jobID string) {
	job, err := h.collector.GetJob(r.Context(), userID, jobID)
	if err != nil {
		utils.RespondWithError(w, r, http.StatusNotFound, "Collection job not found")
		return
	}
	utils.RespondWithJSON(w, r, http.StatusOK, job)
}

// maskEmail hides the local part of an address except its first character.
func maskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return "***"
	}
	if at == 1 {
		return "***" + email[at:]
	}
	return email[:1] + "***" + email[at:]
}
