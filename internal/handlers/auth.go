package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/osintlab/osint-platform/internal/middleware"
	"github.com/osintlab/osint-platform/internal/models"
	"github.com/osintlab/osint-platform/internal/services"
	"github.com/osintlab/osint-platform/pkg/utils"
)

// Authenticator handles registration and credential checks.
type Authenticator interface {
	Register(ctx context.Context, username, email, password string, fullName *string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.User, string, time.Time, error)
}

// TokenService issues and revokes bearer tokens.
type TokenService interface {
	GenerateToken(username string) (string, time.Time, error)
	RevokeToken(ctx context.Context, tokenString string) error
}

// SessionManager tracks login sessions in Redis.
type SessionManager interface {
	CreateSession(ctx context.Context, userID uuid.UUID, deviceInfo, ipAddress string) (string, error)
	ListUserSessions(ctx context.Context, userID uuid.UUID) ([]*models.LoginSession, error)
	RevokeSession(ctx context.Context, userID uuid.UUID, sessionID string) error
	RevokeAllSessions(ctx context.Context, userID uuid.UUID) error
}

// PermissionsDB persists collection permission changes.
type PermissionsDB interface {
	UpdatePermissions(ctx context.Context, userID uuid.UUID, granted bool, platforms []models.Platform) (*models.User, error)
}

// CollectionStarter dispatches collection runs for a user.
type CollectionStarter interface {
	StartCollection(ctx context.Context, user *models.User) ([]models.CollectionJob, error)
}

// UserInvalidator drops cached user entries after a write.
type UserInvalidator interface {
	InvalidateUser(ctx context.Context, userID uuid.UUID) error
}

// AuthHandler handles registration, login, and account endpoints.
type AuthHandler struct {
	auth      Authenticator
	tokens    TokenService
	sessions  SessionManager
	db        PermissionsDB
	collector CollectionStarter
	userCache UserInvalidator
}

// NewAuthHandler creates an auth handler with its service dependencies.
// The userCache parameter may be nil when caching is disabled.
func NewAuthHandler(auth Authenticator, tokens TokenService, sessions SessionManager, db PermissionsDB, collector CollectionStarter, userCache UserInvalidator) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		tokens:    tokens,
		sessions:  sessions,
		db:        db,
		collector: collector,
		userCache: userCache,
	}
}

// Token is the authentication response returned by register and login.
//
// JSON example:
//
//	{
//	  "access_token": "eyJhbGci...",
//	  "token_type": "bearer",
//	  "expires_at": "2024-01-20T15:00:00Z",
//	  "user": {"id": "...", "username": "alice", ...}
//	}
type Token struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *models.User `json:"user"`
}

// Register creates a new user account and returns a bearer token.
//
// @Summary      Register a new user
// @Description  Creates an account with username, email, and password. Returns a bearer token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      object  true  "Registration payload"  example({"username": "alice", "email": "alice@example.com", "password": "s3cret", "full_name": "Alice"})
// @Success      201   {object}  Token                "Account created"
// @Failure      400   {object}  utils.ErrorResponse  "Username or email already registered"
// @Failure      422   {object}  utils.ErrorResponse  "Missing required fields"
// @Router       /api/v1/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string  `json:"username"`
		Email    string  `json:"email"`
		Password string  `json:"password"`
		FullName *string `json:"full_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		utils.RespondWithError(w, r, http.StatusUnprocessableEntity, "username, email and password are required")
		return
	}

	user, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password, req.FullName)
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) || errors.Is(err, services.ErrEmailTaken) {
			middleware.IncrementAuthAttempts("register_conflict")
			utils.RespondWithError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		log.Error().Err(err).Str("username", req.Username).Msg("Registration failed")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, expiresAt, err := h.tokens.GenerateToken(user.Username)
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate token")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	h.recordSession(r, user.ID)
	middleware.IncrementAuthAttempts("register_success")

	utils.RespondWithJSON(w, r, http.StatusCreated, Token{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		User:        user,
	})
}

// Login authenticates with form-encoded credentials and returns a token.
// The form encoding matches OAuth2 password-grant tooling, so standard
// clients can post username/password without a JSON wrapper.
//
// @Summary      Login
// @Description  Authenticates with form-encoded username and password. Returns a bearer token.
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username  formData  string  true  "Username"
// @Param        password  formData  string  true  "Password"
// @Success      200       {object}  Token                "Authenticated"
// @Failure      400       {object}  utils.ErrorResponse  "Inactive user"
// @Failure      401       {object}  utils.ErrorResponse  "Incorrect username or password"
// @Router       /api/v1/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.RespondWithError(w, r, http.StatusBadRequest, "Invalid form data")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		utils.RespondWithError(w, r, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	user, token, expiresAt, err := h.auth.Login(r.Context(), username, password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			middleware.IncrementAuthAttempts("failure")
			utils.RespondWithError(w, r, http.StatusUnauthorized, err.Error())
		case errors.Is(err, services.ErrInactiveUser):
			middleware.IncrementAuthAttempts("inactive")
			utils.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		default:
			log.Error().Err(err).Str("username", username).Msg("Login failed")
			utils.RespondWithError(w, r, http.StatusInternalServerError, "Login failed")
		}
		return
	}

	h.recordSession(r, user.ID)
	middleware.IncrementAuthAttempts("success")

	utils.RespondWithJSON(w, r, http.StatusOK, Token{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		User:        user,
	})
}

// Me returns the authenticated user's profile.
//
// @Summary      Current user
// @Description  Returns the authenticated user's profile from the bearer token.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.User
// @Failure      401  {object}  utils.ErrorResponse  "Not authenticated"
// @Router       /api/v1/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}
	utils.RespondWithJSON(w, r, http.StatusOK, user)
}

// Logout revokes the current bearer token.
// Revocation is best-effort: an unparseable or already-expired token still
// produces a successful logout response.
//
// @Summary      Logout
// @Description  Blacklists the current token until its natural expiry.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string  "Logged out"
// @Failure      401  {object}  utils.ErrorResponse  "Not authenticated"
// @Router       /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if token, ok := middleware.GetToken(r.Context()); ok {
		if err := h.tokens.RevokeToken(r.Context(), token); err != nil {
			log.Warn().Err(err).Str("username", user.Username).Msg("Failed to revoke token")
		}
	}

	utils.RespondWithMessage(w, r, http.StatusOK, "User "+user.Username+" successfully logged out")
}

// PermissionsResponse reports the user's collection permission flags.
type PermissionsResponse struct {
	PermissionsGranted bool              `json:"permissions_granted"`
	EnabledPlatforms   []models.Platform `json:"enabled_platforms"`
	LastUpdate         *time.Time        `json:"last_update,omitempty"`
}

// GetPermissions returns the current collection permission flags.
//
// @Summary      Get collection permissions
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  PermissionsResponse
// @Failure      401  {object}  utils.ErrorResponse
// @Router       /api/v1/auth/permissions [get]
func (h *AuthHandler) GetPermissions(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	utils.RespondWithJSON(w, r, http.StatusOK, PermissionsResponse{
		PermissionsGranted: user.PermissionsGranted,
		EnabledPlatforms:   user.EnabledPlatforms,
		LastUpdate:         user.LastPermissionsUpdate,
	})
}

// UpdatePermissions persists a new set of enabled platforms.
// Unknown platform names are skipped rather than rejected, so a client
// speaking a newer platform list degrades gracefully. A successful update
// with at least one platform also dispatches a collection run; enqueue
// failures are logged but do not fail the permission change.
//
// @Summary      Update collection permissions
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      object  true  "Platform list"  example({"platforms": ["twitter", "reddit"]})
// @Success      200   {object}  PermissionsResponse
// @Failure      400   {object}  utils.ErrorResponse  "Invalid request body"
// @Failure      401   {object}  utils.ErrorResponse
// @Router       /api/v1/auth/permissions [post]
func (h *AuthHandler) UpdatePermissions(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req struct {
		Platforms []string `json:"platforms"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	platforms := make([]models.Platform, 0, len(req.Platforms))
	for _, raw := range req.Platforms {
		p, err := models.ParsePlatform(raw)
		if err != nil {
			log.Warn().Str("platform", raw).Msg("Skipping unknown platform in permissions update")
			continue
		}
		platforms = append(platforms, p.Canonical())
	}

	updated, err := h.db.UpdatePermissions(r.Context(), user.ID, len(platforms) > 0, platforms)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to update permissions")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to update permissions")
		return
	}

	if h.userCache != nil {
		if err := h.userCache.InvalidateUser(r.Context(), user.ID); err != nil {
			log.Warn().Err(err).Msg("Failed to invalidate user cache")
		}
	}

	// Kick off collection for the newly enabled platforms
	if len(platforms) > 0 {
		if _, err := h.collector.StartCollection(r.Context(), updated); err != nil {
			log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("Failed to dispatch collection after permissions update")
		}
	}

	utils.RespondWithJSON(w, r, http.StatusOK, PermissionsResponse{
		PermissionsGranted: updated.PermissionsGranted,
		EnabledPlatforms:   updated.EnabledPlatforms,
		LastUpdate:         updated.LastPermissionsUpdate,
	})
}

// CollectData dispatches a collection run across the user's enabled
// platforms.
//
// @Summary      Start data collection
// @Description  Enqueues one background collection job per enabled platform.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      202  {object}  map[string]interface{}  "Jobs dispatched"
// @Failure      400  {object}  utils.ErrorResponse     "No platforms enabled for data collection"
// @Failure      401  {object}  utils.ErrorResponse
// @Router       /api/v1/auth/collect-data [post]
func (h *AuthHandler) CollectData(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	jobs, err := h.collector.StartCollection(r.Context(), user)
	if err != nil {
		if errors.Is(err, services.ErrNoPlatformsEnabled) {
			utils.RespondWithError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to start collection")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to start collection")
		return
	}

	for _, job := range jobs {
		middleware.IncrementCollectionJobs(string(job.Platform), "enqueued")
	}

	utils.RespondWithJSON(w, r, http.StatusAccepted, map[string]interface{}{
		"message": "Data collection started",
		"jobs":    jobs,
	})
}

// ListSessions lists the user's active login sessions.
//
// @Summary      List active sessions
// @Description  Returns active login sessions with device and IP info.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}  "Sessions"
// @Failure      401  {object}  utils.ErrorResponse
// @Router       /api/v1/auth/sessions [get]
func (h *AuthHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	sessions, err := h.sessions.ListUserSessions(r.Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list sessions")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	utils.RespondWithJSON(w, r, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
	})
}

// RevokeSession deletes one login session by ID.
//
// @Summary      Revoke a session
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  map[string]string  "Session revoked"
// @Failure      401  {object}  utils.ErrorResponse
// @Router       /api/v1/auth/sessions/{id} [delete]
func (h *AuthHandler) RevokeSession(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		utils.RespondWithError(w, r, http.StatusBadRequest, "Missing session ID")
		return
	}

	if err := h.sessions.RevokeSession(r.Context(), user.ID, sessionID); err != nil {
		log.Error().Err(err).Msg("Failed to revoke session")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to revoke session")
		return
	}

	utils.RespondWithMessage(w, r, http.StatusOK, "Session revoked successfully")
}

// recordSession stores a login session with device and IP details.
// Session bookkeeping is advisory; a Redis failure never blocks a login.
func (h *AuthHandler) recordSession(r *http.Request, userID uuid.UUID) {
	deviceInfo := services.ExtractDeviceInfo(r.UserAgent())
	ipAddress := utils.ExtractClientIP(r)
	if _, err := h.sessions.CreateSession(r.Context(), userID, deviceInfo, ipAddress); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("Failed to record login session")
	}
}
