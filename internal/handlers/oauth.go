package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/osintlab/osint-platform/internal/database"
	"github.com/osintlab/osint-platform/internal/middleware"
	"github.com/osintlab/osint-platform/internal/models"
	"github.com/osintlab/osint-platform/internal/services"
	"github.com/osintlab/osint-platform/pkg/utils"
)

// Connector drives the OAuth handshake against provider endpoints.
type Connector interface {
	Supported(platform models.Platform) bool
	BuildAuthURL(ctx context.Context, userID uuid.UUID, platform models.Platform) (string, string, error)
	HandleCallback(ctx context.Context, platform models.Platform, code, state string) (*models.SocialAccount, error)
}

// AccountDB reads and removes stored social account connections.
type AccountDB interface {
	ListSocialAccounts(ctx context.Context, userID uuid.UUID) ([]models.SocialAccount, error)
	DeleteSocialAccount(ctx context.Context, userID uuid.UUID, platform models.Platform) error
}

// OAuthHandler handles social account connect, callback, and disconnect.
//
// Callbacks arrive from the provider via browser redirect, so their error
// paths redirect to the frontend with query parameters instead of returning
// JSON. Everything else speaks the standard error envelope.
type OAuthHandler struct {
	oauth       Connector
	db          AccountDB
	frontendURL string
}

// NewOAuthHandler creates an OAuth handler.
// frontendURL is where callbacks send the browser after the handshake.
func NewOAuthHandler(oauth Connector, db AccountDB, frontendURL string) *OAuthHandler {
	return &OAuthHandler{
		oauth:       oauth,
		db:          db,
		frontendURL: frontendURL,
	}
}

// Connect issues a provider authorization URL for the given platform.
// The state token is stored in Redis for the callback to consume; clients
// open auth_url in a browser and the provider redirects to the callback.
//
// @Summary      Start OAuth connection
// @Description  Returns the provider authorization URL and CSRF state for the platform.
// @Tags         oauth
// @Produce      json
// @Security     BearerAuth
// @Param        platform  path      string  true  "Platform (facebook, instagram, twitter, reddit, youtube)"
// @Success      200       {object}  map[string]string    "auth_url and state"
// @Failure      400       {object}  utils.ErrorResponse  "Unknown or unconfigured platform"
// @Failure      401       {object}  utils.ErrorResponse
// @Router       /api/v1/oauth/connect/{platform} [get]
func (h *OAuthHandler) Connect(w http.ResponseWriter, r *http.Request) {
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

	authURL, state, err := h.oauth.BuildAuthURL(r.Context(), user.ID, platform)
	if err != nil {
		if errors.Is(err, services.ErrPlatformNotConfigured) {
			utils.RespondWithError(w, r, http.StatusBadRequest, string(platform)+" OAuth is not configured")
			return
		}
		log.Error().Err(err).Str("platform", string(platform)).Msg("Failed to build authorization URL")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to start OAuth flow")
		return
	}

	utils.RespondWithJSON(w, r, http.StatusOK, map[string]string{
		"auth_url": authURL,
		"state":    state,
	})
}

// Callback completes the OAuth handshake after the provider redirect.
// Verifies the single-use state, exchanges the code, stores the account,
// and sends the browser back to the frontend accounts page. Providers
// report user denial via an error query parameter; that path skips the
// exchange entirely.
//
// @Summary      OAuth provider callback
// @Description  Exchanges the authorization code and redirects to the frontend with success or error parameters.
// @Tags         oauth
// @Produce      html
// @Param        platform  path   string  true   "Platform"
// @Param        code      query  string  false  "Authorization code"
// @Param        state     query  string  false  "CSRF state"
// @Param        error     query  string  false  "Provider error code"
// @Success      302  {string}  string  "Redirect to frontend"
// @Router       /api/v1/oauth/{platform}/callback [get]
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	rawPlatform := chi.URLParam(r, "platform")
	platform, err := models.PlatformFromProvider(rawPlatform)
	if err != nil {
		h.redirectWithError(w, r, models.Platform(rawPlatform), "unsupported_platform")
		return
	}

	query := r.URL.Query()

	if provErr := query.Get("error"); provErr != "" {
		log.Warn().
			Str("platform", string(platform)).
			Str("error", provErr).
			Msg("Provider returned OAuth error")
		middleware.IncrementOAuthConnections(string(platform), "denied")
		h.redirectWithError(w, r, platform, provErr)
		return
	}

	code := query.Get("code")
	state := query.Get("state")
	if code == "" || state == "" {
		middleware.IncrementOAuthConnections(string(platform), "failure")
		h.redirectWithError(w, r, platform, "missing_code_or_state")
		return
	}

	account, err := h.oauth.HandleCallback(r.Context(), platform, code, state)
	if err != nil {
		log.Error().Err(err).Str("platform", string(platform)).Msg("OAuth callback failed")
		middleware.IncrementOAuthConnections(string(platform), "failure")
		h.redirectWithError(w, r, platform, "connection_failed")
		return
	}

	log.Info().
		Str("platform", string(account.Platform)).
		Str("user_id", account.UserID.String()).
		Str("account", account.Username).
		Msg("Social account connected")
	middleware.IncrementOAuthConnections(string(account.Platform), "success")

	params := url.Values{}
	params.Set("success", "true")
	params.Set("platform", string(account.Platform))
	http.Redirect(w, r, h.frontendURL+"/social-accounts?"+params.Encode(), http.StatusFound)
}

// ListAccounts returns the user's connected social accounts.
//
// @Summary      List connected accounts
// @Tags         oauth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}  "accounts"
// @Failure      401  {object}  utils.ErrorResponse
// @Router       /api/v1/oauth/accounts [get]
func (h *OAuthHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	accounts, err := h.db.ListSocialAccounts(r.Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to list social accounts")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to list accounts")
		return
	}

	utils.RespondWithJSON(w, r, http.StatusOK, map[string]interface{}{
		"accounts": accounts,
	})
}

// Disconnect removes a connected social account.
// Accepts the provider alias too: disconnecting "google" removes the
// youtube connection.
//
// @Summary      Disconnect a social account
// @Tags         oauth
// @Produce      json
// @Security     BearerAuth
// @Param        platform  path      string  true  "Platform"
// @Success      200       {object}  map[string]string    "Account disconnected"
// @Failure      400       {object}  utils.ErrorResponse  "Unknown platform"
// @Failure      401       {object}  utils.ErrorResponse
// @Failure      404       {object}  utils.ErrorResponse  "No account connected"
// @Router       /api/v1/oauth/disconnect/{platform} [delete]
func (h *OAuthHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	platform, err := models.PlatformFromProvider(chi.URLParam(r, "platform"))
	if err != nil {
		utils.RespondWithError(w, r, http.StatusBadRequest, "Unsupported platform: "+chi.URLParam(r, "platform"))
		return
	}

	if err := h.db.DeleteSocialAccount(r.Context(), user.ID, platform); err != nil {
		if errors.Is(err, database.ErrAccountNotFound) {
			utils.RespondWithError(w, r, http.StatusNotFound, "No "+string(platform)+" account connected")
			return
		}
		log.Error().Err(err).Str("platform", string(platform)).Msg("Failed to disconnect account")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to disconnect account")
		return
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Str("platform", string(platform)).
		Msg("Social account disconnected")

	utils.RespondWithMessage(w, r, http.StatusOK, "Successfully disconnected "+string(platform)+" account")
}

// redirectWithError sends the browser back to the frontend accounts page
// with an error code the UI can display.
func (h *OAuthHandler) redirectWithError(w http.ResponseWriter, r *http.Request, platform models.Platform, code string) {
	params := url.Values{}
	params.Set("error", code)
	params.Set("platform", string(platform))
	http.Redirect(w, r, h.frontendURL+"/social-accounts?"+params.Encode(), http.StatusFound)
}
