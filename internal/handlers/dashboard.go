package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/osintlab/osint-platform/internal/middleware"
	"github.com/osintlab/osint-platform/internal/models"
	"github.com/osintlab/osint-platform/pkg/cache"
	"github.com/osintlab/osint-platform/pkg/utils"
)

// DashboardDB aggregates collected posts for the dashboard views.
type DashboardDB interface {
	GetDashboardStats(ctx context.Context, userID uuid.UUID) (*models.DashboardStats, error)
	GetRecentThreats(ctx context.Context, userID uuid.UUID, limit int) ([]models.ThreatAlert, error)
	GetActivity(ctx context.Context, userID uuid.UUID, days int) ([]models.ActivityPoint, error)
}

// DashboardHandler serves the aggregated dashboard endpoints.
// Responses are cached per user in Redis with a short TTL; the worker
// invalidates the user's stats keys after each collection run so fresh
// data shows up without waiting for expiry.
type DashboardHandler struct {
	db       DashboardDB
	cache    *cache.Cache
	statsTTL time.Duration
}

// NewDashboardHandler creates a dashboard handler.
// The cache may be nil; queries then always hit PostgreSQL.
func NewDashboardHandler(db DashboardDB, c *cache.Cache, statsTTL time.Duration) *DashboardHandler {
	return &DashboardHandler{
		db:       db,
		cache:    c,
		statsTTL: statsTTL,
	}
}

// Stats returns the headline dashboard counters.
//
// @Summary      Dashboard stats
// @Description  Returns aggregate post, threat, and trend counts with a system health score.
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.DashboardStats
// @Failure      401  {object}  utils.ErrorResponse
// @Router       /api/v1/dashboard/stats [get]
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var stats models.DashboardStats
	err := h.cached(r.Context(), cache.StatsKey("overview", user.ID), &stats, func() (interface{}, error) {
		return h.db.GetDashboardStats(r.Context(), user.ID)
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to load dashboard stats")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to load stats")
		return
	}

	utils.RespondWithJSON(w, r, http.StatusOK, stats)
}

// Threats returns the most recent threat alerts.
//
// @Summary      Recent threats
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Max alerts to return (default 10, max 50)"
// @Success      200    {object}  map[string]interface{}  "threats"
// @Failure      401    {object}  utils.ErrorResponse
// @Router       /api/v1/dashboard/threats [get]
func (h *DashboardHandler) Threats(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	limit := utils.QueryInt(r, "limit", 10, 50)

	var threats []models.ThreatAlert
	key := cache.StatsKey(fmt.Sprintf("threats:%d", limit), user.ID)
	err := h.cached(r.Context(), key, &threats, func() (interface{}, error) {
		return h.db.GetRecentThreats(r.Context(), user.ID, limit)
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to load recent threats")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to load threats")
		return
	}

	utils.RespondWithJSON(w, r, http.StatusOK, map[string]interface{}{
		"threats": threats,
	})
}

// Activity returns per-day collection activity for the trend chart.
//
// @Summary      Collection activity
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        days  query     int  false  "Days of history (default 7, max 30)"
// @Success      200   {object}  map[string]interface{}  "activity"
// @Failure      401   {object}  utils.ErrorResponse
// @Router       /api/v1/dashboard/activity [get]
func (h *DashboardHandler) Activity(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	days := utils.QueryInt(r, "days", 7, 30)

	var activity []models.ActivityPoint
	key := cache.StatsKey(fmt.Sprintf("activity:%d", days), user.ID)
	err := h.cached(r.Context(), key, &activity, func() (interface{}, error) {
		return h.db.GetActivity(r.Context(), user.ID, days)
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to load activity")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to load activity")
		return
	}

	utils.RespondWithJSON(w, r, http.StatusOK, map[string]interface{}{
		"activity": activity,
	})
}

// cached runs the loader through the stats cache when caching is enabled.
func (h *DashboardHandler) cached(ctx context.Context, key string, target interface{}, loader func() (interface{}, error)) error {
	if h.cache == nil {
		value, err := loader()
		if err != nil {
			return err
		}
		return copyValue(value, target)
	}
	return h.cache.GetOrSet(ctx, key, h.statsTTL, target, loader)
}

// copyValue moves a loader result into the caller's typed target through a
// JSON round trip, mirroring what the cache layer does on a hit.
func copyValue(value, target interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}
