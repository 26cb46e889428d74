// Package handlers provides HTTP request handlers for the API endpoints.
// Handlers coordinate between the HTTP layer and service layer, handling
// request parsing, validation, and response formatting.
//
// This package includes handlers for:
//   - Health checks and readiness probes
//   - Registration, login, and session management
//   - OAuth social account connections
//   - Collection dispatch and job status
//   - Dashboard aggregates
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/osintlab/osint-platform/internal/database"
	"github.com/osintlab/osint-platform/pkg/utils"
)

// HealthHandler handles health check endpoints for monitoring and
// orchestration. Provides both simple liveness checks and detailed
// readiness checks that verify connectivity to PostgreSQL and Redis.
type HealthHandler struct {
	postgres *database.PostgresDB
	redis    *database.RedisDB
}

// NewHealthHandler creates a new health handler with database dependencies.
func NewHealthHandler(postgres *database.PostgresDB, redis *database.RedisDB) *HealthHandler {
	return &HealthHandler{
		postgres: postgres,
		redis:    redis,
	}
}

// HealthResponse represents the health check response structure.
// Used by both the basic health check and detailed readiness check.
type HealthResponse struct {
	Status    string            `json:"status"`             // "ok" or "degraded"
	Timestamp time.Time         `json:"timestamp"`          // Current server time
	Services  map[string]string `json:"services,omitempty"` // Per-service health (readiness only)
}

// Health returns a simple health check indicating the service is running.
// This is a liveness probe; use Ready for readiness checks.
//
// @Summary      Health check (liveness probe)
// @Description  Returns 200 OK if the service is running. Does not check dependencies.
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse  "Service is alive"
// @Router       /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Ready checks if the service is ready to accept traffic.
// Verifies connectivity to PostgreSQL and Redis with a 5-second timeout.
// Returns 503 when any dependency is down so load balancers pull the
// instance until it recovers.
//
// @Summary      Readiness check
// @Description  Checks if the service and all dependencies (PostgreSQL, Redis) are healthy
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse  "All services healthy"
// @Failure      503  {object}  HealthResponse  "One or more services unhealthy"
// @Router       /ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	services := make(map[string]string)
	allHealthy := true

	if err := h.postgres.Ping(ctx); err != nil {
		log.Error().Err(err).Msg("PostgreSQL health check failed")
		services["postgres"] = "unhealthy"
		allHealthy = false
	} else {
		services["postgres"] = "healthy"
	}

	if err := h.redis.Ping(ctx); err != nil {
		log.Error().Err(err).Msg("Redis health check failed")
		services["redis"] = "unhealthy"
		allHealthy = false
	} else {
		services["redis"] = "healthy"
	}

	status := "ok"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	utils.RespondWithJSON(w, r, statusCode, HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Services:  services,
	})
}
