package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/osintlab/osint-platform/internal/database"
	"github.com/osintlab/osint-platform/pkg/utils"
)

// RateLimiter implements distributed rate limiting using Redis.
// Protects endpoints from abuse by limiting the number of requests
// per IP address within a time window.
//
// Redis key pattern: "ratelimit:{ip}:{endpoint}" with TTL equal to window.
//
// On limit exceeded the request gets 429 with a Retry-After header.
type RateLimiter struct {
	redis          *database.RedisDB
	requestsPerMin int
	window         time.Duration
}

// NewRateLimiter creates a new rate limiter.
//
// Example:
//
//	// Allow 60 requests per minute
//	limiter := middleware.NewRateLimiter(redisDB, 60, time.Minute)
//	r.With(limiter.Limit("login")).Post("/api/v1/auth/login", handler.Login)
func NewRateLimiter(redis *database.RedisDB, requestsPerMin int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		redis:          redis,
		requestsPerMin: requestsPerMin,
		window:         window,
	}
}

// Limit creates middleware that applies rate limiting to an endpoint.
// Each endpoint has an independent counter keyed by its identifier.
//
// Standard rate limit headers are set on every response; on Redis errors
// the request is allowed through so an unavailable Redis never blocks
// legitimate traffic.
func (rl *RateLimiter) Limit(endpoint string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ExtractClientIP(r)

			count, err := rl.redis.IncrementRateLimit(r.Context(), ip, endpoint, rl.window)
			if err != nil {
				log.Error().Err(err).Str("ip", ip).Msg("Failed to check rate limit")
				next.ServeHTTP(w, r)
				return
			}

			if count > int64(rl.requestsPerMin) {
				log.Warn().
					Str("ip", ip).
					Str("endpoint", endpoint).
					Int64("count", count).
					Msg("Rate limit exceeded")

				w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.requestsPerMin))
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(rl.window.Seconds())))

				utils.RespondWithError(w, r, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
				return
			}

			remaining := rl.requestsPerMin - int(count)
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.requestsPerMin))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

			next.ServeHTTP(w, r)
		})
	}
}
