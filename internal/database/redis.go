package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/osintlab/osint-platform/internal/models"
	"github.com/osintlab/osint-platform/pkg/config"
	"github.com/osintlab/osint-platform/pkg/utils"
)

// RedisDB wraps a Redis client for ephemeral state.
// Provides type-safe methods for:
//   - OAuth state storage with single-use consumption
//   - Login session management with automatic expiration
//   - Token blacklisting for revocation
//   - Collection job status tracking
//   - Rate limiting per IP address
//
// All keys use structured naming patterns for organization and monitoring.
type RedisDB struct {
	client *redis.Client
}

// NewRedisDB creates a new Redis connection with automatic retry.
// Implements exponential backoff retry logic similar to the PostgreSQL
// connection so the server survives a slow-starting Redis container.
func NewRedisDB(cfg *config.RedisConfig) (*RedisDB, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	retryConfig := utils.DatabaseRetryConfig()
	retryConfig.MaxAttempts = 5
	retryConfig.InitialDelay = 100 * time.Millisecond
	retryConfig.MaxDelay = 3 * time.Second

	var lastErr error
	err := utils.Retry(ctx, retryConfig, func() error {
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer pingCancel()

		if err := client.Ping(pingCtx).Err(); err != nil {
			lastErr = err
			log.Warn().Err(err).Msg("Failed to ping Redis, retrying...")
			return err
		}
		return nil
	})

	if err != nil {
		client.Close()
		if lastErr != nil {
			return nil, fmt.Errorf("failed to connect to Redis after retries: %w", lastErr)
		}
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info().Msg("Successfully connected to Redis")

	return &RedisDB{client: client}, nil
}

// Close closes the Redis connection and releases all resources.
func (r *RedisDB) Close() error {
	return r.client.Close()
}

// Client returns the underlying Redis client for advanced operations.
func (r *RedisDB) Client() *redis.Client {
	return r.client
}

// Ping checks if Redis is alive and responsive.
// Used by health check endpoints to verify Redis availability.
func (r *RedisDB) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// SetOAuthState stores a pending OAuth authorization keyed by its state
// parameter.
//
// Key pattern: "oauth_state:{state}"
//
// The entry expires after ttl (10 minutes by default) so abandoned
// authorization attempts clean themselves up.
func (r *RedisDB) SetOAuthState(ctx context.Context, state *models.OAuthState, ttl time.Duration) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal oauth state: %w", err)
	}

	key := fmt.Sprintf("oauth_state:%s", state.State)
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set oauth state: %w", err)
	}
	return nil
}

// ConsumeOAuthState atomically retrieves and deletes a pending OAuth state.
// GETDEL guarantees each state value authorizes at most one callback, which
// is the CSRF protection the whole flow rests on.
//
// Returns an error if the state doesn't exist, was already consumed, or
// has expired.
func (r *RedisDB) ConsumeOAuthState(ctx context.Context, state string) (*models.OAuthState, error) {
	key := fmt.Sprintf("oauth_state:%s", state)

	data, err := r.client.GetDel(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("oauth state not found or expired")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume oauth state: %w", err)
	}

	var parsed models.OAuthState
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal oauth state: %w", err)
	}

	return &parsed, nil
}

// SetSession stores login session information as a Redis hash.
// Sessions include device info, IP address, and creation timestamp.
//
// Key pattern: "session:{userID}:{sessionID}"
func (r *RedisDB) SetSession(ctx context.Context, userID, sessionID, deviceInfo, ipAddress string, expiry time.Duration) error {
	key := fmt.Sprintf("session:%s:%s", userID, sessionID)
	sessionData := map[string]interface{}{
		"device_info": deviceInfo,
		"ip_address":  ipAddress,
		"created_at":  time.Now().Unix(),
	}

	if err := r.client.HSet(ctx, key, sessionData).Err(); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	if err := r.client.Expire(ctx, key, expiry).Err(); err != nil {
		return fmt.Errorf("failed to set session expiry: %w", err)
	}

	return nil
}

// GetSession retrieves session information from Redis.
// Returns a map with session data (device_info, ip_address, created_at)
// or an error if the session doesn't exist or has expired.
func (r *RedisDB) GetSession(ctx context.Context, userID, sessionID string) (map[string]string, error) {
	key := fmt.Sprintf("session:%s:%s", userID, sessionID)
	result, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("session not found")
	}
	return result, nil
}

// DeleteSession removes a session from Redis.
// Called when a user logs out from a specific device.
func (r *RedisDB) DeleteSession(ctx context.Context, userID, sessionID string) error {
	key := fmt.Sprintf("session:%s:%s", userID, sessionID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ListUserSessions returns all session IDs for a user using SCAN.
// Uses SCAN instead of KEYS to avoid blocking Redis in production.
// Scans in batches of 100 keys for efficient iteration.
//
// Key pattern: "session:{userID}:*"
func (r *RedisDB) ListUserSessions(ctx context.Context, userID string) ([]string, error) {
	pattern := fmt.Sprintf("session:%s:*", userID)
	prefix := fmt.Sprintf("session:%s:", userID)

	var sessions []string
	var cursor uint64

	for {
		var keys []string
		var err error

		keys, cursor, err = r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan sessions: %w", err)
		}

		for _, key := range keys {
			if len(key) > len(prefix) {
				sessions = append(sessions, key[len(prefix):])
			}
		}

		if cursor == 0 {
			break
		}
	}

	return sessions, nil
}

// BlacklistToken adds a token to the blacklist for revocation.
// Blacklisted tokens are rejected even if they have valid signatures.
//
// Key pattern: "blacklist:{jti}"
//
// The blacklist entry automatically expires when the token would naturally
// expire, preventing unbounded memory growth.
func (r *RedisDB) BlacklistToken(ctx context.Context, jti string, expiry time.Duration) error {
	key := fmt.Sprintf("blacklist:%s", jti)
	if err := r.client.Set(ctx, key, "true", expiry).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

// IsTokenBlacklisted checks if a token has been revoked.
// Called during JWT validation to enforce revocation.
func (r *RedisDB) IsTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	key := fmt.Sprintf("blacklist:%s", jti)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return exists > 0, nil
}

// SetJob stores a collection job's current state.
//
// Key pattern: "job:{jobID}"
//
// Jobs are kept for 24 hours after their last update so clients can poll
// results well after the run completes.
func (r *RedisDB) SetJob(ctx context.Context, job *models.CollectionJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	key := fmt.Sprintf("job:%s", job.ID)
	if err := r.client.Set(ctx, key, data, 24*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to set job: %w", err)
	}
	return nil
}

// GetJob retrieves a collection job's state.
// Returns ErrJobNotFound if the job doesn't exist or has expired.
func (r *RedisDB) GetJob(ctx context.Context, jobID string) (*models.CollectionJob, error) {
	key := fmt.Sprintf("job:%s", jobID)

	data, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	var job models.CollectionJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	return &job, nil
}

// IncrementRateLimit increments the rate limit counter for an IP+endpoint.
// Implements a fixed window rate limiter with automatic expiration.
//
// Key pattern: "ratelimit:{ip}:{endpoint}"
//
// Returns the current count (including this request).
func (r *RedisDB) IncrementRateLimit(ctx context.Context, ip, endpoint string, window time.Duration) (int64, error) {
	key := fmt.Sprintf("ratelimit:%s:%s", ip, endpoint)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	// Set expiry on first request
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, fmt.Errorf("failed to set rate limit expiry: %w", err)
		}
	}

	return count, nil
}

// GetRateLimitCount retrieves the current rate limit count without
// incrementing. Useful for exposing remaining quota headers.
func (r *RedisDB) GetRateLimitCount(ctx context.Context, ip, endpoint string) (int64, error) {
	key := fmt.Sprintf("ratelimit:%s:%s", ip, endpoint)
	count, err := r.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get rate limit count: %w", err)
	}
	return count, nil
}
