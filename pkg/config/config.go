// Package config provides application configuration management with
// environment variable loading, validation, and sensible defaults. It
// supports .env files for local development and validates all required
// settings on startup to prevent runtime configuration errors.
//
// Configuration is loaded from environment variables with the Load()
// function, which returns a validated Config struct or an error if required
// variables are missing or invalid.
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal().Err(err).Msg("Failed to load configuration")
//	}
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// It aggregates all configuration sections into a single struct
// for easy access throughout the application.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	OAuth     OAuthConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Collector CollectorConfig
	Worker    WorkerConfig
}

// ServerConfig holds server-specific configuration including port,
// environment, and the frontend URL used for OAuth redirects.
type ServerConfig struct {
	Port        string
	Environment string
	FrontendURL string // where OAuth callbacks redirect the browser back to
}

// DatabaseConfig holds PostgreSQL connection parameters and pool settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
	MaxConns int
}

// RedisConfig holds Redis connection parameters, authentication, database
// selection, and pool size. Redis backs OAuth handshake state, the token
// blacklist, rate limiting, job status, and the asynq queues.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	PoolSize int
}

// ProviderConfig holds OAuth client credentials for one provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// OAuthConfig holds per-provider OAuth 2.0 credentials. Providers without
// configured credentials reject connect attempts at request time rather
// than failing startup, so a deployment can enable a subset of platforms.
type OAuthConfig struct {
	Facebook ProviderConfig
	Twitter  ProviderConfig
	Reddit   ProviderConfig
	Google   ProviderConfig
	StateTTL time.Duration // handshake state lifetime (default: 10 minutes)
}

// JWTConfig holds the signing secret and token expiry.
type JWTConfig struct {
	Secret       []byte
	AccessExpiry time.Duration
}

// CORSConfig controls which origins can access the API.
type CORSConfig struct {
	AllowedOrigins []string
}

// RateLimitConfig protects the auth endpoints against abuse.
type RateLimitConfig struct {
	RequestsPerMinute int
	WindowDuration    time.Duration
}

// CacheConfig holds TTLs for the Redis cache layer.
type CacheConfig struct {
	UserTTL    time.Duration
	StatsTTL   time.Duration
	SessionTTL time.Duration
	Enabled    bool
}

// CollectorConfig holds settings for the data-collection services.
type CollectorConfig struct {
	TwitterAPIKey   string // twitterapi.io key for handle-based collection
	ApifyToken      string // optional Apify token for credential collectors
	DefaultMaxPosts int
}

// WorkerConfig holds asynq worker settings.
type WorkerConfig struct {
	Concurrency int
	Queue       string
}

// Load reads and validates configuration from environment variables.
// It attempts to load a .env file if present (for local development) but
// doesn't fail if the file is missing (for production deployments).
//
// Required environment variables:
//   - POSTGRES_PASSWORD: Database password
//   - JWT_SECRET: Secret for JWT signing (at least 32 bytes)
//
// OAuth client credentials (FACEBOOK_CLIENT_ID, TWITTER_CLIENT_ID, ...) are
// optional; connect attempts for an unconfigured provider fail per-request.
//
// Returns an error if any required variable is missing or validation fails.
func Load() (*Config, error) {
	// Load .env if it exists (ignored in production)
	_ = godotenv.Load()

	postgresPassword, err := getEnvRequired("POSTGRES_PASSWORD")
	if err != nil {
		return nil, err
	}

	jwtSecret, err := getEnvRequired("JWT_SECRET")
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8000"),
			Environment: getEnv("ENV", "development"),
			FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			Database: getEnv("POSTGRES_DB", "osintdb"),
			User:     getEnv("POSTGRES_USER", "osint"),
			Password: postgresPassword,
			MaxConns: getEnvAsInt("POSTGRES_MAX_CONNS", 25),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			PoolSize: getEnvAsInt("REDIS_POOL_SIZE", 100),
		},
		OAuth: OAuthConfig{
			Facebook: providerFromEnv("FACEBOOK"),
			Twitter:  providerFromEnv("TWITTER"),
			Reddit:   providerFromEnv("REDDIT"),
			Google:   providerFromEnv("GOOGLE"),
			StateTTL: getEnvAsDuration("OAUTH_STATE_TTL", 10*time.Minute),
		},
		JWT: JWTConfig{
			Secret:       []byte(jwtSecret),
			AccessExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRY", 30*time.Minute),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
			WindowDuration:    getEnvAsDuration("RATE_LIMIT_WINDOW", 1*time.Minute),
		},
		Cache: CacheConfig{
			UserTTL:    getEnvAsDuration("CACHE_USER_TTL", 15*time.Minute),
			StatsTTL:   getEnvAsDuration("CACHE_STATS_TTL", 1*time.Minute),
			SessionTTL: getEnvAsDuration("CACHE_SESSION_TTL", 168*time.Hour),
			Enabled:    getEnv("CACHE_ENABLED", "true") == "true",
		},
		Collector: CollectorConfig{
			TwitterAPIKey:   getEnv("TWITTER_API_IO_KEY", ""),
			ApifyToken:      getEnv("APIFY_TOKEN", ""),
			DefaultMaxPosts: getEnvAsInt("COLLECTOR_MAX_POSTS", 10),
		},
		Worker: WorkerConfig{
			Concurrency: getEnvAsInt("WORKER_CONCURRENCY", 10),
			Queue:       getEnv("WORKER_QUEUE", "collection"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks if all required configuration is present and valid.
// Called automatically by Load() but can also be called independently for
// testing. Returns the first validation failure encountered, or nil.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("server port must be a valid integer: %w", err)
	}

	if _, err := strconv.Atoi(c.Database.Port); err != nil {
		return fmt.Errorf("database port must be a valid integer: %w", err)
	}
	if _, err := strconv.Atoi(c.Redis.Port); err != nil {
		return fmt.Errorf("redis port must be a valid integer: %w", err)
	}

	if _, err := url.ParseRequestURI(c.Server.FrontendURL); err != nil {
		return fmt.Errorf("invalid frontend URL: %w", err)
	}

	// Configured providers must carry a parseable redirect URL
	for name, p := range map[string]ProviderConfig{
		"facebook": c.OAuth.Facebook,
		"twitter":  c.OAuth.Twitter,
		"reddit":   c.OAuth.Reddit,
		"google":   c.OAuth.Google,
	} {
		if p.ClientID == "" {
			continue
		}
		if p.RedirectURL == "" {
			return fmt.Errorf("%s redirect URL is required when client ID is set", name)
		}
		if _, err := url.ParseRequestURI(p.RedirectURL); err != nil {
			return fmt.Errorf("invalid %s redirect URL: %w", name, err)
		}
	}

	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 bytes")
	}

	if c.Database.Password == "" {
		return fmt.Errorf("database password is required")
	}

	return nil
}

// DSN returns the PostgreSQL Data Source Name formatted for lib/pq.
//
// Note: SSL is disabled for local development. In production, enable SSL
// and configure appropriate certificates.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Database,
	)
}

// Address returns the Redis server address in "host:port" format.
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Configured reports whether the provider has client credentials set.
func (p *ProviderConfig) Configured() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

// providerFromEnv reads {PREFIX}_CLIENT_ID / _CLIENT_SECRET / _REDIRECT_URI.
func providerFromEnv(prefix string) ProviderConfig {
	return ProviderConfig{
		ClientID:     getEnv(prefix+"_CLIENT_ID", ""),
		ClientSecret: getEnv(prefix+"_CLIENT_SECRET", ""),
		RedirectURL:  getEnv(prefix+"_REDIRECT_URI", ""),
	}
}

// Helper functions for environment variable parsing

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvRequired retrieves a required environment variable.
// Returns an error if the variable is not set or is empty.
func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("required environment variable %s is not set", key)
	}
	return value, nil
}

// getEnvAsInt retrieves an environment variable as an integer with a
// default fallback. Unparseable values fall back silently.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration retrieves an environment variable as a time.Duration.
// Supports Go duration format: "300ms", "1.5h", "2h45m", etc.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice retrieves a comma-separated environment variable as a
// string slice with a default fallback.
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
