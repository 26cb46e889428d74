package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/osintlab/osint-platform/internal/models"
)

// UserDatabase defines the user lookups the cache can wrap.
type UserDatabase interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// UserCache provides read-through caching for user data.
// Token validation resolves the user on every authenticated request, so
// keeping these lookups out of Postgres matters.
type UserCache struct {
	cache *Cache
	db    UserDatabase
	ttl   time.Duration
}

// NewUserCache creates a new user cache
func NewUserCache(cache *Cache, db UserDatabase, ttl time.Duration) *UserCache {
	return &UserCache{
		cache: cache,
		db:    db,
		ttl:   ttl,
	}
}

// GetUserByID retrieves a user by ID with caching
func (uc *UserCache) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	key := UserKey(userID)

	err := uc.cache.GetOrSet(ctx, key, uc.ttl, &user, func() (interface{}, error) {
		return uc.db.GetUserByID(ctx, userID)
	})

	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetUserByUsername retrieves a user by username with caching
func (uc *UserCache) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	key := UserByUsernameKey(username)

	err := uc.cache.GetOrSet(ctx, key, uc.ttl, &user, func() (interface{}, error) {
		return uc.db.GetUserByUsername(ctx, username)
	})

	if err != nil {
		return nil, err
	}

	// Also cache by user ID for future lookups
	if err := uc.cache.Set(ctx, UserKey(user.ID), &user, uc.ttl); err != nil {
		log.Warn().Err(err).Msg("Failed to cache user by ID")
	}

	return &user, nil
}

// GetUserByEmail retrieves a user by email with caching
func (uc *UserCache) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	key := UserByEmailKey(email)

	err := uc.cache.GetOrSet(ctx, key, uc.ttl, &user, func() (interface{}, error) {
		return uc.db.GetUserByEmail(ctx, email)
	})

	if err != nil {
		return nil, err
	}

	if err := uc.cache.Set(ctx, UserKey(user.ID), &user, uc.ttl); err != nil {
		log.Warn().Err(err).Msg("Failed to cache user by ID")
	}

	return &user, nil
}

// InvalidateUser removes all cached data for a user.
// Called after permission or profile updates so the next read is fresh.
// Username and email keys expire naturally via TTL.
func (uc *UserCache) InvalidateUser(ctx context.Context, userID uuid.UUID) error {
	return uc.cache.Delete(ctx, UserKey(userID))
}

// CacheUser caches a user under its ID, username and email keys.
func (uc *UserCache) CacheUser(ctx context.Context, user *models.User) error {
	if err := uc.cache.Set(ctx, UserKey(user.ID), user, uc.ttl); err != nil {
		return err
	}

	if err := uc.cache.Set(ctx, UserByUsernameKey(user.Username), user, uc.ttl); err != nil {
		log.Warn().Err(err).Msg("Failed to cache user by username")
	}

	if err := uc.cache.Set(ctx, UserByEmailKey(user.Email), user, uc.ttl); err != nil {
		log.Warn().Err(err).Msg("Failed to cache user by email")
	}

	return nil
}
