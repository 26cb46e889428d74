// Package cache defines common error types used throughout the caching layer.
package cache

import "errors"

// Common cache errors
var (
	// ErrCacheMiss indicates the requested key was not found in cache.
	// This is not necessarily an error condition - it's expected behavior
	// when a key hasn't been cached yet or has expired.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheInvalidation indicates cache invalidation failed.
	ErrCacheInvalidation = errors.New("cache invalidation failed")
)
