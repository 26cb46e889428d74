package utils

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
)

// RetryFunc is a function that can be retried. It should return an error
// if the operation failed and nil on success.
type RetryFunc func() error

// RetryConfig holds configuration for retry behavior with exponential backoff.
type RetryConfig struct {
	MaxAttempts     int           // maximum number of attempts (including the first)
	InitialDelay    time.Duration // delay before the first retry
	MaxDelay        time.Duration // cap on the delay between retries
	Multiplier      float64       // exponential backoff multiplier
	Jitter          bool          // add random jitter to delays
	RetryableErrors []error       // errors that should trigger retry (nil = retry all)
}

// DatabaseRetryConfig returns a retry configuration tuned for storage
// connections, which commonly fail transiently while containers start.
func DatabaseRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  5,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// ExternalAPIRetryConfig returns a retry configuration for third-party API
// calls, which may hit rate limits or temporary unavailability.
func ExternalAPIRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// Retry executes a function with exponential backoff until it succeeds,
// attempts are exhausted, or the context is cancelled.
//
// The delay between retries follows:
//
//	delay = initialDelay * multiplier^(attempt-1)
//
// Jitter, when enabled, adds random variance (±25%) to avoid thundering
// herd when many instances reconnect at once.
func Retry(ctx context.Context, config RetryConfig, fn RetryFunc) error {
	var lastErr error

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 1 {
				log.Info().
					Int("attempt", attempt).
					Msg("Operation succeeded after retry")
			}
			return nil
		}

		lastErr = err

		if !isRetryable(err, config.RetryableErrors) {
			return fmt.Errorf("non-retryable error: %w", err)
		}

		if attempt >= config.MaxAttempts {
			log.Warn().
				Err(err).
				Int("attempts", attempt).
				Msg("Max retry attempts reached")
			break
		}

		delay := calculateDelay(attempt, config)

		log.Debug().
			Err(err).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("Operation failed, retrying after delay")

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("max retries exceeded (%d attempts): %w", config.MaxAttempts, lastErr)
}

// RetryWithResult is the generic version of Retry for functions that return
// a value along with an error.
//
// Example:
//
//	profile, err := utils.RetryWithResult(ctx, utils.ExternalAPIRetryConfig(), func() (*Profile, error) {
//	    return fetchProfile(handle)
//	})
func RetryWithResult[T any](ctx context.Context, config RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		res, err := fn()
		if err == nil {
			return res, nil
		}

		lastErr = err

		if !isRetryable(err, config.RetryableErrors) {
			return zero, fmt.Errorf("non-retryable error: %w", err)
		}

		if attempt >= config.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(calculateDelay(attempt, config)):
		}
	}

	return zero, fmt.Errorf("max retries exceeded (%d attempts): %w", config.MaxAttempts, lastErr)
}

// isRetryable reports whether err matches the configured retryable set.
// An empty set means every error is retryable.
func isRetryable(err error, retryable []error) bool {
	if len(retryable) == 0 {
		return true
	}
	for _, candidate := range retryable {
		if errors.Is(err, candidate) {
			return true
		}
	}
	return false
}

// calculateDelay computes the backoff delay for the given attempt.
func calculateDelay(attempt int, config RetryConfig) time.Duration {
	delay := float64(config.InitialDelay) * math.Pow(config.Multiplier, float64(attempt-1))
	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}
	if config.Jitter {
		// ±25% jitter
		delay = delay * (0.75 + rand.Float64()*0.5)
	}
	return time.Duration(delay)
}
