// Package database provides database access layers for PostgreSQL and Redis.
// Implements connection management, query operations, and transaction handling
// with automatic retry logic and connection pooling.
//
// PostgreSQL is used for persistent users, social account connections and
// collection jobs. Redis is used for OAuth state, sessions, caching, and
// rate limiting.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/osintlab/osint-platform/pkg/config"
	"github.com/osintlab/osint-platform/pkg/utils"
)

// Sentinel errors returned by lookup queries. Handlers translate these
// into 404 responses instead of leaking SQL details.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrAccountNotFound = errors.New("social account not found")
	ErrJobNotFound     = errors.New("collection job not found")
)

// TxFunc is a function that runs within a database transaction.
// Used with WithTransaction to ensure atomic operations.
type TxFunc func(tx *sql.Tx) error

// Querier is an interface for executing SQL queries.
// Abstracts *sql.DB and *sql.Tx to allow the same query code to work
// both inside and outside transactions.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// PostgresDB wraps a PostgreSQL database connection with connection pooling.
//
// Features:
//   - Automatic connection retry with exponential backoff
//   - Connection pooling (configurable max connections)
//   - Transaction support with automatic rollback on errors
//   - Health check support
type PostgresDB struct {
	db *sql.DB
}

// NewPostgresDB creates a new PostgreSQL connection with automatic retry.
// Implements exponential backoff retry logic to handle transient connection
// failures during startup (e.g., database container not ready yet).
//
// Connection pool settings:
//   - MaxOpenConns: From configuration (default: 25)
//   - MaxIdleConns: Half of MaxOpenConns
//   - ConnMaxLifetime: 1 hour
func NewPostgresDB(cfg *config.DatabaseConfig) (*PostgresDB, error) {
	var db *sql.DB
	var connErr error

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	retryConfig := utils.DatabaseRetryConfig()
	retryConfig.MaxAttempts = 5
	retryConfig.InitialDelay = 100 * time.Millisecond
	retryConfig.MaxDelay = 3 * time.Second

	err := utils.Retry(ctx, retryConfig, func() error {
		var err error
		db, err = sql.Open("postgres", cfg.DSN())
		if err != nil {
			connErr = err
			log.Warn().Err(err).Msg("Failed to open database connection, retrying...")
			return err
		}

		db.SetMaxOpenConns(cfg.MaxConns)
		db.SetMaxIdleConns(cfg.MaxConns / 2)
		db.SetConnMaxLifetime(time.Hour)

		// Verify connection with ping
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer pingCancel()

		if err := db.PingContext(pingCtx); err != nil {
			connErr = err
			log.Warn().Err(err).Msg("Failed to ping database, retrying...")
			db.Close()
			return err
		}

		return nil
	})

	if err != nil {
		if connErr != nil {
			return nil, fmt.Errorf("failed to connect to database after retries: %w", connErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info().Msg("Successfully connected to PostgreSQL")

	return &PostgresDB{db: db}, nil
}

// Close closes the database connection and releases all resources.
func (p *PostgresDB) Close() error {
	return p.db.Close()
}

// Ping checks if the database connection is alive.
// Used by health check endpoints to verify database availability.
func (p *PostgresDB) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// RunMigrations executes database migrations from SQL string.
// Should be called during application startup to ensure schema is up to date.
// The migration SQL must be idempotent (CREATE TABLE IF NOT EXISTS etc).
func (p *PostgresDB) RunMigrations(ctx context.Context, migrationSQL string) error {
	_, err := p.db.ExecContext(ctx, migrationSQL)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info().Msg("Database migrations completed successfully")
	return nil
}

// WithTransaction executes a function within a database transaction.
// Automatically handles commit on success and rollback on error or panic.
//
// Example:
//
//	err := db.WithTransaction(ctx, func(tx *sql.Tx) error {
//	    if err := deleteAccountTx(ctx, tx, userID, platform); err != nil {
//	        return err // Automatic rollback
//	    }
//	    return nil // Automatic commit
//	})
func (p *PostgresDB) WithTransaction(ctx context.Context, fn TxFunc) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Msg("Failed to rollback transaction after panic")
			}
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("Failed to rollback transaction")
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// WithTransactionOptions is WithTransaction with a custom isolation level
// and read-only flag.
func (p *PostgresDB) WithTransactionOptions(ctx context.Context, opts *sql.TxOptions, fn TxFunc) error {
	tx, err := p.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Msg("Failed to rollback transaction after panic")
			}
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("Failed to rollback transaction")
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
