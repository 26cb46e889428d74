package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/osintlab/osint-platform/internal/models"
)

const userColumns = `id, username, email, full_name, hashed_password, is_active,
	permissions_granted, enabled_platforms, last_permissions_update, created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var platforms pq.StringArray

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.HashedPassword,
		&user.IsActive,
		&user.PermissionsGranted,
		&platforms,
		&user.LastPermissionsUpdate,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	user.EnabledPlatforms = make([]models.Platform, 0, len(platforms))
	for _, p := range platforms {
		user.EnabledPlatforms = append(user.EnabledPlatforms, models.Platform(p))
	}

	return &user, nil
}

func platformsToArray(platforms []models.Platform) pq.StringArray {
	arr := make(pq.StringArray, 0, len(platforms))
	for _, p := range platforms {
		arr = append(arr, string(p))
	}
	return arr
}

// CreateUser inserts a new user with an already-hashed password.
// Username and email uniqueness is enforced by the schema; callers should
// check availability first to return a precise error message.
func (p *PostgresDB) CreateUser(ctx context.Context, username, email, hashedPassword string, fullName *string) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, full_name, hashed_password)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	user, err := scanUser(p.db.QueryRowContext(ctx, query, username, email, fullName, hashedPassword))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Str("username", user.Username).
		Msg("User created successfully")

	return user, nil
}

// GetUserByID retrieves a user by their unique UUID.
func (p *PostgresDB) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(p.db.QueryRowContext(ctx, query, userID))
}

// GetUserByUsername retrieves a user by their username.
// This is the lookup used on login and on every token validation.
func (p *PostgresDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(p.db.QueryRowContext(ctx, query, username))
}

// GetUserByEmail retrieves a user by their email address.
func (p *PostgresDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(p.db.QueryRowContext(ctx, query, email))
}

// UpdatePermissions replaces the user's collection consent and the set of
// platforms enabled for data collection.
func (p *PostgresDB) UpdatePermissions(ctx context.Context, userID uuid.UUID, granted bool, platforms []models.Platform) (*models.User, error) {
	query := `
		UPDATE users
		SET permissions_granted = $2,
		    enabled_platforms = $3,
		    last_permissions_update = NOW(),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(p.db.QueryRowContext(ctx, query, userID, granted, platformsToArray(platforms)))
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", userID.String()).
		Bool("granted", granted).
		Int("platforms", len(platforms)).
		Msg("Updated collection permissions")

	return user, nil
}
