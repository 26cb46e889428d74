package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/osintlab/osint-platform/internal/models"
)

const accountColumns = `id, user_id, platform, platform_user_id, username, display_name,
	email, profile_url, profile_picture, access_token, refresh_token, token_expires_at,
	connected_at, last_sync, is_active, collect_posts, collect_connections, collect_interactions`

type accountScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row accountScanner) (*models.SocialAccount, error) {
	var acc models.SocialAccount

	err := row.Scan(
		&acc.ID,
		&acc.UserID,
		&acc.Platform,
		&acc.PlatformUserID,
		&acc.Username,
		&acc.DisplayName,
		&acc.Email,
		&acc.ProfileURL,
		&acc.ProfilePicture,
		&acc.AccessToken,
		&acc.RefreshToken,
		&acc.TokenExpiresAt,
		&acc.ConnectedAt,
		&acc.LastSync,
		&acc.IsActive,
		&acc.CollectPosts,
		&acc.CollectConnections,
		&acc.CollectInteractions,
	)
	if err == sql.ErrNoRows {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan social account: %w", err)
	}

	return &acc, nil
}

// UpsertSocialAccount creates or replaces the connection record for
// (user, platform). Reconnecting a platform refreshes tokens and profile
// data in place instead of producing duplicate rows.
func (p *PostgresDB) UpsertSocialAccount(ctx context.Context, acc *models.SocialAccount) (*models.SocialAccount, error) {
	query := `
		INSERT INTO social_accounts (
			user_id, platform, platform_user_id, username, display_name, email,
			profile_url, profile_picture, access_token, refresh_token, token_expires_at,
			collect_posts, collect_connections, collect_interactions
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (user_id, platform)
		DO UPDATE SET
			platform_user_id = EXCLUDED.platform_user_id,
			username = EXCLUDED.username,
			display_name = EXCLUDED.display_name,
			email = EXCLUDED.email,
			profile_url = EXCLUDED.profile_url,
			profile_picture = EXCLUDED.profile_picture,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expires_at = EXCLUDED.token_expires_at,
			is_active = TRUE,
			connected_at = NOW()
		RETURNING ` + accountColumns

	saved, err := scanAccount(p.db.QueryRowContext(ctx, query,
		acc.UserID,
		acc.Platform,
		acc.PlatformUserID,
		acc.Username,
		acc.DisplayName,
		acc.Email,
		acc.ProfileURL,
		acc.ProfilePicture,
		acc.AccessToken,
		acc.RefreshToken,
		acc.TokenExpiresAt,
		acc.CollectPosts,
		acc.CollectConnections,
		acc.CollectInteractions,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert social account: %w", err)
	}

	log.Info().
		Str("user_id", saved.UserID.String()).
		Str("platform", string(saved.Platform)).
		Msg("Social account connected")

	return saved, nil
}

// ListSocialAccounts returns all active connections for a user, most
// recently connected first.
func (p *PostgresDB) ListSocialAccounts(ctx context.Context, userID uuid.UUID) ([]models.SocialAccount, error) {
	query := `SELECT ` + accountColumns + `
		FROM social_accounts
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY connected_at DESC`

	rows, err := p.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list social accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]models.SocialAccount, 0)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate social accounts: %w", err)
	}

	return accounts, nil
}

// GetSocialAccount returns the connection for (user, platform) or
// ErrAccountNotFound.
func (p *PostgresDB) GetSocialAccount(ctx context.Context, userID uuid.UUID, platform models.Platform) (*models.SocialAccount, error) {
	query := `SELECT ` + accountColumns + `
		FROM social_accounts
		WHERE user_id = $1 AND platform = $2 AND is_active = TRUE`

	return scanAccount(p.db.QueryRowContext(ctx, query, userID, platform))
}

// DeleteSocialAccount removes the connection for (user, platform).
// Returns ErrAccountNotFound when no connection existed, which callers
// surface as a 404.
func (p *PostgresDB) DeleteSocialAccount(ctx context.Context, userID uuid.UUID, platform models.Platform) error {
	query := `DELETE FROM social_accounts WHERE user_id = $1 AND platform = $2`

	result, err := p.db.ExecContext(ctx, query, userID, platform)
	if err != nil {
		return fmt.Errorf("failed to delete social account: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrAccountNotFound
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("platform", string(platform)).
		Msg("Social account disconnected")

	return nil
}

// TouchSocialAccountSync records a completed collection pass for the account.
func (p *PostgresDB) TouchSocialAccountSync(ctx context.Context, userID uuid.UUID, platform models.Platform) error {
	query := `UPDATE social_accounts SET last_sync = NOW() WHERE user_id = $1 AND platform = $2`
	if _, err := p.db.ExecContext(ctx, query, userID, platform); err != nil {
		return fmt.Errorf("failed to update last sync: %w", err)
	}
	return nil
}

// UpsertBrowserCredential stores or replaces the vaulted credential set for
// the browser-automation collectors. The password arrives already encrypted
// by the service layer.
func (p *PostgresDB) UpsertBrowserCredential(ctx context.Context, cred *models.BrowserCredential) (*models.BrowserCredential, error) {
	query := `
		INSERT INTO browser_credentials (user_id, platform, email, password)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, platform)
		DO UPDATE SET
			email = EXCLUDED.email,
			password = EXCLUDED.password,
			updated_at = NOW()
		RETURNING id, user_id, platform, email, password, created_at, updated_at`

	var saved models.BrowserCredential
	err := p.db.QueryRowContext(ctx, query, cred.UserID, cred.Platform, cred.Email, cred.Password).Scan(
		&saved.ID,
		&saved.UserID,
		&saved.Platform,
		&saved.Email,
		&saved.Password,
		&saved.CreatedAt,
		&saved.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert browser credential: %w", err)
	}

	return &saved, nil
}

// GetBrowserCredential returns the stored credential for (user, platform)
// or ErrAccountNotFound.
func (p *PostgresDB) GetBrowserCredential(ctx context.Context, userID uuid.UUID, platform models.Platform) (*models.BrowserCredential, error) {
	query := `SELECT id, user_id, platform, email, password, created_at, updated_at
		FROM browser_credentials
		WHERE user_id = $1 AND platform = $2`

	var cred models.BrowserCredential
	err := p.db.QueryRowContext(ctx, query, userID, platform).Scan(
		&cred.ID,
		&cred.UserID,
		&cred.Platform,
		&cred.Email,
		&cred.Password,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get browser credential: %w", err)
	}

	return &cred, nil
}
