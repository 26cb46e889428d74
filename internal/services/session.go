package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mileusna/useragent"
	"github.com/rs/zerolog/log"

	"github.com/osintlab/osint-platform/internal/models"
)

// SessionStore defines the interface for session storage operations.
type SessionStore interface {
	SetSession(ctx context.Context, userID, sessionID, deviceInfo, ipAddress string, expiry time.Duration) error
	GetSession(ctx context.Context, userID, sessionID string) (map[string]string, error)
	ListUserSessions(ctx context.Context, userID string) ([]string, error)
	DeleteSession(ctx context.Context, userID, sessionID string) error
}

// SessionService tracks login sessions per user.
// Sessions are stored in Redis with automatic expiration and include
// device and IP metadata so users can review where they are signed in.
type SessionService struct {
	redis         SessionStore
	sessionExpiry time.Duration
}

// NewSessionService creates a new session service.
func NewSessionService(redis SessionStore, sessionExpiry time.Duration) *SessionService {
	return &SessionService{
		redis:         redis,
		sessionExpiry: sessionExpiry,
	}
}

// CreateSession records a new session after successful authentication.
// Returns the generated session ID.
func (s *SessionService) CreateSession(ctx context.Context, userID uuid.UUID, deviceInfo, ipAddress string) (string, error) {
	sessionID := uuid.New().String()

	err := s.redis.SetSession(ctx, userID.String(), sessionID, deviceInfo, ipAddress, s.sessionExpiry)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID.String()).
			Msg("Failed to create session")
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("session_id", sessionID).
		Str("device", deviceInfo).
		Msg("Session created successfully")

	return sessionID, nil
}

// GetSession retrieves one session's metadata.
func (s *SessionService) GetSession(ctx context.Context, userID uuid.UUID, sessionID string) (*models.LoginSession, error) {
	sessionData, err := s.redis.GetSession(ctx, userID.String(), sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	return sessionFromHash(userID, sessionID, sessionData, s.sessionExpiry), nil
}

// ListUserSessions returns all active sessions for a user.
// Sessions that disappear between the scan and the hash read are skipped.
func (s *SessionService) ListUserSessions(ctx context.Context, userID uuid.UUID) ([]*models.LoginSession, error) {
	sessionIDs, err := s.redis.ListUserSessions(ctx, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]*models.LoginSession, 0, len(sessionIDs))
	for _, sessionID := range sessionIDs {
		sessionData, err := s.redis.GetSession(ctx, userID.String(), sessionID)
		if err != nil {
			continue
		}
		sessions = append(sessions, sessionFromHash(userID, sessionID, sessionData, s.sessionExpiry))
	}

	return sessions, nil
}

// RevokeSession removes a single session.
func (s *SessionService) RevokeSession(ctx context.Context, userID uuid.UUID, sessionID string) error {
	if err := s.redis.DeleteSession(ctx, userID.String(), sessionID); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("session_id", sessionID).
		Msg("Session revoked")

	return nil
}

// RevokeAllSessions removes every session for a user. Used on logout-all
// and after password changes.
func (s *SessionService) RevokeAllSessions(ctx context.Context, userID uuid.UUID) error {
	sessionIDs, err := s.redis.ListUserSessions(ctx, userID.String())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	for _, sessionID := range sessionIDs {
		if err := s.redis.DeleteSession(ctx, userID.String(), sessionID); err != nil {
			log.Warn().
				Err(err).
				Str("session_id", sessionID).
				Msg("Failed to delete session during revoke all")
		}
	}

	log.Info().
		Str("user_id", userID.String()).
		Int("count", len(sessionIDs)).
		Msg("All sessions revoked")

	return nil
}

func sessionFromHash(userID uuid.UUID, sessionID string, data map[string]string, expiry time.Duration) *models.LoginSession {
	session := &models.LoginSession{
		ID:         sessionID,
		UserID:     userID,
		DeviceInfo: data["device_info"],
		IPAddress:  data["ip_address"],
	}

	if createdAtUnix, err := strconv.ParseInt(data["created_at"], 10, 64); err == nil {
		session.CreatedAt = time.Unix(createdAtUnix, 0).UTC()
		session.ExpiresAt = session.CreatedAt.Add(expiry)
	}

	return session
}

// ExtractDeviceInfo converts a raw User-Agent header into a friendly
// device description for the sessions listing.
//
// Example:
//
//	deviceInfo := services.ExtractDeviceInfo(r.UserAgent())
//	// Returns: "Chrome 120.0 · Windows 11 · Desktop"
func ExtractDeviceInfo(userAgent string) string {
	if userAgent == "" {
		return "Unknown Device"
	}

	ua := useragent.Parse(userAgent)

	var parts []string

	if ua.Name != "" {
		browser := ua.Name
		if ua.Version != "" {
			browser += " " + ua.Version
		}
		parts = append(parts, browser)
	}

	if ua.OS != "" {
		os := ua.OS
		if ua.OSVersion != "" {
			os += " " + ua.OSVersion
		}
		parts = append(parts, os)
	}

	if ua.Mobile {
		parts = append(parts, "Mobile")
	} else if ua.Tablet {
		parts = append(parts, "Tablet")
	} else if ua.Desktop {
		parts = append(parts, "Desktop")
	}

	if len(parts) == 0 {
		// Fallback to truncated user agent
		if len(userAgent) > 100 {
			return userAgent[:100] + "..."
		}
		return userAgent
	}

	return strings.Join(parts, " · ")
}
