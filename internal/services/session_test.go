package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osintlab/osint-platform/internal/testutil"
)

func setupSessionService(t *testing.T) (*SessionService, func()) {
	t.Helper()

	mr, cleanup := testutil.SetupMiniRedis(t)
	redisDB := testutil.NewTestRedisDB(t, mr)

	sessionService := NewSessionService(redisDB, 7*24*time.Hour)

	return sessionService, func() {
		cleanup()
		redisDB.Close()
	}
}

func TestSessionLifecycle(t *testing.T) {
	sessionService, cleanup := setupSessionService(t)
	defer cleanup()

	ctx := context.Background()
	userID := uuid.New()

	t.Run("create and get session", func(t *testing.T) {
		sessionID, err := sessionService.CreateSession(ctx, userID, "Chrome 120 · Windows 11 · Desktop", testutil.IPAddresses.Public)
		require.NoError(t, err)
		require.NotEmpty(t, sessionID)

		session, err := sessionService.GetSession(ctx, userID, sessionID)
		require.NoError(t, err)
		assert.Equal(t, sessionID, session.ID)
		assert.Equal(t, userID, session.UserID)
		assert.Equal(t, "Chrome 120 · Windows 11 · Desktop", session.DeviceInfo)
		assert.Equal(t, testutil.IPAddresses.Public, session.IPAddress)
		assert.False(t, session.CreatedAt.IsZero())
		assert.True(t, session.ExpiresAt.After(session.CreatedAt))
	})

	t.Run("list returns all sessions for the user", func(t *testing.T) {
		otherUser := uuid.New()

		first, err := sessionService.CreateSession(ctx, otherUser, "Chrome", testutil.IPAddresses.Public)
		require.NoError(t, err)
		second, err := sessionService.CreateSession(ctx, otherUser, "Safari", testutil.IPAddresses.Private)
		require.NoError(t, err)

		sessions, err := sessionService.ListUserSessions(ctx, otherUser)
		require.NoError(t, err)
		require.Len(t, sessions, 2)

		ids := []string{sessions[0].ID, sessions[1].ID}
		assert.Contains(t, ids, first)
		assert.Contains(t, ids, second)
	})

	t.Run("revoke removes a single session", func(t *testing.T) {
		victim := uuid.New()

		keep, err := sessionService.CreateSession(ctx, victim, "Chrome", testutil.IPAddresses.Public)
		require.NoError(t, err)
		drop, err := sessionService.CreateSession(ctx, victim, "Safari", testutil.IPAddresses.Private)
		require.NoError(t, err)

		require.NoError(t, sessionService.RevokeSession(ctx, victim, drop))

		sessions, err := sessionService.ListUserSessions(ctx, victim)
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, keep, sessions[0].ID)
	})

	t.Run("revoke all clears every session", func(t *testing.T) {
		victim := uuid.New()

		for i := 0; i < 3; i++ {
			_, err := sessionService.CreateSession(ctx, victim, "Chrome", testutil.IPAddresses.Public)
			require.NoError(t, err)
		}

		require.NoError(t, sessionService.RevokeAllSessions(ctx, victim))

		sessions, err := sessionService.ListUserSessions(ctx, victim)
		require.NoError(t, err)
		assert.Empty(t, sessions)
	})
}

func TestExtractDeviceInfo(t *testing.T) {
	t.Run("parses desktop Chrome", func(t *testing.T) {
		info := ExtractDeviceInfo(testutil.UserAgents.Chrome)
		assert.Contains(t, info, "Chrome")
		assert.Contains(t, info, "Windows")
		assert.Contains(t, info, "Desktop")
	})

	t.Run("parses mobile Safari", func(t *testing.T) {
		info := ExtractDeviceInfo(testutil.UserAgents.MobileSafari)
		assert.Contains(t, info, "Safari")
		assert.Contains(t, info, "Mobile")
	})

	t.Run("empty user agent becomes unknown device", func(t *testing.T) {
		assert.Equal(t, "Unknown Device", ExtractDeviceInfo(""))
	})

	t.Run("unparseable agent is truncated, not dropped", func(t *testing.T) {
		long := ""
		for i := 0; i < 30; i++ {
			long += "xxxxxxxxxx"
		}
		info := ExtractDeviceInfo(long)
		assert.LessOrEqual(t, len(info), 103)
	})
}
