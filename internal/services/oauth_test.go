package services

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osintlab/osint-platform/internal/models"
	"github.com/osintlab/osint-platform/internal/testutil"
	"github.com/osintlab/osint-platform/pkg/config"
)

type MockAccountDatabase struct {
	mock.Mock
}

func (m *MockAccountDatabase) UpsertSocialAccount(ctx context.Context, acc *models.SocialAccount) (*models.SocialAccount, error) {
	args := m.Called(ctx, acc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SocialAccount), args.Error(1)
}

func testOAuthConfig() *config.OAuthConfig {
	return &config.OAuthConfig{
		Facebook: config.ProviderConfig{
			ClientID:     "fb-client",
			ClientSecret: "fb-secret",
			RedirectURL:  "http://localhost:8000/api/v1/oauth/facebook/callback",
		},
		Twitter: config.ProviderConfig{
			ClientID:     "tw-client",
			ClientSecret: "tw-secret",
			RedirectURL:  "http://localhost:8000/api/v1/oauth/twitter/callback",
		},
		Reddit: config.ProviderConfig{
			ClientID:     "rd-client",
			ClientSecret: "rd-secret",
			RedirectURL:  "http://localhost:8000/api/v1/oauth/reddit/callback",
		},
		Google: config.ProviderConfig{
			ClientID:     "gg-client",
			ClientSecret: "gg-secret",
			RedirectURL:  "http://localhost:8000/api/v1/oauth/google/callback",
		},
		StateTTL: 10 * time.Minute,
	}
}

func setupOAuthService(t *testing.T) (*OAuthService, *MockAccountDatabase, func()) {
	t.Helper()

	mr, cleanup := testutil.SetupMiniRedis(t)
	redisDB := testutil.NewTestRedisDB(t, mr)
	mockDB := new(MockAccountDatabase)

	svc := NewOAuthService(testOAuthConfig(), mockDB, redisDB)

	return svc, mockDB, func() {
		cleanup()
		redisDB.Close()
	}
}

func authURLQuery(t *testing.T, rawURL string) url.Values {
	t.Helper()

	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return u.Query()
}

func TestSupported(t *testing.T) {
	svc, _, cleanup := setupOAuthService(t)
	defer cleanup()

	for _, p := range models.AllPlatforms {
		assert.True(t, svc.Supported(p), "platform %s should be supported", p)
	}
	// Google is an alias for the YouTube connection
	assert.True(t, svc.Supported(models.Platform("google")))

	unconfigured := NewOAuthService(&config.OAuthConfig{StateTTL: time.Minute}, new(MockAccountDatabase), nil)
	assert.False(t, unconfigured.Supported(models.PlatformFacebook))
}

func TestBuildAuthURL(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("stores single-use state and embeds it in the URL", func(t *testing.T) {
		svc, _, cleanup := setupOAuthService(t)
		defer cleanup()

		authURL, state, err := svc.BuildAuthURL(ctx, userID, models.PlatformFacebook)
		require.NoError(t, err)
		require.NotEmpty(t, state)

		q := authURLQuery(t, authURL)
		assert.Equal(t, state, q.Get("state"))
		assert.Equal(t, "fb-client", q.Get("client_id"))
	})

	t.Run("reddit requests a permanent grant", func(t *testing.T) {
		svc, _, cleanup := setupOAuthService(t)
		defer cleanup()

		authURL, _, err := svc.BuildAuthURL(ctx, userID, models.PlatformReddit)
		require.NoError(t, err)

		q := authURLQuery(t, authURL)
		assert.Equal(t, "permanent", q.Get("duration"))
		assert.Contains(t, authURL, "reddit.com")
	})

	t.Run("twitter carries a PKCE challenge", func(t *testing.T) {
		svc, _, cleanup := setupOAuthService(t)
		defer cleanup()

		authURL, _, err := svc.BuildAuthURL(ctx, userID, models.PlatformTwitter)
		require.NoError(t, err)

		q := authURLQuery(t, authURL)
		assert.NotEmpty(t, q.Get("code_challenge"))
		assert.Equal(t, "S256", q.Get("code_challenge_method"))
	})

	t.Run("youtube asks for offline access", func(t *testing.T) {
		svc, _, cleanup := setupOAuthService(t)
		defer cleanup()

		authURL, _, err := svc.BuildAuthURL(ctx, userID, models.PlatformYouTube)
		require.NoError(t, err)

		q := authURLQuery(t, authURL)
		assert.Equal(t, "offline", q.Get("access_type"))
		assert.Contains(t, authURL, "google.com")
	})

	t.Run("instagram rides the facebook provider", func(t *testing.T) {
		svc, _, cleanup := setupOAuthService(t)
		defer cleanup()

		authURL, _, err := svc.BuildAuthURL(ctx, userID, models.PlatformInstagram)
		require.NoError(t, err)

		q := authURLQuery(t, authURL)
		assert.Equal(t, "fb-client", q.Get("client_id"))
		assert.Contains(t, q.Get("scope"), "instagram_basic")
	})

	t.Run("unconfigured platform is rejected", func(t *testing.T) {
		mr, cleanup := testutil.SetupMiniRedis(t)
		defer cleanup()
		redisDB := testutil.NewTestRedisDB(t, mr)
		defer redisDB.Close()

		svc := NewOAuthService(&config.OAuthConfig{StateTTL: time.Minute}, new(MockAccountDatabase), redisDB)

		_, _, err := svc.BuildAuthURL(ctx, userID, models.PlatformFacebook)
		assert.ErrorIs(t, err, ErrPlatformNotConfigured)
	})

	t.Run("each call issues a distinct state", func(t *testing.T) {
		svc, _, cleanup := setupOAuthService(t)
		defer cleanup()

		_, state1, err := svc.BuildAuthURL(ctx, userID, models.PlatformFacebook)
		require.NoError(t, err)
		_, state2, err := svc.BuildAuthURL(ctx, userID, models.PlatformFacebook)
		require.NoError(t, err)

		assert.NotEqual(t, state1, state2)
	})
}

func TestHandleCallbackStateChecks(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("rejects unknown state", func(t *testing.T) {
		svc, _, cleanup := setupOAuthService(t)
		defer cleanup()

		_, err := svc.HandleCallback(ctx, models.PlatformFacebook, "code", "never-issued")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid oauth state")
	})

	t.Run("state is single use", func(t *testing.T) {
		svc, _, cleanup := setupOAuthService(t)
		defer cleanup()

		_, state, err := svc.BuildAuthURL(ctx, userID, models.PlatformFacebook)
		require.NoError(t, err)

		// First consumption fails later at the code exchange, but the
		// state is already gone; the second attempt must fail the state
		// check itself.
		_, _ = svc.HandleCallback(ctx, models.PlatformFacebook, "bad-code", state)

		_, err = svc.HandleCallback(ctx, models.PlatformFacebook, "bad-code", state)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid oauth state")
	})

	t.Run("rejects state issued for another platform", func(t *testing.T) {
		svc, _, cleanup := setupOAuthService(t)
		defer cleanup()

		_, state, err := svc.BuildAuthURL(ctx, userID, models.PlatformReddit)
		require.NoError(t, err)

		_, err = svc.HandleCallback(ctx, models.PlatformFacebook, "code", state)
		assert.ErrorIs(t, err, ErrStateMismatch)
	})
}
