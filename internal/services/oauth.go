// Package services provides business logic and application services.
// Services coordinate between handlers and database layers, implementing
// authentication flows, the multi-provider OAuth connection lifecycle,
// session management, and background collection dispatch.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"

	"github.com/osintlab/osint-platform/internal/models"
	"github.com/osintlab/osint-platform/pkg/config"
)

// OAuth endpoints for providers not covered by the x/oauth2 subpackages.
var (
	twitterEndpoint = oauth2.Endpoint{
		AuthURL:  "https://twitter.com/i/oauth2/authorize",
		TokenURL: "https://api.twitter.com/2/oauth2/token",
	}
	redditEndpoint = oauth2.Endpoint{
		AuthURL:  "https://www.reddit.com/api/v1/authorize",
		TokenURL: "https://www.reddit.com/api/v1/access_token",
	}
)

// Errors surfaced to the connect and callback handlers.
var (
	ErrPlatformNotConfigured = errors.New("platform is not configured for OAuth")
	ErrStateMismatch         = errors.New("oauth state does not match pending authorization")
)

// AccountDatabase defines the persistence operations the OAuth service needs.
type AccountDatabase interface {
	UpsertSocialAccount(ctx context.Context, acc *models.SocialAccount) (*models.SocialAccount, error)
}

// StateStore defines the Redis operations for the OAuth handshake.
type StateStore interface {
	SetOAuthState(ctx context.Context, state *models.OAuthState, ttl time.Duration) error
	ConsumeOAuthState(ctx context.Context, state string) (*models.OAuthState, error)
}

// OAuthService manages the OAuth 2.0 connection lifecycle for all supported
// platforms: authorization URL generation, state tracking, code exchange,
// profile retrieval and account persistence.
//
// Provider quirks handled here:
//   - Instagram connections ride the Facebook provider app
//   - Reddit requires duration=permanent to receive a refresh token
//   - Twitter requires PKCE with the S256 challenge method
//   - Google is asked for offline access with forced consent so a refresh
//     token is always returned
type OAuthService struct {
	configs  map[models.Platform]*oauth2.Config
	db       AccountDatabase
	states   StateStore
	stateTTL time.Duration
}

// providerProfile is the normalized identity fetched from a provider's
// user-info endpoint after a successful code exchange.
type providerProfile struct {
	ID             string
	Username       string
	DisplayName    string
	Email          string
	ProfileURL     string
	ProfilePicture string
}

// NewOAuthService creates an OAuth service from the provider configuration.
// Platforms whose provider credentials are absent are simply not registered;
// BuildAuthURL returns ErrPlatformNotConfigured for them.
func NewOAuthService(cfg *config.OAuthConfig, db AccountDatabase, states StateStore) *OAuthService {
	configs := make(map[models.Platform]*oauth2.Config)

	if cfg.Facebook.Configured() {
		configs[models.PlatformFacebook] = &oauth2.Config{
			ClientID:     cfg.Facebook.ClientID,
			ClientSecret: cfg.Facebook.ClientSecret,
			RedirectURL:  cfg.Facebook.RedirectURL,
			Scopes:       []string{"public_profile", "email"},
			Endpoint:     facebook.Endpoint,
		}
		// Instagram uses the same Facebook app with the Instagram scopes
		configs[models.PlatformInstagram] = &oauth2.Config{
			ClientID:     cfg.Facebook.ClientID,
			ClientSecret: cfg.Facebook.ClientSecret,
			RedirectURL:  cfg.Facebook.RedirectURL,
			Scopes:       []string{"public_profile", "instagram_basic"},
			Endpoint:     facebook.Endpoint,
		}
	}

	if cfg.Twitter.Configured() {
		configs[models.PlatformTwitter] = &oauth2.Config{
			ClientID:     cfg.Twitter.ClientID,
			ClientSecret: cfg.Twitter.ClientSecret,
			RedirectURL:  cfg.Twitter.RedirectURL,
			Scopes:       []string{"tweet.read", "users.read", "offline.access"},
			Endpoint:     twitterEndpoint,
		}
	}

	if cfg.Reddit.Configured() {
		configs[models.PlatformReddit] = &oauth2.Config{
			ClientID:     cfg.Reddit.ClientID,
			ClientSecret: cfg.Reddit.ClientSecret,
			RedirectURL:  cfg.Reddit.RedirectURL,
			Scopes:       []string{"identity", "read", "history"},
			Endpoint:     redditEndpoint,
		}
	}

	if cfg.Google.Configured() {
		configs[models.PlatformYouTube] = &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.profile",
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/youtube.readonly",
			},
			Endpoint: google.Endpoint,
		}
	}

	return &OAuthService{
		configs:  configs,
		db:       db,
		states:   states,
		stateTTL: cfg.StateTTL,
	}
}

// Supported reports whether the platform has a configured OAuth provider.
func (s *OAuthService) Supported(platform models.Platform) bool {
	_, ok := s.configs[platform.Canonical()]
	return ok
}

// BuildAuthURL generates a provider authorization URL for the user and
// records the handshake state in Redis. The state is single-use and expires
// after the configured TTL. Returns the URL and the state token so callers
// can correlate the eventual callback.
func (s *OAuthService) BuildAuthURL(ctx context.Context, userID uuid.UUID, platform models.Platform) (string, string, error) {
	platform = platform.Canonical()

	cfg, ok := s.configs[platform]
	if !ok {
		return "", "", ErrPlatformNotConfigured
	}

	state := &models.OAuthState{
		State:     GenerateState(),
		UserID:    userID.String(),
		Platform:  platform,
		CreatedAt: time.Now().UTC(),
	}

	var opts []oauth2.AuthCodeOption
	switch platform {
	case models.PlatformTwitter:
		// Twitter mandates PKCE; the verifier travels with the state
		state.CodeVerifier = oauth2.GenerateVerifier()
		opts = append(opts, oauth2.S256ChallengeOption(state.CodeVerifier))
	case models.PlatformReddit:
		opts = append(opts, oauth2.SetAuthURLParam("duration", "permanent"))
	case models.PlatformYouTube:
		opts = append(opts, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	}

	if err := s.states.SetOAuthState(ctx, state, s.stateTTL); err != nil {
		return "", "", fmt.Errorf("failed to store oauth state: %w", err)
	}

	authURL := cfg.AuthCodeURL(state.State, opts...)

	log.Info().
		Str("user_id", userID.String()).
		Str("platform", string(platform)).
		Msg("OAuth authorization URL issued")

	return authURL, state.State, nil
}

// HandleCallback completes the OAuth flow for a provider callback.
// It consumes the pending state (rejecting replays and expirations),
// exchanges the code for tokens, fetches the provider profile, and upserts
// the social account connection.
func (s *OAuthService) HandleCallback(ctx context.Context, platform models.Platform, code, state string) (*models.SocialAccount, error) {
	platform = platform.Canonical()

	cfg, ok := s.configs[platform]
	if !ok {
		return nil, ErrPlatformNotConfigured
	}

	pending, err := s.states.ConsumeOAuthState(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth state: %w", err)
	}
	if pending.Platform.Canonical() != platform {
		return nil, ErrStateMismatch
	}

	userID, err := uuid.Parse(pending.UserID)
	if err != nil {
		return nil, fmt.Errorf("corrupt oauth state: %w", err)
	}

	var exchangeOpts []oauth2.AuthCodeOption
	if pending.CodeVerifier != "" {
		exchangeOpts = append(exchangeOpts, oauth2.VerifierOption(pending.CodeVerifier))
	}

	token, err := cfg.Exchange(ctx, code, exchangeOpts...)
	if err != nil {
		log.Error().Err(err).Str("platform", string(platform)).Msg("Failed to exchange authorization code")
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	profile, err := s.fetchProfile(ctx, platform, cfg, token)
	if err != nil {
		return nil, err
	}

	acc := &models.SocialAccount{
		UserID:         userID,
		Platform:       platform,
		PlatformUserID: profile.ID,
		Username:       profile.Username,
		AccessToken:    token.AccessToken,
		CollectPosts:   true,
	}
	if profile.DisplayName != "" {
		acc.DisplayName = &profile.DisplayName
	}
	if profile.Email != "" {
		acc.Email = &profile.Email
	}
	if profile.ProfileURL != "" {
		acc.ProfileURL = &profile.ProfileURL
	}
	if profile.ProfilePicture != "" {
		acc.ProfilePicture = &profile.ProfilePicture
	}
	if token.RefreshToken != "" {
		acc.RefreshToken = &token.RefreshToken
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		acc.TokenExpiresAt = &expiry
	}

	saved, err := s.db.UpsertSocialAccount(ctx, acc)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("platform", string(platform)).
		Str("platform_username", profile.Username).
		Msg("OAuth connection completed")

	return saved, nil
}

// fetchProfile retrieves the provider's user profile with the freshly
// exchanged token and normalizes it across providers.
func (s *OAuthService) fetchProfile(ctx context.Context, platform models.Platform, cfg *oauth2.Config, token *oauth2.Token) (*providerProfile, error) {
	client := cfg.Client(ctx, token)

	switch platform {
	case models.PlatformFacebook, models.PlatformInstagram:
		return fetchFacebookProfile(ctx, client)
	case models.PlatformTwitter:
		return fetchTwitterProfile(ctx, client)
	case models.PlatformReddit:
		return fetchRedditProfile(ctx, client)
	case models.PlatformYouTube:
		return fetchGoogleProfile(ctx, client)
	default:
		return nil, ErrPlatformNotConfigured
	}
}

func getJSON(ctx context.Context, client *http.Client, url string, target interface{}, headers map[string]string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("profile request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("profile request failed: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode profile: %w", err)
	}

	return nil
}

func fetchFacebookProfile(ctx context.Context, client *http.Client) (*providerProfile, error) {
	var raw struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}

	url := "https://graph.facebook.com/v19.0/me?fields=id,name,email,picture"
	if err := getJSON(ctx, client, url, &raw, nil); err != nil {
		return nil, err
	}

	return &providerProfile{
		ID:             raw.ID,
		Username:       raw.Name,
		DisplayName:    raw.Name,
		Email:          raw.Email,
		ProfileURL:     fmt.Sprintf("https://facebook.com/%s", raw.ID),
		ProfilePicture: raw.Picture.Data.URL,
	}, nil
}

func fetchTwitterProfile(ctx context.Context, client *http.Client) (*providerProfile, error) {
	var raw struct {
		Data struct {
			ID              string `json:"id"`
			Name            string `json:"name"`
			Username        string `json:"username"`
			ProfileImageURL string `json:"profile_image_url"`
		} `json:"data"`
	}

	url := "https://api.twitter.com/2/users/me?user.fields=profile_image_url"
	if err := getJSON(ctx, client, url, &raw, nil); err != nil {
		return nil, err
	}

	return &providerProfile{
		ID:             raw.Data.ID,
		Username:       raw.Data.Username,
		DisplayName:    raw.Data.Name,
		ProfileURL:     fmt.Sprintf("https://twitter.com/%s", raw.Data.Username),
		ProfilePicture: raw.Data.ProfileImageURL,
	}, nil
}

func fetchRedditProfile(ctx context.Context, client *http.Client) (*providerProfile, error) {
	var raw struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		IconImg string `json:"icon_img"`
	}

	// Reddit rejects requests without a descriptive User-Agent
	headers := map[string]string{"User-Agent": "osint-platform/1.0"}
	if err := getJSON(ctx, client, "https://oauth.reddit.com/api/v1/me", &raw, headers); err != nil {
		return nil, err
	}

	return &providerProfile{
		ID:             raw.ID,
		Username:       raw.Name,
		DisplayName:    raw.Name,
		ProfileURL:     fmt.Sprintf("https://reddit.com/user/%s", raw.Name),
		ProfilePicture: raw.IconImg,
	}, nil
}

func fetchGoogleProfile(ctx context.Context, client *http.Client) (*providerProfile, error) {
	var raw struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}

	if err := getJSON(ctx, client, "https://www.googleapis.com/oauth2/v2/userinfo", &raw, nil); err != nil {
		return nil, err
	}

	return &providerProfile{
		ID:             raw.ID,
		Username:       raw.Email,
		DisplayName:    raw.Name,
		Email:          raw.Email,
		ProfilePicture: raw.Picture,
	}, nil
}
