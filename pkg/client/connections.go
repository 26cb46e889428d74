package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Platform identifies a social platform in UI naming.
// The backend's OAuth provider key for youtube is "google"; the alias is
// applied in exactly one place, provider/platformFromProvider, and used on
// connect, disconnect, and callback alike.
type Platform string

const (
	Facebook  Platform = "facebook"
	Instagram Platform = "instagram"
	Twitter   Platform = "twitter"
	Reddit    Platform = "reddit"
	YouTube   Platform = "youtube"
)

// Platforms lists every supported platform.
var Platforms = []Platform{Facebook, Instagram, Twitter, Reddit, YouTube}

// provider maps a platform to its backend OAuth provider key.
func (p Platform) provider() string {
	if p == YouTube {
		return "google"
	}
	return string(p)
}

// platformFromProvider is the inverse of provider.
func platformFromProvider(key string) Platform {
	if strings.EqualFold(key, "google") {
		return YouTube
	}
	return Platform(strings.ToLower(key))
}

// DisplayName returns the platform name cased for notices.
func (p Platform) DisplayName() string {
	switch p {
	case YouTube:
		return "YouTube"
	case "":
		return ""
	default:
		return strings.ToUpper(string(p[:1])) + string(p[1:])
	}
}

// RequiresCredentials reports whether the platform must connect through
// the credential form instead of OAuth in this deployment.
func (p Platform) RequiresCredentials() bool {
	return p == Instagram
}

// ConnectionState tracks the per-platform connection flow for UIs.
type ConnectionState string

const (
	StateDisconnected    ConnectionState = "disconnected"
	StateConnecting      ConnectionState = "connecting"
	StateCallbackPending ConnectionState = "callback-pending"
	StateConnected       ConnectionState = "connected"
	StateFailed          ConnectionState = "failed"
)

// FlowState returns the tracked connection flow state for a platform.
func (c *Client) FlowState(p Platform) ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if state, ok := c.flows[p]; ok {
		return state
	}
	return StateDisconnected
}

func (c *Client) setFlow(p Platform, state ConnectionState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flows[p] = state
}

// ConnectIntent is the result of starting an OAuth connection: the caller
// must navigate a browser to AuthURL, because the provider consent page
// requires a top-level navigation.
type ConnectIntent struct {
	AuthURL string `json:"auth_url"`
	State   string `json:"state"`
}

// Connect starts the OAuth connection flow for a platform.
// Returns ErrCredentialsRequired for credential-fallback platforms; the
// caller should collect credentials and use ConnectWithCredentials.
func (c *Client) Connect(ctx context.Context, platform Platform) (*ConnectIntent, error) {
	if platform.RequiresCredentials() {
		return nil, ErrCredentialsRequired
	}

	c.setFlow(platform, StateConnecting)

	var intent ConnectIntent
	if err := c.Get(ctx, "/oauth/connect/"+platform.provider(), &intent); err != nil {
		c.setFlow(platform, StateFailed)
		return nil, err
	}

	c.setFlow(platform, StateCallbackPending)
	return &intent, nil
}

// ConnectWithCredentials submits the credential-based connect fallback.
// A {"success": true} reply means the connection is established and
// collection has been queued.
func (c *Client) ConnectWithCredentials(ctx context.Context, req CredentialConnectRequest) error {
	c.setFlow(req.Platform, StateConnecting)

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		JobID   string `json:"job_id"`
	}
	if err := c.Post(ctx, "/collect/connect/credentials", req, &resp); err != nil {
		c.setFlow(req.Platform, StateFailed)
		return err
	}
	if !resp.Success {
		c.setFlow(req.Platform, StateFailed)
		return fmt.Errorf("credential connection was not accepted: %s", resp.Message)
	}

	c.setFlow(req.Platform, StateConnected)
	return nil
}

// ConnectTwitterByHandle collects recent tweets for a public handle
// without OAuth. Returns the completed collection job.
func (c *Client) ConnectTwitterByHandle(ctx context.Context, handle string, maxPosts int) (*CollectionJob, error) {
	body := map[string]interface{}{
		"username":  handle,
		"max_posts": maxPosts,
	}
	var job CollectionJob
	if err := c.Post(ctx, "/twitter/connect/credentials", body, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// CallbackKind tags the classification of an OAuth redirect.
type CallbackKind int

const (
	// NoCallback means the URL carries no OAuth parameters.
	NoCallback CallbackKind = iota
	// ForwardNeeded means the provider redirect landed on the wrong
	// origin and must be forwarded to the backend callback endpoint.
	ForwardNeeded
	// CallbackSuccess means the backend completed the connection.
	CallbackSuccess
	// CallbackFailure means the connection failed or was denied.
	CallbackFailure
)

// CallbackEvent is the classification of one redirect URL, computed once
// from its query parameters.
type CallbackEvent struct {
	Kind     CallbackKind
	Platform Platform
	Reason   string // failure reason, for CallbackFailure
	Code     string // authorization code, for ForwardNeeded
	State    string // CSRF state, for ForwardNeeded
}

// ParseCallback classifies a redirect's query parameters.
//
// Precedence:
//  1. an error parameter wins, even alongside success=true (malformed
//     redirects report failure);
//  2. success=true with a platform reports success;
//  3. code and state alone mean the provider redirect skipped the backend
//     and must be forwarded (platform defaults to facebook when absent);
//  4. anything else is not a callback.
func ParseCallback(query url.Values) CallbackEvent {
	platform := platformFromProvider(query.Get("platform"))

	if reason := query.Get("error"); reason != "" {
		return CallbackEvent{
			Kind:     CallbackFailure,
			Platform: platform,
			Reason:   reason,
		}
	}

	if query.Get("success") == "true" {
		return CallbackEvent{
			Kind:     CallbackSuccess,
			Platform: platform,
		}
	}

	code := query.Get("code")
	state := query.Get("state")
	if code != "" && state != "" {
		if query.Get("platform") == "" {
			platform = Facebook
		}
		return CallbackEvent{
			Kind:     ForwardNeeded,
			Platform: platform,
			Code:     code,
			State:    state,
		}
	}

	return CallbackEvent{Kind: NoCallback}
}

// CallbackOutcome is the result of handling a callback event.
type CallbackOutcome struct {
	// Notice is a user-facing message for success and failure events.
	Notice string
	// ForwardURL is the backend callback URL to navigate to for
	// ForwardNeeded events.
	ForwardURL string
	// Connected reports whether the event completed a connection.
	Connected bool
}

// HandleCallback acts on a classified callback event.
//
// A success event triggers exactly one connection-list refresh and a
// notice naming the platform; a failure event produces a notice and no
// refresh; a forward event computes the backend callback URL carrying the
// same code and state plus the platform.
func (c *Client) HandleCallback(ctx context.Context, event CallbackEvent) (*CallbackOutcome, error) {
	switch event.Kind {
	case CallbackSuccess:
		c.setFlow(event.Platform, StateConnected)
		outcome := &CallbackOutcome{
			Notice:    fmt.Sprintf("Successfully connected %s account", event.Platform.DisplayName()),
			Connected: true,
		}
		if _, err := c.Accounts(ctx); err != nil {
			return outcome, fmt.Errorf("connected but failed to refresh accounts: %w", err)
		}
		return outcome, nil

	case CallbackFailure:
		c.setFlow(event.Platform, StateFailed)
		return &CallbackOutcome{
			Notice: fmt.Sprintf("Failed to connect %s: %s", event.Platform.DisplayName(), event.Reason),
		}, nil

	case ForwardNeeded:
		params := url.Values{}
		params.Set("code", event.Code)
		params.Set("state", event.State)
		params.Set("platform", event.Platform.provider())
		return &CallbackOutcome{
			ForwardURL: fmt.Sprintf("%s/oauth/%s/callback?%s", c.baseURL, event.Platform.provider(), params.Encode()),
		}, nil

	default:
		return nil, nil
	}
}

// callbackParams are the query keys consumed by the OAuth callback flow.
var callbackParams = []string{"success", "error", "platform", "code", "state"}

// StripQuery returns rawURL with the consumed callback parameters removed,
// so re-opening the URL does not re-trigger the same callback. Unrelated
// query parameters are preserved.
func StripQuery(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	query := u.Query()
	for _, key := range callbackParams {
		query.Del(key)
	}
	u.RawQuery = query.Encode()
	return u.String()
}

// Accounts fetches the connected social accounts and records the result
// for IsConnected. Connection status is never cached longer than one
// explicit refresh.
func (c *Client) Accounts(ctx context.Context) ([]SocialAccount, error) {
	var resp struct {
		Accounts []SocialAccount `json:"accounts"`
	}
	if err := c.Get(ctx, "/oauth/accounts", &resp); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.lastAccounts = resp.Accounts
	for _, p := range Platforms {
		if _, tracked := c.flows[p]; tracked {
			c.flows[p] = StateDisconnected
		}
	}
	for _, acc := range resp.Accounts {
		c.flows[platformFromProvider(string(acc.Platform))] = StateConnected
	}
	c.mu.Unlock()

	return resp.Accounts, nil
}

// IsConnected reports whether the platform appeared in the last Accounts
// refresh. Returns false before the first refresh.
func (c *Client) IsConnected(platform Platform) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, acc := range c.lastAccounts {
		if platformFromProvider(string(acc.Platform)) == platform {
			return true
		}
	}
	return false
}

// Disconnect removes the platform connection, then refreshes the account
// list. The refresh is issued only after the delete resolves so a stale
// list never races the removal. Disconnecting an absent platform returns
// the backend's 404 as a plain error.
func (c *Client) Disconnect(ctx context.Context, platform Platform) error {
	if err := c.Request(ctx, http.MethodDelete, "/oauth/disconnect/"+platform.provider(), nil, nil); err != nil {
		return err
	}

	c.setFlow(platform, StateDisconnected)

	if _, err := c.Accounts(ctx); err != nil {
		return fmt.Errorf("disconnected but failed to refresh accounts: %w", err)
	}
	return nil
}
