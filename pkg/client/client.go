// Package client is the Go SDK for the OSINT platform API.
// It owns the bearer token, attaches it to outgoing requests, persists it
// through a TokenStore, and exposes typed operations for authentication,
// social account connections, collection, and the dashboard.
//
// Example:
//
//	c := client.New("http://localhost:8000/api/v1")
//	token, err := c.Login(ctx, "alice", "secret")
//	if err != nil {
//	    return err
//	}
//	c.SetToken(token.AccessToken)
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Client is an authenticated API session.
// The token and the current user form an atomic pair guarded by one mutex:
// there is never a window where requests carry a token for which no local
// user decision has been made.
type Client struct {
	baseURL string
	http    *http.Client
	store   TokenStore
	log     zerolog.Logger

	mu           sync.Mutex
	token        string
	user         *User
	lastAccounts []SocialAccount
	flows        map[Platform]ConnectionState
	subs         map[int]func(*User)
	nextSub      int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTokenStore sets the durable session store. A previously persisted
// token is loaded into memory immediately; call Validate to check it.
func WithTokenStore(s TokenStore) Option {
	return func(c *Client) { c.store = s }
}

// WithLogger sets the logger used for request failures.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithTimeout sets a timeout on the underlying HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a client for the given API base URL, e.g.
// "http://localhost:8000/api/v1".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		store:   NewMemoryTokenStore(),
		log:     zerolog.Nop(),
		flows:   make(map[Platform]ConnectionState),
		subs:    make(map[int]func(*User)),
	}
	for _, opt := range opts {
		opt(c)
	}

	// Pick up a token persisted by a previous run. It is held but not
	// trusted until Validate confirms it against the backend.
	if token, err := c.store.Get(StoreKeyToken); err == nil && token != "" {
		c.token = token
	}

	return c
}

// SetToken stores the token in memory and in the durable store.
// Subsequent requests carry the bearer header.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	if err := c.store.Set(StoreKeyToken, token); err != nil {
		c.log.Warn().Err(err).Msg("Failed to persist token")
	}
}

// ClearToken removes the token and current user from memory and the token
// from the durable store. Subsequent requests carry no bearer header.
func (c *Client) ClearToken() {
	c.mu.Lock()
	c.token = ""
	c.user = nil
	if err := c.store.Delete(StoreKeyToken); err != nil {
		c.log.Warn().Err(err).Msg("Failed to remove persisted token")
	}
	subs := c.snapshotSubs()
	c.mu.Unlock()

	notify(subs, nil)
}

// Token returns the currently held bearer token, or "" when logged out.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// CurrentUser returns the validated user for this session, or nil.
func (c *Client) CurrentUser() *User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// Subscribe registers fn to be called whenever the session user changes
// (login, logout, validation). Returns an unsubscribe function.
func (c *Client) Subscribe(fn func(user *User)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// setUser replaces the session user and notifies subscribers.
func (c *Client) setUser(user *User) {
	c.mu.Lock()
	c.user = user
	subs := c.snapshotSubs()
	c.mu.Unlock()

	notify(subs, user)
}

// snapshotSubs copies the subscriber list; callers must hold mu.
func (c *Client) snapshotSubs() []func(*User) {
	subs := make([]func(*User), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(*User), user *User) {
	for _, fn := range subs {
		fn(user)
	}
}

// Request issues an HTTP request against the API.
//
// The body is encoded by type: url.Values are sent form-encoded, io.Reader
// is passed through untouched, anything else is marshalled as JSON. A held
// token is attached as a bearer header. Non-2xx responses are returned as
// *APIError with the server's {"detail": ...} message when parseable. On
// success the response JSON is decoded into out (when out is non-nil).
//
// There is no retry and no timeout beyond the transport's; callers map
// errors to user-facing text themselves.
func (c *Client) Request(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	contentType := ""

	switch b := body.(type) {
	case nil:
	case url.Values:
		reader = strings.NewReader(b.Encode())
		contentType = "application/x-www-form-urlencoded"
	case io.Reader:
		reader = b
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("method", method).Str("path", path).Msg("Request failed")
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := parseAPIError(resp)
		c.log.Warn().
			Int("status", resp.StatusCode).
			Str("method", method).
			Str("path", path).
			Str("detail", apiErr.Detail).
			Msg("API error")
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// parseAPIError extracts the {"detail": ...} envelope from an error
// response, falling back to a generic message.
func parseAPIError(resp *http.Response) *APIError {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return statusError(resp.StatusCode)
	}

	var envelope struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Detail == "" {
		return statusError(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Detail: envelope.Detail}
}

// Get issues a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.Request(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Request(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.Request(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.Request(ctx, http.MethodDelete, path, nil, out)
}

// Login authenticates with form-encoded credentials.
// Deliberately does NOT call SetToken: the caller controls when the session
// flips relative to its own state updates.
func (c *Client) Login(ctx context.Context, username, password string) (*Token, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var token Token
	if err := c.Request(ctx, http.MethodPost, "/auth/login", form, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// Register creates an account. Same response shape as Login; the caller
// applies SetToken.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Token, error) {
	var token Token
	if err := c.Post(ctx, "/auth/register", req, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// Me fetches the profile for the held token.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.Get(ctx, "/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Validate probes the held token against the backend and records the user.
// A 401 is a silent recoverable condition: the stale token is cleared, the
// session falls back to unauthenticated, and no error escapes. Other
// failures are returned with the session untouched.
func (c *Client) Validate(ctx context.Context) (*User, error) {
	if c.Token() == "" {
		return nil, nil
	}

	user, err := c.Me(ctx)
	if err != nil {
		if IsUnauthorized(err) {
			c.log.Debug().Msg("Stored token rejected, clearing session")
			c.ClearToken()
			return nil, nil
		}
		return nil, err
	}

	c.setUser(user)
	return user, nil
}

// StartSession applies a login/register token to the session: persists the
// token and records the user atomically, then notifies subscribers.
func (c *Client) StartSession(token *Token) {
	c.mu.Lock()
	c.token = token.AccessToken
	c.user = token.User
	if err := c.store.Set(StoreKeyToken, token.AccessToken); err != nil {
		c.log.Warn().Err(err).Msg("Failed to persist token")
	}
	subs := c.snapshotSubs()
	c.mu.Unlock()

	notify(subs, token.User)
}

// Logout ends the session. The server-side revocation is best-effort: a
// failure is logged and swallowed, and local state is cleared regardless,
// because signing out locally must always succeed from the user's
// perspective.
func (c *Client) Logout(ctx context.Context) {
	if c.Token() != "" {
		if err := c.Post(ctx, "/auth/logout", nil, nil); err != nil {
			c.log.Warn().Err(err).Msg("Server-side logout failed")
		}
	}
	c.ClearToken()
}
