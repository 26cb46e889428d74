package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatformProvider(t *testing.T) {
	assert.Equal(t, "google", YouTube.provider())
	assert.Equal(t, "facebook", Facebook.provider())
	assert.Equal(t, "reddit", Reddit.provider())

	assert.Equal(t, YouTube, platformFromProvider("google"))
	assert.Equal(t, YouTube, platformFromProvider("GOOGLE"))
	assert.Equal(t, Twitter, platformFromProvider("twitter"))
	assert.Equal(t, Facebook, platformFromProvider("Facebook"))
}

func TestPlatformDisplayName(t *testing.T) {
	assert.Equal(t, "YouTube", YouTube.DisplayName())
	assert.Equal(t, "Facebook", Facebook.DisplayName())
	assert.Equal(t, "Reddit", Reddit.DisplayName())
	assert.Equal(t, "", Platform("").DisplayName())
}

func TestParseCallback(t *testing.T) {
	t.Run("error parameter wins over success", func(t *testing.T) {
		query := url.Values{}
		query.Set("success", "true")
		query.Set("error", "access_denied")
		query.Set("platform", "reddit")

		event := ParseCallback(query)
		assert.Equal(t, CallbackFailure, event.Kind)
		assert.Equal(t, Reddit, event.Platform)
		assert.Equal(t, "access_denied", event.Reason)
	})

	t.Run("success with platform", func(t *testing.T) {
		query := url.Values{}
		query.Set("success", "true")
		query.Set("platform", "twitter")

		event := ParseCallback(query)
		assert.Equal(t, CallbackSuccess, event.Kind)
		assert.Equal(t, Twitter, event.Platform)
	})

	t.Run("google provider maps to youtube", func(t *testing.T) {
		query := url.Values{}
		query.Set("success", "true")
		query.Set("platform", "google")

		event := ParseCallback(query)
		assert.Equal(t, CallbackSuccess, event.Kind)
		assert.Equal(t, YouTube, event.Platform)
	})

	t.Run("code and state require forwarding", func(t *testing.T) {
		query := url.Values{}
		query.Set("code", "auth-code-123")
		query.Set("state", "csrf-state-456")
		query.Set("platform", "reddit")

		event := ParseCallback(query)
		assert.Equal(t, ForwardNeeded, event.Kind)
		assert.Equal(t, Reddit, event.Platform)
		assert.Equal(t, "auth-code-123", event.Code)
		assert.Equal(t, "csrf-state-456", event.State)
	})

	t.Run("forward defaults to facebook without platform", func(t *testing.T) {
		query := url.Values{}
		query.Set("code", "auth-code-123")
		query.Set("state", "csrf-state-456")

		event := ParseCallback(query)
		assert.Equal(t, ForwardNeeded, event.Kind)
		assert.Equal(t, Facebook, event.Platform)
	})

	t.Run("code without state is not a callback", func(t *testing.T) {
		query := url.Values{}
		query.Set("code", "auth-code-123")

		event := ParseCallback(query)
		assert.Equal(t, NoCallback, event.Kind)
	})

	t.Run("unrelated parameters are not a callback", func(t *testing.T) {
		query := url.Values{}
		query.Set("utm_source", "newsletter")

		event := ParseCallback(query)
		assert.Equal(t, NoCallback, event.Kind)
	})
}

func TestStripQuery(t *testing.T) {
	t.Run("removes consumed callback parameters", func(t *testing.T) {
		stripped := StripQuery("http://localhost:3000/social-accounts?success=true&platform=reddit&tab=connections")

		u, err := url.Parse(stripped)
		require.NoError(t, err)
		assert.Empty(t, u.Query().Get("success"))
		assert.Empty(t, u.Query().Get("platform"))
		assert.Equal(t, "connections", u.Query().Get("tab"))
	})

	t.Run("removes code and state", func(t *testing.T) {
		stripped := StripQuery("http://localhost:3000/?code=abc&state=xyz&error=denied")
		u, err := url.Parse(stripped)
		require.NoError(t, err)
		assert.Empty(t, u.RawQuery)
	})

	t.Run("returns malformed URLs untouched", func(t *testing.T) {
		raw := "http://bad url with spaces?code=abc"
		assert.Equal(t, raw, StripQuery(raw))
	})
}

func TestConnect(t *testing.T) {
	t.Run("returns auth URL and tracks flow", func(t *testing.T) {
		c, _ := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/oauth/connect/google", r.URL.Path)
			writeJSON(w, http.StatusOK, ConnectIntent{
				AuthURL: "https://accounts.google.com/o/oauth2/auth?client_id=abc",
				State:   "csrf-state",
			})
		}))

		intent, err := c.Connect(context.Background(), YouTube)
		require.NoError(t, err)
		assert.Contains(t, intent.AuthURL, "accounts.google.com")
		assert.Equal(t, "csrf-state", intent.State)
		assert.Equal(t, StateCallbackPending, c.FlowState(YouTube))
	})

	t.Run("credential platforms are rejected", func(t *testing.T) {
		c := New("http://localhost:8000/api/v1")

		_, err := c.Connect(context.Background(), Instagram)
		assert.ErrorIs(t, err, ErrCredentialsRequired)
		assert.Equal(t, StateDisconnected, c.FlowState(Instagram))
	})

	t.Run("marks flow failed on backend error", func(t *testing.T) {
		c, _ := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "twitter OAuth is not configured"})
		}))

		_, err := c.Connect(context.Background(), Twitter)
		require.Error(t, err)
		assert.Equal(t, StateFailed, c.FlowState(Twitter))
	})
}

func TestConnectWithCredentials(t *testing.T) {
	t.Run("accepted connection marks connected", func(t *testing.T) {
		c, _ := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/collect/connect/credentials", r.URL.Path)
			writeJSON(w, http.StatusAccepted, map[string]interface{}{
				"success": true,
				"message": "Collection started for instagram",
				"job_id":  "job_1",
			})
		}))

		err := c.ConnectWithCredentials(context.Background(), CredentialConnectRequest{
			Platform: Instagram,
			Email:    "alice@example.com",
			Password: "secret",
		})
		require.NoError(t, err)
		assert.Equal(t, StateConnected, c.FlowState(Instagram))
	})

	t.Run("unaccepted reply marks failed", func(t *testing.T) {
		c, _ := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusAccepted, map[string]interface{}{
				"success": false,
				"message": "login challenge required",
			})
		}))

		err := c.ConnectWithCredentials(context.Background(), CredentialConnectRequest{Platform: Instagram})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "login challenge required")
		assert.Equal(t, StateFailed, c.FlowState(Instagram))
	})
}

func TestHandleCallback(t *testing.T) {
	t.Run("success refreshes accounts and reports notice", func(t *testing.T) {
		accountCalls := 0
		c, _ := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/oauth/accounts", r.URL.Path)
			accountCalls++
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"accounts": []SocialAccount{{Platform: Reddit, Username: "alice_r"}},
			})
		}))

		outcome, err := c.HandleCallback(context.Background(), CallbackEvent{
			Kind:     CallbackSuccess,
			Platform: Reddit,
		})
		require.NoError(t, err)
		assert.True(t, outcome.Connected)
		assert.Equal(t, "Successfully connected Reddit account", outcome.Notice)
		assert.Equal(t, 1, accountCalls)
		assert.True(t, c.IsConnected(Reddit))
	})

	t.Run("failure produces notice without refresh", func(t *testing.T) {
		c, _ := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		}))

		outcome, err := c.HandleCallback(context.Background(), CallbackEvent{
			Kind:     CallbackFailure,
			Platform: Twitter,
			Reason:   "access_denied",
		})
		require.NoError(t, err)
		assert.False(t, outcome.Connected)
		assert.Equal(t, "Failed to connect Twitter: access_denied", outcome.Notice)
		assert.Equal(t, StateFailed, c.FlowState(Twitter))
	})

	t.Run("forward builds backend callback URL", func(t *testing.T) {
		c := New("http://localhost:8000/api/v1")

		outcome, err := c.HandleCallback(context.Background(), CallbackEvent{
			Kind:     ForwardNeeded,
			Platform: YouTube,
			Code:     "auth-code",
			State:    "csrf-state",
		})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(outcome.ForwardURL, "http://localhost:8000/api/v1/oauth/google/callback?"))

		u, err := url.Parse(outcome.ForwardURL)
		require.NoError(t, err)
		assert.Equal(t, "auth-code", u.Query().Get("code"))
		assert.Equal(t, "csrf-state", u.Query().Get("state"))
		assert.Equal(t, "google", u.Query().Get("platform"))
	})

	t.Run("no callback is a no-op", func(t *testing.T) {
		c := New("http://localhost:8000/api/v1")

		outcome, err := c.HandleCallback(context.Background(), CallbackEvent{Kind: NoCallback})
		assert.NoError(t, err)
		assert.Nil(t, outcome)
	})
}

func TestAccounts(t *testing.T) {
	t.Run("refresh updates connection status", func(t *testing.T) {
		c, _ := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"accounts": []SocialAccount{
					{Platform: "facebook", Username: "alice.fb", ConnectedAt: time.Now()},
					{Platform: "google", Username: "alice.yt", ConnectedAt: time.Now()},
				},
			})
		}))

		accounts, err := c.Accounts(context.Background())
		require.NoError(t, err)
		assert.Len(t, accounts, 2)

		assert.True(t, c.IsConnected(Facebook))
		assert.True(t, c.IsConnected(YouTube), "google account counts as youtube")
		assert.False(t, c.IsConnected(Reddit))
	})

	t.Run("refresh clears stale connected state", func(t *testing.T) {
		empty := false
		c, _ := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accounts := []SocialAccount{{Platform: "reddit", Username: "alice_r"}}
			if empty {
				accounts = nil
			}
			writeJSON(w, http.StatusOK, map[string]interface{}{"accounts": accounts})
		}))

		_, err := c.Accounts(context.Background())
		require.NoError(t, err)
		assert.True(t, c.IsConnected(Reddit))
		assert.Equal(t, StateConnected, c.FlowState(Reddit))

		empty = true
		_, err = c.Accounts(context.Background())
		require.NoError(t, err)
		assert.False(t, c.IsConnected(Reddit))
		assert.Equal(t, StateDisconnected, c.FlowState(Reddit))
	})

	t.Run("not connected before first refresh", func(t *testing.T) {
		c := New("http://localhost:8000/api/v1")
		assert.False(t, c.IsConnected(Facebook))
	})
}

func TestDisconnect(t *testing.T) {
	t.Run("deletes then refreshes", func(t *testing.T) {
		var order []string
		c, _ := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodDelete:
				order = append(order, "delete")
				assert.Equal(t, "/oauth/disconnect/google", r.URL.Path)
				writeJSON(w, http.StatusOK, map[string]string{"message": "YouTube account disconnected"})
			default:
				order = append(order, "refresh")
				writeJSON(w, http.StatusOK, map[string]interface{}{"accounts": []SocialAccount{}})
			}
		}))

		err := c.Disconnect(context.Background(), YouTube)
		require.NoError(t, err)
		assert.Equal(t, []string{"delete", "refresh"}, order)
		assert.False(t, c.IsConnected(YouTube))
	})

	t.Run("absent platform surfaces the 404", func(t *testing.T) {
		c, _ := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "No reddit account connected"})
		}))

		err := c.Disconnect(context.Background(), Reddit)
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})
}
