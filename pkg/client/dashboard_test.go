package client

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dashboardServer serves the three dashboard endpoints, failing the sections
// named in failing.
func dashboardServer(t *testing.T, failing ...string) *Client {
	t.Helper()

	fails := make(map[string]bool, len(failing))
	for _, section := range failing {
		fails[section] = true
	}

	c, _ := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		section := strings.TrimPrefix(r.URL.Path, "/dashboard/")
		if fails[section] {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Failed to load " + section})
			return
		}

		switch section {
		case "stats":
			writeJSON(w, http.StatusOK, DashboardStats{TotalPosts: 1284, ActiveThreats: 3, LastUpdated: time.Now()})
		case "threats":
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"threats": []ThreatAlert{{ID: "t1", Title: "Credential phishing", Severity: "high"}},
			})
		case "activity":
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"activity": []ActivityPoint{{Date: "2026-08-29", Posts: 120, Threats: 2}},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	return c
}

func TestFetchDashboard(t *testing.T) {
	t.Run("complete frame", func(t *testing.T) {
		c := dashboardServer(t)

		frame, err := c.FetchDashboard(context.Background(), 10, 7)
		require.NoError(t, err)
		require.NotNil(t, frame.Stats)
		assert.Equal(t, 1284, frame.Stats.TotalPosts)
		assert.Len(t, frame.Threats, 1)
		assert.Len(t, frame.Activity, 1)
		assert.Empty(t, frame.Degraded)
	})

	t.Run("partial failure degrades the section", func(t *testing.T) {
		c := dashboardServer(t, "threats")

		frame, err := c.FetchDashboard(context.Background(), 10, 7)
		require.NoError(t, err)
		require.NotNil(t, frame.Stats)
		assert.Nil(t, frame.Threats)
		assert.Equal(t, []string{"threats"}, frame.Degraded)
	})

	t.Run("two failures still return a frame", func(t *testing.T) {
		c := dashboardServer(t, "stats", "activity")

		frame, err := c.FetchDashboard(context.Background(), 10, 7)
		require.NoError(t, err)
		assert.Nil(t, frame.Stats)
		assert.Len(t, frame.Threats, 1)
		assert.ElementsMatch(t, []string{"stats", "activity"}, frame.Degraded)
	})

	t.Run("all sections failing fails the frame", func(t *testing.T) {
		c := dashboardServer(t, "stats", "threats", "activity")

		frame, err := c.FetchDashboard(context.Background(), 10, 7)
		require.Error(t, err)
		assert.Nil(t, frame)
	})

	t.Run("passes limit and days through", func(t *testing.T) {
		var gotThreats, gotActivity string
		c, _ := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch strings.TrimPrefix(r.URL.Path, "/dashboard/") {
			case "stats":
				writeJSON(w, http.StatusOK, DashboardStats{})
			case "threats":
				gotThreats = r.URL.Query().Get("limit")
				writeJSON(w, http.StatusOK, map[string]interface{}{"threats": []ThreatAlert{}})
			case "activity":
				gotActivity = r.URL.Query().Get("days")
				writeJSON(w, http.StatusOK, map[string]interface{}{"activity": []ActivityPoint{}})
			}
		}))

		_, err := c.FetchDashboard(context.Background(), 25, 14)
		require.NoError(t, err)
		assert.Equal(t, "25", gotThreats)
		assert.Equal(t, "14", gotActivity)
	})
}
