package client

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Dashboard is one frame of dashboard data. Degraded lists the sections
// whose fetch failed; a frame is complete when Degraded is empty.
type Dashboard struct {
	Stats    *DashboardStats
	Threats  []ThreatAlert
	Activity []ActivityPoint
	Degraded []string
}

// FetchDashboard loads stats, threats, and activity concurrently.
// The three requests have no ordering requirement between them, but the
// frame is only returned once all three resolve. A partial failure marks
// the affected sections degraded instead of failing the frame; the frame
// fails only when every section fails.
func (c *Client) FetchDashboard(ctx context.Context, threatLimit, activityDays int) (*Dashboard, error) {
	frame := &Dashboard{}
	var statsErr, threatsErr, activityErr error

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var stats DashboardStats
		if statsErr = c.Get(gctx, "/dashboard/stats", &stats); statsErr == nil {
			frame.Stats = &stats
		}
		return nil
	})

	g.Go(func() error {
		var resp struct {
			Threats []ThreatAlert `json:"threats"`
		}
		if threatsErr = c.Get(gctx, fmt.Sprintf("/dashboard/threats?limit=%d", threatLimit), &resp); threatsErr == nil {
			frame.Threats = resp.Threats
		}
		return nil
	})

	g.Go(func() error {
		var resp struct {
			Activity []ActivityPoint `json:"activity"`
		}
		if activityErr = c.Get(gctx, fmt.Sprintf("/dashboard/activity?days=%d", activityDays), &resp); activityErr == nil {
			frame.Activity = resp.Activity
		}
		return nil
	})

	// The closures record their own errors; Wait only joins them.
	_ = g.Wait()

	if statsErr != nil {
		frame.Degraded = append(frame.Degraded, "stats")
	}
	if threatsErr != nil {
		frame.Degraded = append(frame.Degraded, "threats")
	}
	if activityErr != nil {
		frame.Degraded = append(frame.Degraded, "activity")
	}

	if len(frame.Degraded) == 3 {
		return nil, fmt.Errorf("dashboard fetch failed: %w", statsErr)
	}
	return frame, nil
}
