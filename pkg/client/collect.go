package client

import (
	"context"
	"encoding/json"
	"time"
)

// GetPermissions fetches the collection permission flags.
func (c *Client) GetPermissions(ctx context.Context) (*Permissions, error) {
	var perms Permissions
	if err := c.Get(ctx, "/auth/permissions", &perms); err != nil {
		return nil, err
	}
	return &perms, nil
}

// SetPermissions replaces the enabled platform set.
// The result is mirrored into the durable store for optimistic UI reads;
// the mirror is a cache only and the backend value wins on the next load.
func (c *Client) SetPermissions(ctx context.Context, platforms []Platform) (*Permissions, error) {
	body := map[string]interface{}{"platforms": platforms}

	var perms Permissions
	if err := c.Post(ctx, "/auth/permissions", body, &perms); err != nil {
		return nil, err
	}

	c.mirrorPermissions(&perms)
	return &perms, nil
}

// mirrorPermissions writes the permission flags into the durable store.
// Failures are logged and ignored; the mirror is best-effort.
func (c *Client) mirrorPermissions(perms *Permissions) {
	flags := make(map[Platform]bool, len(Platforms))
	for _, p := range Platforms {
		flags[p] = false
	}
	for _, p := range perms.EnabledPlatforms {
		flags[p] = true
	}

	raw, err := json.Marshal(flags)
	if err != nil {
		return
	}
	if err := c.store.Set(StoreKeyPermissions, string(raw)); err != nil {
		c.log.Warn().Err(err).Msg("Failed to mirror permissions")
	}

	granted := "false"
	if perms.PermissionsGranted {
		granted = "true"
	}
	if err := c.store.Set(StoreKeyPermissionsGranted, granted); err != nil {
		c.log.Warn().Err(err).Msg("Failed to mirror permissions flag")
	}
}

// CollectData triggers a collection run across all enabled platforms.
// Returns the dispatched jobs.
func (c *Client) CollectData(ctx context.Context) ([]CollectionJob, error) {
	var resp struct {
		Message string          `json:"message"`
		Jobs    []CollectionJob `json:"jobs"`
	}
	if err := c.Post(ctx, "/auth/collect-data", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Jobs, nil
}

// Job fetches the status of a collection or scrape job.
func (c *Client) Job(ctx context.Context, jobID string) (*CollectionJob, error) {
	var job CollectionJob
	if err := c.Get(ctx, "/browser/job/"+jobID, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// LoginSession is one active login session for the current user.
type LoginSession struct {
	ID         string    `json:"id"`
	DeviceInfo string    `json:"device_info"`
	IPAddress  string    `json:"ip_address"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Sessions lists the active login sessions.
func (c *Client) Sessions(ctx context.Context) ([]LoginSession, error) {
	var resp struct {
		Sessions []LoginSession `json:"sessions"`
	}
	if err := c.Get(ctx, "/auth/sessions", &resp); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}
