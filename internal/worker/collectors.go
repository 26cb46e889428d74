package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/osintlab/osint-platform/internal/models"
	"github.com/osintlab/osint-platform/pkg/utils"
)

// Collector fetches posts for one platform.
// The account carries OAuth tokens for API-based collectors; target narrows
// the run to a specific profile or handle when set.
type Collector interface {
	Collect(ctx context.Context, acc *models.SocialAccount, target string, maxPosts int) ([]models.CollectedPost, error)
}

// TwitterCollector fetches tweets through the twitterapi.io proxy service,
// which works with a flat API key instead of the connected account's OAuth
// token. Requests are retried with backoff since the proxy rate-limits
// aggressively.
type TwitterCollector struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewTwitterCollector creates a twitterapi.io backed collector.
func NewTwitterCollector(apiKey string) *TwitterCollector {
	return &TwitterCollector{
		apiKey:  apiKey,
		baseURL: "https://api.twitterapi.io",
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type twitterAPITweet struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
	Author    struct {
		UserName string `json:"userName"`
	} `json:"author"`
}

// Collect fetches the most recent tweets for the target handle, falling
// back to the connected account's own handle when no target is given.
func (c *TwitterCollector) Collect(ctx context.Context, acc *models.SocialAccount, target string, maxPosts int) ([]models.CollectedPost, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("twitter api key not configured")
	}

	handle := target
	if handle == "" {
		handle = acc.Username
	}
	if handle == "" {
		return nil, fmt.Errorf("no twitter handle to collect")
	}

	reqURL := fmt.Sprintf("%s/twitter/user/last_tweets?userName=%s", c.baseURL, url.QueryEscape(handle))

	tweets, err := utils.RetryWithResult(ctx, utils.ExternalAPIRetryConfig(), func() ([]twitterAPITweet, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("x-api-key", c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("twitterapi request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("twitterapi returned status %d", resp.StatusCode)
		}

		var body struct {
			Data struct {
				Tweets []twitterAPITweet `json:"tweets"`
			} `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("failed to decode twitterapi response: %w", err)
		}
		return body.Data.Tweets, nil
	})
	if err != nil {
		return nil, err
	}

	if len(tweets) > maxPosts {
		tweets = tweets[:maxPosts]
	}

	posts := make([]models.CollectedPost, 0, len(tweets))
	for _, tweet := range tweets {
		post := models.CollectedPost{
			UserID:      acc.UserID,
			Platform:    models.PlatformTwitter,
			ExternalID:  tweet.ID,
			Author:      tweet.Author.UserName,
			Content:     tweet.Text,
			ThreatScore: ScoreContent(tweet.Text),
		}
		if postedAt, err := time.Parse(time.RubyDate, tweet.CreatedAt); err == nil {
			post.PostedAt = &postedAt
		}
		posts = append(posts, post)
	}

	return posts, nil
}

// RedditCollector fetches submissions with the connected account's OAuth
// token against the oauth.reddit.com API.
type RedditCollector struct {
	baseURL string
	client  *http.Client
}

// NewRedditCollector creates a Reddit API collector.
func NewRedditCollector() *RedditCollector {
	return &RedditCollector{
		baseURL: "https://oauth.reddit.com",
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Collect fetches the newest submissions for the target user, defaulting
// to the connected account itself.
func (c *RedditCollector) Collect(ctx context.Context, acc *models.SocialAccount, target string, maxPosts int) ([]models.CollectedPost, error) {
	if acc.AccessToken == "" {
		return nil, fmt.Errorf("reddit account has no access token")
	}

	username := target
	if username == "" {
		username = acc.Username
	}

	reqURL := fmt.Sprintf("%s/user/%s/submitted?limit=%d", c.baseURL, url.PathEscape(username), maxPosts)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+acc.AccessToken)
	req.Header.Set("User-Agent", "osint-platform/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reddit request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit returned status %d", resp.StatusCode)
	}

	var body struct {
		Data struct {
			Children []struct {
				Data struct {
					ID         string  `json:"id"`
					Author     string  `json:"author"`
					Title      string  `json:"title"`
					SelfText   string  `json:"selftext"`
					CreatedUTC float64 `json:"created_utc"`
				} `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode reddit response: %w", err)
	}

	posts := make([]models.CollectedPost, 0, len(body.Data.Children))
	for _, child := range body.Data.Children {
		content := child.Data.Title
		if child.Data.SelfText != "" {
			content += "\n" + child.Data.SelfText
		}

		postedAt := time.Unix(int64(child.Data.CreatedUTC), 0).UTC()
		posts = append(posts, models.CollectedPost{
			UserID:      acc.UserID,
			Platform:    models.PlatformReddit,
			ExternalID:  child.Data.ID,
			Author:      child.Data.Author,
			Content:     content,
			ThreatScore: ScoreContent(content),
			PostedAt:    &postedAt,
		})
	}

	return posts, nil
}

// GraphCollector fetches the connected account's own feed from the
// Facebook Graph API. Serves both Facebook and Instagram connections since
// they share the provider app.
type GraphCollector struct {
	platform models.Platform
	baseURL  string
	client   *http.Client
}

// NewGraphCollector creates a Graph API collector for the given platform.
func NewGraphCollector(platform models.Platform) *GraphCollector {
	return &GraphCollector{
		platform: platform,
		baseURL:  "https://graph.facebook.com",
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Collect fetches the account's recent feed entries. Graph API tokens only
// grant access to the connected account's own content, so target is ignored.
func (c *GraphCollector) Collect(ctx context.Context, acc *models.SocialAccount, _ string, maxPosts int) ([]models.CollectedPost, error) {
	if acc.AccessToken == "" {
		return nil, fmt.Errorf("%s account has no access token", c.platform)
	}

	reqURL := fmt.Sprintf(
		"%s/v19.0/me/feed?fields=id,message,created_time&limit=%d&access_token=%s",
		c.baseURL, maxPosts, url.QueryEscape(acc.AccessToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graph api returned status %d", resp.StatusCode)
	}

	var body struct {
		Data []struct {
			ID          string `json:"id"`
			Message     string `json:"message"`
			CreatedTime string `json:"created_time"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode graph api response: %w", err)
	}

	posts := make([]models.CollectedPost, 0, len(body.Data))
	for _, entry := range body.Data {
		if entry.Message == "" {
			continue
		}

		post := models.CollectedPost{
			UserID:      acc.UserID,
			Platform:    c.platform,
			ExternalID:  entry.ID,
			Author:      acc.Username,
			Content:     entry.Message,
			ThreatScore: ScoreContent(entry.Message),
		}
		if postedAt, err := time.Parse("2006-01-02T15:04:05-0700", entry.CreatedTime); err == nil {
			post.PostedAt = &postedAt
		}
		posts = append(posts, post)
	}

	return posts, nil
}

// YouTubeCollector fetches the connected channel's recent uploads using the
// stored Google OAuth token.
type YouTubeCollector struct {
	baseURL string
	client  *http.Client
}

// NewYouTubeCollector creates a YouTube Data API collector.
func NewYouTubeCollector() *YouTubeCollector {
	return &YouTubeCollector{
		baseURL: "https://www.googleapis.com",
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Collect fetches recent uploads from the account's own channel.
func (c *YouTubeCollector) Collect(ctx context.Context, acc *models.SocialAccount, _ string, maxPosts int) ([]models.CollectedPost, error) {
	if acc.AccessToken == "" {
		return nil, fmt.Errorf("youtube account has no access token")
	}

	reqURL := fmt.Sprintf(
		"%s/youtube/v3/search?part=snippet&forMine=true&type=video&maxResults=%d&order=date",
		c.baseURL, maxPosts)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+acc.AccessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("youtube request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube returned status %d", resp.StatusCode)
	}

	var body struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
			Snippet struct {
				Title        string `json:"title"`
				Description  string `json:"description"`
				ChannelTitle string `json:"channelTitle"`
				PublishedAt  string `json:"publishedAt"`
			} `json:"snippet"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode youtube response: %w", err)
	}

	posts := make([]models.CollectedPost, 0, len(body.Items))
	for _, item := range body.Items {
		content := item.Snippet.Title
		if item.Snippet.Description != "" {
			content += "\n" + item.Snippet.Description
		}

		post := models.CollectedPost{
			UserID:      acc.UserID,
			Platform:    models.PlatformYouTube,
			ExternalID:  item.ID.VideoID,
			Author:      item.Snippet.ChannelTitle,
			Content:     content,
			ThreatScore: ScoreContent(content),
		}
		if postedAt, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			post.PostedAt = &postedAt
		}
		posts = append(posts, post)
	}

	return posts, nil
}

// DefaultCollectors builds the platform collector set from configuration.
func DefaultCollectors(twitterAPIKey string) map[models.Platform]Collector {
	collectors := map[models.Platform]Collector{
		models.PlatformReddit:    NewRedditCollector(),
		models.PlatformFacebook:  NewGraphCollector(models.PlatformFacebook),
		models.PlatformInstagram: NewGraphCollector(models.PlatformInstagram),
		models.PlatformYouTube:   NewYouTubeCollector(),
	}

	if twitterAPIKey != "" {
		collectors[models.PlatformTwitter] = NewTwitterCollector(twitterAPIKey)
	} else {
		log.Warn().Msg("Twitter API key not configured, twitter collection disabled")
	}

	return collectors
}
