// Package hackernews fetches the current top stories from the Hacker News Firebase API.
//
// Endpoints:
//   - <base>/topstories.json: ordered list of story ids
//   - <base>/item/<id>.json: a single story, or null when it no longer exists
package hackernews

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"weeklydigest/internal/digest"
)

const (
	// DefaultBaseURL is the public Firebase API root.
	DefaultBaseURL = "https://hacker-news.firebaseio.com/v0"
	// DiscussionURL is the story page used when a story links nowhere (Ask HN, Show HN).
	DiscussionURL = "https://news.ycombinator.com/item?id=%d"
	// SourceLabel tags every item produced by this client.
	SourceLabel = "Hacker News"

	requestTimeout = 15 * time.Second
)

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hacker news %s: unexpected status %d", e.URL, e.StatusCode)
}

// story is the subset of the item record we use.
type story struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Score int    `json:"score"`
	By    string `json:"by"`
}

// Client reads top stories.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient creates a client for the given API root. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

// Top returns up to limit top stories as digest items.
// If the id list cannot be read the batch carries the error and no items; a story
// whose record cannot be read is logged and skipped.
func (c *Client) Top(ctx context.Context, limit int) digest.Batch {
	var ids []int64
	if err := c.getJSON(ctx, c.baseURL+"/topstories.json", &ids); err != nil {
		return digest.Failed(fmt.Errorf("fetch top stories: %w", err))
	}
	if limit < 0 {
		limit = 0
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}

	items := make([]digest.Item, 0, len(ids))
	for _, id := range ids {
		var s *story
		if err := c.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", c.baseURL, id), &s); err != nil {
			c.logger.Printf("skip story %d: %v", id, err)
			continue
		}
		if s == nil {
			continue
		}
		items = append(items, toItem(*s))
	}
	return digest.Batch{Items: items}
}

func toItem(s story) digest.Item {
	title := strings.TrimSpace(s.Title)
	if title == "" {
		title = digest.NoTitle
	}
	link := s.URL
	if link == "" {
		link = fmt.Sprintf(DiscussionURL, s.ID)
	}
	return digest.Item{
		Title:  title,
		URL:    link,
		Source: SourceLabel,
	}
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
