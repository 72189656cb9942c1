// Package feed implements the MediathekViewWeb feed client.
package feed

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mmcdole/gofeed"

	"mediathek_bot/internal/model"
)

// DefaultURL is the MediathekViewWeb feed endpoint.
const DefaultURL = "https://mediathekviewweb.de/feed"

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client downloads and parses MediathekViewWeb search feeds.
type Client struct {
	client  HTTPClient
	baseURL string
	timeout time.Duration
}

// New creates a Client with the given HTTP client and feed endpoint URL.
func New(client HTTPClient, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		client:  client,
		baseURL: baseURL,
		timeout: 30 * time.Second,
	}
}

// Search fetches the feed for the given search query and returns the videos
// in the feed's order. The request is bounded by the client's timeout so a
// hanging feed source cannot stall a poll cycle.
func (c *Client) Search(ctx context.Context, query string) ([]model.Video, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := c.baseURL + "?query=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "MediathekWatchBot/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	parser := gofeed.NewParser()
	parsed, err := parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	videos := make([]model.Video, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		videos = append(videos, toVideo(item))
	}
	return videos, nil
}

// ItemID returns the identifier for a feed item. If the item has no GUID,
// a SHA-256 hash of title+link is used.
func ItemID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	h := sha256.Sum256([]byte(item.Title + "|" + item.Link))
	return fmt.Sprintf("sha256:%x", h[:16])
}

// toVideo maps a feed item to a Video. MediathekViewWeb extends plain RSS
// with duration (seconds) and websiteurl elements, which gofeed surfaces in
// the item's Custom map; the link element carries the media URL itself.
func toVideo(item *gofeed.Item) model.Video {
	v := model.Video{
		ID:       ItemID(item),
		Title:    item.Title,
		Summary:  item.Description,
		MediaURL: item.Link,
		PageURL:  item.Custom["websiteurl"],
	}
	if item.Author != nil && item.Author.Name != "" {
		v.Author = item.Author.Name
	} else {
		v.Author = item.Custom["author"]
	}
	if d, err := strconv.Atoi(item.Custom["duration"]); err == nil {
		v.DurationSeconds = d
	}
	if item.PublishedParsed != nil {
		v.PublishedAt = item.PublishedParsed.UTC()
	}
	return v
}
