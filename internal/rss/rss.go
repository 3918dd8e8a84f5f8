package rss

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/deusflow/thainews/internal/logger"
	"github.com/deusflow/thainews/internal/scraper"
)

const (
	userAgent    = "thainews/1.0"
	maxFeedBytes = 10 << 20
)

// Entry is one feed item as the pipeline sees it.
type Entry struct {
	Title string
	Link  string
}

// Fetcher downloads and parses RSS/Atom feeds.
type Fetcher struct {
	client  *http.Client
	parser  *gofeed.Parser
	timeout time.Duration
}

// NewFetcher creates a fetcher whose every request is bounded by timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		parser:  gofeed.NewParser(),
		timeout: timeout,
	}
}

// Fetch returns the feed's entries in the order the feed lists them. Titles
// are kept as the feed provides them, only trimmed. When the URL serves an
// HTML page instead of a feed, the first feed the page advertises is used.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	body, err := f.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("error fetching RSS %s: %w", url, err)
	}

	feed, err := f.parser.Parse(bytes.NewReader(body))
	if errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
		feed, err = f.discover(ctx, url, body)
	}
	if err != nil {
		return nil, fmt.Errorf("error parsing RSS %s: %w", url, err)
	}

	entries := make([]Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		entries = append(entries, Entry{
			Title: strings.TrimSpace(item.Title),
			Link:  strings.TrimSpace(item.Link),
		})
	}
	return entries, nil
}

// discover follows the first feed link of an HTML page, one hop only.
func (f *Fetcher) discover(ctx context.Context, pageURL string, page []byte) (*gofeed.Feed, error) {
	links, err := scraper.FeedLinks(bytes.NewReader(page), pageURL)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, gofeed.ErrFeedTypeNotDetected
	}

	logger.Debug("feed discovered", "page", pageURL, "feed", links[0])
	body, err := f.get(ctx, links[0])
	if err != nil {
		return nil, fmt.Errorf("error fetching discovered feed %s: %w", links[0], err)
	}
	return f.parser.Parse(bytes.NewReader(body))
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
}
