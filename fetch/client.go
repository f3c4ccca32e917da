// Package fetch is the single HTTP surface toward scraped sources. All
// requests carry the constant User-Agent; no authentication is ever sent.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"writecorpus/config"
)

var (
	// ErrNotFound marks a definitive 404/410; callers must not retry it.
	ErrNotFound = errors.New("page not found")
	// ErrTooLarge marks a response body beyond the hard ceiling; skipped, not retried.
	ErrTooLarge = errors.New("response exceeds size ceiling")
)

// Client fetches pages with a shared timeout and size ceiling.
type Client struct {
	http     *http.Client
	maxBytes int64
}

// NewClient builds a client with the given per-request timeout.
// A zero timeout falls back to the configured default.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = config.FetchTimeout
	}
	return &Client{
		http:     &http.Client{Timeout: timeout},
		maxBytes: config.MaxResponseBytes,
	}
}

// Get fetches url and returns the body as a string.
// Status handling: 404/410 map to ErrNotFound, other non-2xx statuses are
// returned as transient errors the orchestrator may retry.
func (c *Client) Get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", config.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return "", fmt.Errorf("%s: %w", url, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", fmt.Errorf("%s: status %d", url, resp.StatusCode)
	}

	if resp.ContentLength > c.maxBytes {
		return "", fmt.Errorf("%s (%d bytes): %w", url, resp.ContentLength, ErrTooLarge)
	}

	// Read one byte past the ceiling to detect oversized chunked responses.
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading response from %s: %w", url, err)
	}
	if int64(len(body)) > c.maxBytes {
		return "", fmt.Errorf("%s: %w", url, ErrTooLarge)
	}

	return string(body), nil
}
