// Package github is the server-side proxy to the GitHub REST API.
//
// Every read-only endpoint goes through Client.Get: it attaches the caller's
// stored access token, forwards the request, and either returns the response
// body verbatim (2xx) or an upstream error carrying GitHub's status code and
// message (non-2xx). No retries, no backoff — callers decide what a 404 or
// 429 means for them.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sakif/repodocs/internal/apperror"
)

const defaultAPIBase = "https://api.github.com"

// RawMediaType asks GitHub for the raw file content instead of the JSON
// wrapper. Used for README and manifest fetches.
const RawMediaType = "application/vnd.github.v3.raw"

// Client issues authenticated requests against the GitHub REST API.
type Client struct {
	apiBase string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithAPIBase points the client at a different API host (tests, GitHub
// Enterprise).
func WithAPIBase(base string) Option {
	return func(c *Client) {
		c.apiBase = strings.TrimRight(base, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates a GitHub API client. The default HTTP client carries the
// given timeout; outbound calls also respect the request context.
func NewClient(timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		apiBase: defaultAPIBase,
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs GET <apiBase><path> with "Authorization: Bearer <token>" and
// any caller-supplied header overrides, and returns the body bytes.
//
// On a non-2xx response the returned error wraps apperror.ErrUpstream and
// carries GitHub's status code plus a message derived from the body, so the
// HTTP layer can forward both.
func (c *Client) Get(ctx context.Context, token, path string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+path, nil)
	if err != nil {
		return nil, fmt.Errorf("github: creating request for %s: %w", path, err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	for key, values := range header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("github: reading response for %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperror.Upstream(resp.StatusCode, upstreamMessage(resp.StatusCode, body))
	}

	return body, nil
}

// GetRaw fetches path with the raw media type, returning file content as a
// string. Used for README and package manifest text.
func (c *Client) GetRaw(ctx context.Context, token, path string) (string, error) {
	header := http.Header{}
	header.Set("Accept", RawMediaType)
	body, err := c.Get(ctx, token, path, header)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// upstreamMessage derives a short, client-safe message from a GitHub error
// body. GitHub error bodies look like {"message": "...", ...}; anything else
// falls back to the standard status text.
func upstreamMessage(status int, body []byte) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("GitHub API returned status %d", status)
}
