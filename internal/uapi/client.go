// Package uapi is a thin client for the Uapi lookup API (uapis.cn).
// Each call is a single GET with a bounded timeout; there are no retries
// and no caching.
package uapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the public Uapi endpoint.
const DefaultBaseURL = "https://uapis.cn"

// DefaultTimeout bounds a single lookup request.
const DefaultTimeout = 10 * time.Second

// Client abstracts the Uapi API methods used by the lookup handlers.
// Implemented by the real HTTP client; tests provide a mock.
type Client interface {
	Whois(ctx context.Context, domain string) (map[string]any, error)
	DNS(ctx context.Context, domain, recordType string) (map[string]any, error)
	Ping(ctx context.Context, host string) (map[string]any, error)
}

// realClient implements Client against the Uapi HTTP API.
type realClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the given base URL. An empty baseURL or
// zero timeout falls back to the defaults.
func NewClient(baseURL string, timeout time.Duration) Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &realClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *realClient) Whois(ctx context.Context, domain string) (map[string]any, error) {
	return c.get(ctx, "whois", url.Values{"domain": {domain}, "format": {"json"}})
}

func (c *realClient) DNS(ctx context.Context, domain, recordType string) (map[string]any, error) {
	if recordType == "" {
		recordType = "A"
	}
	return c.get(ctx, "dns", url.Values{"domain": {domain}, "type": {recordType}})
}

func (c *realClient) Ping(ctx context.Context, host string) (map[string]any, error) {
	return c.get(ctx, "ping", url.Values{"host": {host}})
}

// get performs one GET against /api/<path> and decodes the JSON object body.
func (c *realClient) get(ctx context.Context, path string, params url.Values) (map[string]any, error) {
	reqURL := fmt.Sprintf("%s/api/%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("uapi request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("uapi returned status %d for /api/%s", resp.StatusCode, path)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode uapi response: %w", err)
	}
	return result, nil
}
