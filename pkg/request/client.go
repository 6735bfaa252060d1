package request

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wikitextifier/pkg/config"
	"wikitextifier/pkg/tracker"
	"wikitextifier/pkg/version"
)

// Client performs HTTP GET requests with retries, exponential backoff and
// per-provider pacing. Callers control concurrency; the client itself does
// not serialize requests.
type Client struct {
	httpClient *http.Client
	tracker    *tracker.Tracker
	backoff    *ProviderBackoff

	userAgent string
	retries   int
	baseDelay time.Duration
}

// New creates a new Client.
func New(cfg config.RequestConfig, t *tracker.Tracker) *Client {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = fmt.Sprintf("WikidataTextifier/%s", version.Version)
	}
	retries := cfg.Retries
	if retries <= 0 {
		retries = 2
	}
	baseDelay := time.Duration(cfg.BaseDelay)
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}

	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(cfg.Timeout)},
		tracker:    t,
		backoff:    NewProviderBackoff(baseDelay, time.Duration(cfg.MaxDelay)),
		userAgent:  userAgent,
		retries:    retries,
		baseDelay:  baseDelay,
	}
}

// Get performs a GET request against u.
func (c *Client) Get(ctx context.Context, u string) ([]byte, error) {
	return c.GetWithHeaders(ctx, u, nil)
}

// GetWithHeaders performs a GET request with custom headers.
func (c *Client) GetWithHeaders(ctx context.Context, u string, headers map[string]string) ([]byte, error) {
	parsedURL, err := url.Parse(u)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	provider := normalizeProvider(parsedURL.Host)

	if err := c.backoff.Wait(ctx, provider); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	uaSet := false
	for k, v := range headers {
		req.Header.Set(k, v)
		if http.CanonicalHeaderKey(k) == "User-Agent" {
			uaSet = true
		}
	}
	if !uaSet {
		req.Header.Set("User-Agent", c.userAgent)
	}

	body, err := c.executeWithBackoff(req)
	if err != nil {
		c.tracker.TrackAPIFailure(provider)
		c.backoff.RecordFailure(provider)
		return nil, err
	}

	c.tracker.TrackAPISuccess(provider)
	c.backoff.RecordSuccess(provider)
	return body, nil
}

func normalizeProvider(host string) string {
	// Group all wikidata subdomains into one provider for pacing
	if strings.HasSuffix(host, ".wikidata.org") || host == "wikidata.org" {
		return "wikidata"
	}
	return host
}

// executeWithBackoff attempts the request with exponential backoff on
// retryable errors (network failures, 429, 5xx).
func (c *Client) executeWithBackoff(req *http.Request) ([]byte, error) {
	maxAttempts := c.retries + 1

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if req.Context().Err() != nil {
			return nil, req.Context().Err()
		}

		slog.Debug("Network Request", "host", req.URL.Host, "path", req.URL.Path, "attempt", attempt+1)
		resp, err := c.httpClient.Do(req)

		if err != nil {
			// Check if the error is a context cancellation from OUR side
			if req.Context().Err() != nil {
				return nil, req.Context().Err()
			}

			slog.Warn("Request failed, retrying", "url", req.URL, "attempt", attempt+1, "error", err)
			if err := c.sleepBackoff(req.Context(), attempt); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode < 600) {
			resp.Body.Close()
			slog.Warn("API Backoff", "status", resp.StatusCode, "url", req.URL, "attempt", attempt+1)
			if err := c.sleepBackoff(req.Context(), attempt); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("api error: status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read error: %w", err)
		}
		return body, nil
	}

	return nil, fmt.Errorf("max retries exceeded")
}

func (c *Client) sleepBackoff(ctx context.Context, attempt int) error {
	sleepDur := time.Duration(math.Pow(2, float64(attempt))) * c.baseDelay
	select {
	case <-time.After(sleepDur):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
