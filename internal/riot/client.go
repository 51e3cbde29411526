// Package riot is a minimal Riot Games API client covering the three
// endpoints the pipeline needs: account lookup, match-ID listing and
// match detail. Calls are region-scoped and rate limited.
package riot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// DefaultRegionalBaseURL is the regional routing host for the Americas.
const DefaultRegionalBaseURL = "https://americas.api.riotgames.com"

// MaxMatchIDs is the largest count the match-v5 ID listing accepts per call.
const MaxMatchIDs = 100

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type Option func(*Client)

// WithBaseURL overrides the regional routing host (tests, other regions).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithRateLimit overrides the default request rate.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultRegionalBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		// Development keys allow 20 req/s with short bursts.
		limiter: rate.NewLimiter(rate.Limit(20), 20),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs a rate-limited GET and decodes the JSON response into result.
func (c *Client) get(ctx context.Context, url string, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Riot-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// APIError is a non-200 provider response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("riot api: status %d: %s", e.Status, e.Body)
}
