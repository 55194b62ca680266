// internal/common/http/client.go
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// maxBodyBytes caps how much of a provider response is read into memory.
const maxBodyBytes = 4 << 20

// ClientConfig configures a provider HTTP client.
type ClientConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	Burst     int
	UserAgent string
}

// Client is a rate-limited HTTP client bound to one upstream. It performs a
// single attempt per call; retry policy belongs to the caller.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewRateLimitedClient creates a client from config.
func NewRateLimitedClient(config ClientConfig) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "people-search/1.0"
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if config.RateLimit > 0 {
		burst := config.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), burst)
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    limiter,
	}
}

// Request is a relative GET against the client's base URL. Every provider
// carries its credentials in the query string.
type Request struct {
	Path  string
	Query url.Values
}

// Response is a fully read response.
type Response struct {
	StatusCode int
	Body       []byte
}

// IsSuccess returns true for 2xx responses.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return c.httpClient.Do(req.WithContext(ctx))
}

// Execute waits for the limiter, sends req and reads the body. Non-2xx
// responses are returned without error; callers decide what they mean.
func (c *Client) Execute(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(req.Path, req.Query), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("User-Agent", c.config.UserAgent)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.DoWithContext(ctx, httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// URL joins path and query onto the base URL.
func (c *Client) URL(path string, query url.Values) string {
	full := c.config.BaseURL
	if path != "" {
		full = strings.TrimSuffix(full, "/") + "/" + strings.TrimPrefix(path, "/")
	}
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	return full
}
