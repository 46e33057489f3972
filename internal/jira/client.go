package jira

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const defaultTimeout = 30 * time.Second

// Client performs authenticated GET requests against the Jira REST API.
type Client struct {
	login      string
	password   string
	httpClient *http.Client
	limiter    *rate.Limiter
	observer   Observer
}

type ClientOption func(*Client)

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit caps the request rate to rps requests per second.
// A non-positive rps leaves the client unlimited.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps > 0 {
			burst := int(rps)
			if burst < 1 {
				burst = 1
			}
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

func WithObserver(o Observer) ClientOption {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func NewClient(login, password string, opts ...ClientOption) *Client {
	c := &Client{
		login:      login,
		password:   password,
		httpClient: &http.Client{Timeout: defaultTimeout},
		observer:   NoopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Getter = (*Client)(nil)

// Get fetches url and returns the status code and full body. A non-2xx
// status is not an error at this level.
func (c *Client) Get(ctx context.Context, url string) (int, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	start := time.Now()
	status, body, err := c.do(ctx, url)
	c.observer.OnRequest(RequestEvent{
		URL:        url,
		StatusCode: status,
		Latency:    time.Since(start),
		Err:        err,
	})
	return status, body, err
}

func (c *Client) do(ctx context.Context, url string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(c.login, c.password)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, body, nil
}
