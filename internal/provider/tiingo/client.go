// Package tiingo fetches company metadata, IEX quotes and daily prices from
// the Tiingo REST API.
package tiingo

import (
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/guttosm/tickerlens/internal/provider"
)

// DefaultBaseURL is the public Tiingo API endpoint.
const DefaultBaseURL = "https://api.tiingo.com"

// ErrMissingToken is returned when no API token is configured.
var ErrMissingToken = errors.New("tiingo: api token is required")

// Client is a client for the Tiingo API.
type Client struct {
	// baseURL is the base URL for the API.
	baseURL string
	// getter performs the requests.
	getter provider.Getter
	// now is the clock used to date history requests.
	now func() time.Time
}

// Option is a configuration option for the Tiingo client.
type Option func(*Client)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient provider.HTTPClient) Option {
	return func(c *Client) {
		c.getter.Client = httpClient
	}
}

// WithMaxRetries sets how many times a failed request is retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.getter.MaxRetries = n
	}
}

// WithBackOff sets the retry schedule.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(c *Client) {
		c.getter.NewBackOff = newBackOff
	}
}

// WithClock sets the clock used for date ranges.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new Tiingo API client.
func NewClient(token string, options ...Option) (*Client, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	c := &Client{
		baseURL: DefaultBaseURL,
		getter: provider.Getter{
			Client:     http.DefaultClient,
			Header:     http.Header{},
			MaxRetries: 2,
		},
		now: time.Now,
	}
	c.getter.Header.Set("Authorization", "Token "+token)
	c.getter.Header.Set("Content-Type", "application/json")
	for _, option := range options {
		option(c)
	}
	return c, nil
}
