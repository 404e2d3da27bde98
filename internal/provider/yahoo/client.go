// Package yahoo fetches quote summaries and daily charts from the Yahoo
// Finance query API.
package yahoo

import (
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/guttosm/tickerlens/internal/provider"
)

// DefaultBaseURL is the public Yahoo Finance query endpoint.
const DefaultBaseURL = "https://query2.finance.yahoo.com"

// summaryModules are the quoteSummary modules the mapping table reads.
const summaryModules = "price,assetProfile,summaryDetail,defaultKeyStatistics,financialData"

// Client is a client for the Yahoo Finance API.
type Client struct {
	baseURL string
	getter  provider.Getter
	now     func() time.Time
}

// Option is a configuration option for the Yahoo client.
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

// NewClient creates a new Yahoo Finance client.
func NewClient(options ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		getter: provider.Getter{
			Client:     http.DefaultClient,
			Header:     http.Header{},
			MaxRetries: 2,
		},
		now: time.Now,
	}
	c.getter.Header.Set("User-Agent", "tickerlens/1.0")
	c.getter.Header.Set("Accept", "application/json")
	for _, option := range options {
		option(c)
	}
	return c
}
