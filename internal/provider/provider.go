// Package provider defines how raw market data is fetched from upstream
// feeds, and the retrying JSON GET shared by the feed clients.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/guttosm/tickerlens/internal/domain/models"
	"github.com/guttosm/tickerlens/internal/logger"
	"github.com/guttosm/tickerlens/internal/normalize"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -destination=mocks/mock_http_client.go -package=mocks . HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Source fetches the raw payload one feed publishes for a ticker.
type Source interface {
	ID() normalize.ProviderID
	Fetch(ctx context.Context, ticker string) (normalize.Payload, error)
}

// SeriesSource returns the daily price history of a symbol from start
// (inclusive) to the latest available bar.
type SeriesSource interface {
	ID() normalize.ProviderID
	Series(ctx context.Context, symbol string, start time.Time) (models.PriceSeries, error)
}

var (
	ErrNotFound     = errors.New("provider: symbol not found")
	ErrUnauthorized = errors.New("provider: unauthorized")
	ErrRateLimited  = errors.New("provider: rate limited")
)

// StatusError is an unexpected HTTP status from a feed.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status code: %d", e.Code)
	}
	return fmt.Sprintf("unexpected status code: %d: %s", e.Code, e.Body)
}

// Getter performs GET requests that decode a JSON body, retrying transport
// errors, 429 and 5xx responses with exponential backoff.
type Getter struct {
	Client     HTTPClient
	Header     http.Header
	MaxRetries int
	// NewBackOff overrides the retry schedule; nil means exponential.
	NewBackOff func() backoff.BackOff
}

// GetJSON requests url and decodes the response body into out.
func (g *Getter) GetJSON(ctx context.Context, url string, out any) error {
	log := logger.For("provider")

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		for k, vs := range g.Header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		res, err := g.client().Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("performing request: %w", err)
		}
		defer res.Body.Close()

		switch {
		case res.StatusCode == http.StatusOK:
		case res.StatusCode == http.StatusNotFound:
			return backoff.Permanent(ErrNotFound)
		case res.StatusCode == http.StatusUnauthorized, res.StatusCode == http.StatusForbidden:
			return backoff.Permanent(ErrUnauthorized)
		case res.StatusCode == http.StatusTooManyRequests:
			return ErrRateLimited
		case res.StatusCode >= 500:
			return &StatusError{Code: res.StatusCode, Body: snippet(res.Body)}
		default:
			return backoff.Permanent(&StatusError{Code: res.StatusCode, Body: snippet(res.Body)})
		}

		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decoding response: %w", err))
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("url", redact(url)).Dur("retry_in", wait).Msg("provider request failed")
	}
	return backoff.RetryNotify(op, g.policy(ctx), notify)
}

func (g *Getter) client() HTTPClient {
	if g.Client == nil {
		return http.DefaultClient
	}
	return g.Client
}

func (g *Getter) policy(ctx context.Context) backoff.BackOff {
	var b backoff.BackOff
	if g.NewBackOff != nil {
		b = g.NewBackOff()
	} else {
		b = backoff.NewExponentialBackOff()
	}
	retries := g.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

func snippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return string(b)
}
