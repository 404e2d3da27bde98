package tiingo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/guttosm/tickerlens/internal/domain/models"
	"github.com/guttosm/tickerlens/internal/logger"
	"github.com/guttosm/tickerlens/internal/normalize"
	"github.com/guttosm/tickerlens/internal/provider"
)

// Meta returns the company metadata feed.
func (c *Client) Meta() provider.Source { return metaSource{c} }

// IEX returns the real-time quote feed.
func (c *Client) IEX() provider.Source { return iexSource{c} }

// Prices returns the end-of-day history feed.
func (c *Client) Prices() provider.SeriesSource { return pricesSource{c} }

type metaSource struct{ c *Client }

func (metaSource) ID() normalize.ProviderID { return normalize.TiingoMeta }

func (s metaSource) Fetch(ctx context.Context, ticker string) (normalize.Payload, error) {
	var body normalize.Payload
	u := fmt.Sprintf("%s/tiingo/daily/%s", s.c.baseURL, url.PathEscape(ticker))
	if err := s.c.getter.GetJSON(ctx, u, &body); err != nil {
		return nil, fmt.Errorf("tiingo meta %s: %w", ticker, err)
	}
	return body, nil
}

type iexSource struct{ c *Client }

func (iexSource) ID() normalize.ProviderID { return normalize.TiingoIEX }

// Fetch returns the first element of the IEX list response.
func (s iexSource) Fetch(ctx context.Context, ticker string) (normalize.Payload, error) {
	var body []normalize.Payload
	u := fmt.Sprintf("%s/iex/%s", s.c.baseURL, url.PathEscape(ticker))
	if err := s.c.getter.GetJSON(ctx, u, &body); err != nil {
		return nil, fmt.Errorf("tiingo iex %s: %w", ticker, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("tiingo iex %s: %w", ticker, provider.ErrNotFound)
	}
	return body[0], nil
}

type pricesSource struct{ c *Client }

func (pricesSource) ID() normalize.ProviderID { return normalize.TiingoPrices }

func (s pricesSource) Series(ctx context.Context, symbol string, start time.Time) (models.PriceSeries, error) {
	q := url.Values{}
	q.Set("startDate", start.UTC().Format("2006-01-02"))
	q.Set("endDate", s.c.now().UTC().Format("2006-01-02"))
	q.Set("resampleFreq", "daily")

	var rows []normalize.Payload
	u := fmt.Sprintf("%s/tiingo/daily/%s/prices?%s", s.c.baseURL, url.PathEscape(symbol), q.Encode())
	if err := s.c.getter.GetJSON(ctx, u, &rows); err != nil {
		return nil, fmt.Errorf("tiingo prices %s: %w", symbol, err)
	}

	series, failures, err := normalize.NormalizeBars(rows, normalize.TiingoPrices)
	if err != nil {
		return nil, err
	}
	if len(failures) > 0 {
		log := logger.For("tiingo")
		log.Debug().Str("symbol", symbol).Int("dropped", len(failures)).Msg("history rows skipped")
	}
	return series, nil
}
