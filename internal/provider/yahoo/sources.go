package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"github.com/guttosm/tickerlens/internal/domain/models"
	"github.com/guttosm/tickerlens/internal/logger"
	"github.com/guttosm/tickerlens/internal/normalize"
	"github.com/guttosm/tickerlens/internal/provider"
)

// Summary returns the fundamentals and quote feed.
func (c *Client) Summary() provider.Source { return summarySource{c} }

// Chart returns the daily history feed.
func (c *Client) Chart() provider.SeriesSource { return chartSource{c} }

type summarySource struct{ c *Client }

func (summarySource) ID() normalize.ProviderID { return normalize.YahooSummary }

func (s summarySource) Fetch(ctx context.Context, ticker string) (normalize.Payload, error) {
	q := url.Values{}
	q.Set("modules", summaryModules)

	var body normalize.Payload
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?%s", s.c.baseURL, url.PathEscape(ticker), q.Encode())
	if err := s.c.getter.GetJSON(ctx, u, &body); err != nil {
		return nil, fmt.Errorf("yahoo summary %s: %w", ticker, err)
	}
	if res, err := jsonpath.Get("$.quoteSummary.result", map[string]any(body)); err != nil || isEmpty(res) {
		return nil, fmt.Errorf("yahoo summary %s: %w", ticker, provider.ErrNotFound)
	}
	return body, nil
}

type chartSource struct{ c *Client }

func (chartSource) ID() normalize.ProviderID { return normalize.YahooChart }

// Series reshapes the columnar chart response into one row per timestamp
// before normalizing it.
func (s chartSource) Series(ctx context.Context, symbol string, start time.Time) (models.PriceSeries, error) {
	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("period1", strconv.FormatInt(start.UTC().Unix(), 10))
	q.Set("period2", strconv.FormatInt(s.c.now().UTC().Unix(), 10))
	q.Set("events", "div,split")

	var body normalize.Payload
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", s.c.baseURL, url.PathEscape(symbol), q.Encode())
	if err := s.c.getter.GetJSON(ctx, u, &body); err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}

	rows, err := chartRows(body)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	series, failures, err := normalize.NormalizeBars(rows, normalize.YahooChart)
	if err != nil {
		return nil, err
	}
	if len(failures) > 0 {
		log := logger.For("yahoo")
		log.Debug().Str("symbol", symbol).Int("dropped", len(failures)).Msg("history rows skipped")
	}
	return series, nil
}

var chartColumns = map[string]string{
	"open":     "$.chart.result[0].indicators.quote[0].open",
	"high":     "$.chart.result[0].indicators.quote[0].high",
	"low":      "$.chart.result[0].indicators.quote[0].low",
	"close":    "$.chart.result[0].indicators.quote[0].close",
	"volume":   "$.chart.result[0].indicators.quote[0].volume",
	"adjclose": "$.chart.result[0].indicators.adjclose[0].adjclose",
}

func chartRows(body normalize.Payload) ([]normalize.Payload, error) {
	v, err := jsonpath.Get("$.chart.result[0].timestamp", map[string]any(body))
	if err != nil {
		return nil, provider.ErrNotFound
	}
	stamps, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("timestamp column has type %T", v)
	}

	rows := make([]normalize.Payload, len(stamps))
	for i, ts := range stamps {
		rows[i] = normalize.Payload{"timestamp": ts}
	}
	for name, path := range chartColumns {
		col, err := jsonpath.Get(path, map[string]any(body))
		if err != nil {
			continue
		}
		vals, ok := col.([]any)
		if !ok {
			continue
		}
		for i := 0; i < len(vals) && i < len(rows); i++ {
			rows[i][name] = vals[i]
		}
	}
	return rows, nil
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case []any:
		return len(x) == 0
	}
	return false
}
