package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/tickerlens/internal/analytics"
	"github.com/guttosm/tickerlens/internal/calendar"
	"github.com/guttosm/tickerlens/internal/domain/models"
	"github.com/guttosm/tickerlens/internal/logger"
	"github.com/guttosm/tickerlens/internal/normalize"
	"github.com/guttosm/tickerlens/internal/provider"
	"github.com/guttosm/tickerlens/internal/timeseries"
)

// DefaultBenchmark is the market proxy used when none is configured.
const DefaultBenchmark = "SPY"

// ReturnsResult holds the daily returns of a ticker over a window.
type ReturnsResult struct {
	Ticker  string
	Window  string
	Source  normalize.ProviderID
	Returns []models.DailyReturn
}

// AnalyticsResult adds risk metrics against a benchmark. Risk is nil and
// RiskErr set when they could not be computed.
type AnalyticsResult struct {
	ReturnsResult
	Benchmark string
	Risk      *models.RiskMetrics
	RiskErr   error
}

// AnalyticsService computes return and risk figures from price history.
type AnalyticsService interface {
	Returns(ctx context.Context, ticker, window string) (*ReturnsResult, error)
	Analyze(ctx context.Context, ticker, window, benchmark string) (*AnalyticsResult, error)
}

type analyticsService struct {
	history   *provider.Fallback
	benchmark string
	now       func() time.Time
}

// NewAnalyticsService builds an AnalyticsService reading history from
// history. An empty benchmark means DefaultBenchmark.
func NewAnalyticsService(history *provider.Fallback, benchmark string, now func() time.Time) AnalyticsService {
	if benchmark == "" {
		benchmark = DefaultBenchmark
	}
	if now == nil {
		now = time.Now
	}
	return &analyticsService{history: history, benchmark: NormalizeTicker(benchmark), now: now}
}

// span resolves a window name into its canonical name, the number of
// returns it covers and the first day to fetch.
func (s *analyticsService) span(window string) (string, int, time.Time) {
	name := timeseries.WindowName(window)
	days := timeseries.WindowDays(name)
	return name, days, calendar.SpanStart(days, s.now())
}

func (s *analyticsService) fetch(ctx context.Context, symbol string, start time.Time) (models.PriceSeries, normalize.ProviderID, error) {
	series, id, err := s.history.SeriesFrom(ctx, symbol, start)
	if err != nil {
		if errors.Is(err, provider.ErrNotFound) {
			return nil, "", fmt.Errorf("%w: %s", ErrNotFound, symbol)
		}
		return nil, "", fmt.Errorf("history for %s: %w", symbol, err)
	}
	return series, id, nil
}

// Returns computes the daily returns of ticker over window.
func (s *analyticsService) Returns(ctx context.Context, ticker, window string) (*ReturnsResult, error) {
	ticker = NormalizeTicker(ticker)
	if ticker == "" {
		return nil, ErrTickerRequired
	}
	name, days, start := s.span(window)

	series, id, err := s.fetch(ctx, ticker, start)
	if err != nil {
		return nil, err
	}
	series = models.NewPriceSeries(series)
	if len(series) > days {
		series = series[len(series)-days:]
	}
	return &ReturnsResult{
		Ticker:  ticker,
		Window:  name,
		Source:  id,
		Returns: analytics.DailyReturns(series),
	}, nil
}

// Analyze computes returns and, against benchmark, beta, volatilities and
// the risk class. Asset and benchmark history are fetched concurrently.
//
// Returns:
//   - ErrTickerRequired / ErrNotFound for the asset.
//   - a result with RiskErr set when the risk part fails; an unavailable
//     benchmark is reported that way too.
func (s *analyticsService) Analyze(ctx context.Context, ticker, window, benchmark string) (*AnalyticsResult, error) {
	ticker = NormalizeTicker(ticker)
	if ticker == "" {
		return nil, ErrTickerRequired
	}
	benchmark = NormalizeTicker(benchmark)
	if benchmark == "" {
		benchmark = s.benchmark
	}
	name, days, start := s.span(window)
	log := logger.For("analytics").With().Str("ticker", ticker).Str("benchmark", benchmark).Str("window", name).Logger()

	var (
		asset, bench models.PriceSeries
		assetID      normalize.ProviderID
		benchErr     error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		asset, assetID, err = s.fetch(gctx, ticker, start)
		return err
	})
	g.Go(func() error {
		bench, _, benchErr = s.fetch(gctx, benchmark, start)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if benchErr != nil {
		log.Warn().Err(benchErr).Msg("benchmark history unavailable")
	}

	rep, riskErr := analytics.Analyze(asset, bench, days)
	res := &AnalyticsResult{
		ReturnsResult: ReturnsResult{Ticker: ticker, Window: name, Source: assetID, Returns: rep.Returns},
		Benchmark:     benchmark,
		Risk:          rep.Risk,
		RiskErr:       riskErr,
	}
	if rep.Risk != nil {
		rep.Risk.Benchmark = benchmark
	}
	if riskErr != nil {
		log.Info().Err(riskErr).Int("asset_bars", len(asset)).Int("benchmark_bars", len(bench)).Msg("risk metrics unavailable")
	}
	return res, nil
}
