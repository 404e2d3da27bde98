package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/guregu/null/v6"
	"golang.org/x/sync/errgroup"

	"github.com/guttosm/tickerlens/internal/analytics"
	"github.com/guttosm/tickerlens/internal/calendar"
	"github.com/guttosm/tickerlens/internal/domain/models"
	"github.com/guttosm/tickerlens/internal/logger"
	"github.com/guttosm/tickerlens/internal/merge"
	"github.com/guttosm/tickerlens/internal/normalize"
	"github.com/guttosm/tickerlens/internal/provider"
	"github.com/guttosm/tickerlens/internal/storage"
)

var (
	// ErrTickerRequired is returned for an empty ticker.
	ErrTickerRequired = errors.New("ticker is required")
	// ErrNotFound is returned when no provider knows anything about a ticker.
	ErrNotFound = errors.New("no record found")
)

const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100

	// quoteLookback is how many trading days of bars back the derived quote.
	quoteLookback = 5
)

// QuoteResult is a merged snapshot and where it came from.
type QuoteResult struct {
	Entry models.CacheEntry
	// Cached is true when Entry was served from the snapshot store.
	Cached     bool
	Provenance map[string]normalize.ProviderID
}

// QuoteService aggregates company and quote data for a ticker.
type QuoteService interface {
	Search(ctx context.Context, ticker string, refresh bool) (*QuoteResult, error)
	History(ctx context.Context, limit int) ([]models.SearchHistoryItem, error)
}

// QuoteOptions configures NewQuoteService.
type QuoteOptions struct {
	// Sources are the live feeds queried for every fresh aggregation.
	Sources []provider.Source
	// History, when set, backs a quote derived from the last two bars.
	History provider.SeriesSource
	// Priority orders provider records before merging.
	Priority []normalize.ProviderID
	// TTL is how long a stored snapshot is served without refetching.
	TTL time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

type quoteService struct {
	snapshots storage.SnapshotRepository
	opts      QuoteOptions
}

// NewQuoteService builds a QuoteService over the snapshot store.
func NewQuoteService(snapshots storage.SnapshotRepository, opts QuoteOptions) QuoteService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &quoteService{snapshots: snapshots, opts: opts}
}

// NormalizeTicker trims and upper-cases a ticker.
func NormalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}

// Search returns the merged record for ticker.
//
// Behavior:
//   - Serves the latest stored snapshot when younger than TTL unless refresh is set.
//   - Otherwise queries every source concurrently; a failing source is logged and left out.
//   - Merges the records in priority order and derives change fields.
//   - Appends the result to the snapshot store.
//
// Returns:
//   - ErrTickerRequired for an empty ticker.
//   - ErrNotFound when every provider came back empty; nothing is stored.
//   - a wrapped store error when reading or writing snapshots fails.
func (s *quoteService) Search(ctx context.Context, ticker string, refresh bool) (*QuoteResult, error) {
	ticker = NormalizeTicker(ticker)
	if ticker == "" {
		return nil, ErrTickerRequired
	}
	log := logger.For("quote").With().Str("ticker", ticker).Logger()

	if !refresh && s.opts.TTL > 0 {
		latest, err := s.snapshots.LatestSnapshot(ctx, ticker)
		if err != nil {
			return nil, fmt.Errorf("load latest snapshot: %w", err)
		}
		if latest != nil && latest.Fresh(s.opts.Now(), s.opts.TTL) {
			log.Debug().Time("retrieved_at", latest.RetrievedAt).Msg("serving cached snapshot")
			return &QuoteResult{Entry: *latest, Cached: true}, nil
		}
	}

	records := s.collect(ctx, ticker)
	res := merge.Merge(merge.Order(records, s.opts.Priority))
	if res.Empty() {
		log.Info().Int("records", len(records)).Msg("no provider knows ticker")
		return nil, ErrNotFound
	}

	res.Profile.Ticker = ticker
	res.Quote.Ticker = ticker
	change, pct := analytics.Change(res.Quote.Last, res.Quote.PrevClose)
	res.Quote.Change = change
	res.Quote.ChangePercent = pct

	entry := models.CacheEntry{
		Ticker:      ticker,
		Profile:     res.Profile,
		Quote:       res.Quote,
		RetrievedAt: s.opts.Now().UTC(),
	}
	id, err := s.snapshots.InsertSnapshot(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("store snapshot: %w", err)
	}
	entry.ID = id

	log.Info().Int("records", len(records)).Int("fields", len(res.Provenance)).Msg("aggregated")
	return &QuoteResult{Entry: entry, Provenance: res.Provenance}, nil
}

// collect fetches and normalizes every source concurrently. Records are
// returned in source order; absent sources leave no record.
func (s *quoteService) collect(ctx context.Context, ticker string) []normalize.Record {
	log := logger.For("quote").With().Str("ticker", ticker).Logger()
	slots := make([]*normalize.Record, len(s.opts.Sources)+1)

	var g errgroup.Group
	for i, src := range s.opts.Sources {
		g.Go(func() error {
			payload, err := src.Fetch(ctx, ticker)
			if err != nil {
				ev := log.Warn()
				if errors.Is(err, provider.ErrNotFound) {
					ev = log.Debug()
				}
				ev.Err(err).Str("provider", string(src.ID())).Msg("provider fetch failed")
				return nil
			}
			rec, err := normalize.Normalize(payload, src.ID())
			if err != nil {
				log.Error().Err(err).Str("provider", string(src.ID())).Msg("normalize failed")
				return nil
			}
			for _, f := range rec.Failures {
				log.Debug().Str("provider", string(f.Provider)).Str("field", f.Field).Interface("raw", f.Raw).Msg("coercion failure")
			}
			slots[i] = &rec
			return nil
		})
	}
	if s.opts.History != nil {
		g.Go(func() error {
			rec, ok := s.derived(ctx, ticker)
			if ok {
				slots[len(slots)-1] = &rec
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]normalize.Record, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// derived builds a quote from the latest bars of the history source. Only
// the closes and the bar date are taken: bar open/high/low/volume may be
// fillers for values the feed never sent.
func (s *quoteService) derived(ctx context.Context, ticker string) (normalize.Record, bool) {
	start := calendar.SpanStart(quoteLookback, s.opts.Now())
	series, err := s.opts.History.Series(ctx, ticker, start)
	if err != nil || len(series) == 0 {
		if err != nil {
			logger.For("quote").Debug().Err(err).Str("ticker", ticker).Msg("no history for derived quote")
		}
		return normalize.Record{}, false
	}
	series = models.NewPriceSeries(series)
	last, prev := analytics.PrevClose(series)

	rec := normalize.Record{Provider: normalize.History}
	rec.Quote.Ticker = ticker
	rec.Quote.Last = last
	rec.Quote.PrevClose = prev
	rec.Quote.Timestamp = null.TimeFrom(series[len(series)-1].Date)
	return rec, true
}

// History returns the most recent searches, newest first.
// limit <= 0 means DefaultHistoryLimit; it is capped at MaxHistoryLimit.
func (s *quoteService) History(ctx context.Context, limit int) ([]models.SearchHistoryItem, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	items, err := s.snapshots.RecentSearches(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent searches: %w", err)
	}
	return items, nil
}
