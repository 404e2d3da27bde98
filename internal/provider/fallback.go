package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/guttosm/tickerlens/internal/domain/models"
	"github.com/guttosm/tickerlens/internal/logger"
	"github.com/guttosm/tickerlens/internal/normalize"
)

// coverageSlack is how far after start the first bar may fall while the
// series still counts as covering the range (weekends, holidays, listing lag).
const coverageSlack = 7 * 24 * time.Hour

// Fallback asks each source in order and returns the first series that
// covers start. When none does, the longest non-empty series is returned.
type Fallback struct {
	Sources []SeriesSource
}

// NewFallback chains srcs in priority order. Nil sources are skipped.
func NewFallback(srcs ...SeriesSource) *Fallback {
	f := &Fallback{}
	for _, s := range srcs {
		if s != nil {
			f.Sources = append(f.Sources, s)
		}
	}
	return f
}

func (f *Fallback) ID() normalize.ProviderID { return normalize.History }

// Series implements SeriesSource.
func (f *Fallback) Series(ctx context.Context, symbol string, start time.Time) (models.PriceSeries, error) {
	s, _, err := f.SeriesFrom(ctx, symbol, start)
	return s, err
}

// SeriesFrom is Series that also reports which source supplied the bars.
//
// Errors:
//   - ErrNotFound when every source came back empty or not found.
//   - the joined source errors when at least one failed for another reason
//     and none returned bars.
func (f *Fallback) SeriesFrom(ctx context.Context, symbol string, start time.Time) (models.PriceSeries, normalize.ProviderID, error) {
	log := logger.For("history")
	var (
		best   models.PriceSeries
		bestID normalize.ProviderID
		errs   []error
	)

	for _, src := range f.Sources {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		s, err := src.Series(ctx, symbol, start)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				errs = append(errs, fmt.Errorf("%s: %w", src.ID(), err))
			}
			log.Warn().Err(err).Str("source", string(src.ID())).Str("symbol", symbol).Msg("history source failed")
			continue
		}
		if covers(s, start) {
			return s, src.ID(), nil
		}
		log.Debug().Str("source", string(src.ID())).Str("symbol", symbol).Int("bars", len(s)).Msg("history source does not cover range")
		if len(s) > len(best) {
			best, bestID = s, src.ID()
		}
	}

	if len(best) > 0 {
		return best, bestID, nil
	}
	if len(errs) > 0 {
		return nil, "", errors.Join(errs...)
	}
	return nil, "", fmt.Errorf("%w: no history for %s", ErrNotFound, symbol)
}

func covers(s models.PriceSeries, start time.Time) bool {
	if len(s) == 0 {
		return false
	}
	return !s[0].Date.After(models.Day(start).Add(coverageSlack))
}
