// Package scheduler refreshes a watchlist of tickers on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/guttosm/tickerlens/internal/logger"
	"github.com/guttosm/tickerlens/internal/service"
)

const defaultParallel = 4

// Refresher re-aggregates one ticker, bypassing the snapshot cache.
type Refresher interface {
	Search(ctx context.Context, ticker string, refresh bool) (*service.QuoteResult, error)
}

// Scheduler runs watchlist refreshes on a cron spec.
type Scheduler struct {
	Cron      *cron.Cron
	Refresher Refresher
	Watchlist []string
	Parallel  int
	// Timeout bounds one whole run; zero means no bound.
	Timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	runs   atomic.Int64
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct{ l zerolog.Logger }

func (c cronLogger) Info(msg string, kv ...any) {
	c.l.Debug().Fields(kv).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, kv ...any) {
	c.l.Error().Err(err).Fields(kv).Msg(msg)
}

// New creates a Scheduler for watchlist; tickers are normalized and
// de-duplicated.
func New(r Refresher, watchlist []string, parallel int) *Scheduler {
	cl := cronLogger{l: *logger.For("scheduler")}
	seen := make(map[string]struct{}, len(watchlist))
	var tickers []string
	for _, t := range watchlist {
		t = service.NormalizeTicker(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tickers = append(tickers, t)
	}
	if parallel <= 0 {
		parallel = defaultParallel
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		Cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		Refresher: r,
		Watchlist: tickers,
		Parallel:  parallel,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Register schedules the watchlist refresh on spec (standard 5-field cron).
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, func() { _ = s.RunOnce(s.ctx) }); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.For("scheduler").Info().Int("tickers", len(s.Watchlist)).Msg("scheduler started")
}

// Stop cancels a run in progress and waits for it to return, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	select {
	case <-s.Cron.Stop().Done():
	case <-ctx.Done():
	}
	logger.For("scheduler").Info().Msg("scheduler stopped")
}

// Runs reports how many refresh runs have completed.
func (s *Scheduler) Runs() int64 { return s.runs.Load() }

// RunOnce refreshes every watchlist ticker with bounded parallelism.
// Failures of single tickers are logged; the returned count is how many failed.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	log := logger.For("scheduler")
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	start := time.Now()

	var failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(s.Parallel)
	for _, t := range s.Watchlist {
		g.Go(func() error {
			if ctx.Err() != nil {
				failed.Add(1)
				return nil
			}
			if _, err := s.Refresher.Search(ctx, t, true); err != nil {
				failed.Add(1)
				log.Warn().Err(err).Str("ticker", t).Msg("refresh failed")
			}
			return nil
		})
	}
	_ = g.Wait()
	s.runs.Add(1)

	n := int(failed.Load())
	log.Info().Int("tickers", len(s.Watchlist)).Int("failed", n).Dur("elapsed", time.Since(start)).Msg("watchlist refreshed")
	return n
}
