package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tickerlens/config"
	"github.com/guttosm/tickerlens/internal/api"
	"github.com/guttosm/tickerlens/internal/logger"
	"github.com/guttosm/tickerlens/internal/scheduler"
	"github.com/guttosm/tickerlens/internal/service"
	"github.com/guttosm/tickerlens/internal/storage"
)

// schedulerStopTimeout bounds how long cleanup waits for a refresh in flight.
const schedulerStopTimeout = 10 * time.Second

// Services bundles the business layer built on top of an open database.
type Services struct {
	Quotes    service.QuoteService
	Analytics service.AnalyticsService
}

// NewServices builds repositories, upstream feeds and services from cfg.
func NewServices(cfg config.Config, db *sql.DB) Services {
	prices := storage.NewPriceRepository(db)
	snapshots := storage.NewSnapshotRepository(db)
	f := buildFeeds(cfg, prices)

	return Services{
		Quotes: service.NewQuoteService(snapshots, service.QuoteOptions{
			Sources:  f.sources,
			History:  f.history,
			Priority: priority(cfg.Providers.Priority),
			TTL:      cfg.Cache.TTL,
		}),
		Analytics: service.NewAnalyticsService(f.history, cfg.Providers.Benchmark, nil),
	}
}

// startScheduler registers and starts the watchlist refresh when configured.
// It returns nil when the schedule is disabled.
func startScheduler(cfg config.SchedulerConfig, quotes service.QuoteService) (*scheduler.Scheduler, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	s := scheduler.New(quotes, cfg.Watchlist, cfg.Parallel)
	s.Timeout = cfg.Timeout
	if err := s.Register(cfg.Cron); err != nil {
		return nil, err
	}
	s.Start()
	return s, nil
}

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Connects to PostgreSQL using InitPostgres().
//   - Builds repositories, upstream feeds and services via NewServices().
//   - Configures the Gin router with all API routes.
//   - Registers health and readiness probes.
//   - Starts the watchlist refresh scheduler when REFRESH_CRON is set.
//   - Provides a cleanup function that stops the scheduler and closes the DB.
//
// Returns:
//   - *gin.Engine: the configured Gin HTTP router.
//   - func(): cleanup function to be executed on shutdown.
//   - error: any initialization error that occurred.
func InitializeApp() (*gin.Engine, func(), error) {
	// Load global configuration
	cfg := config.AppConfig

	// Connect to PostgreSQL
	// indirection for unit testing
	db, err := postgresOpener(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	svc := NewServices(cfg, db)

	// Initialize HTTP handler layer (business logic to HTTP mapping)
	handler := api.NewHandler(svc.Quotes, svc.Analytics)

	// Setup Gin router with routes
	router := api.NewRouter(handler, api.RouterOptions{
		RequestTimeout: cfg.Server.RequestTimeout,
		RateLimit:      cfg.Server.RateLimit,
	})

	// Register health and readiness probes
	healthHandler := api.NewHealthHandler(db.PingContext)
	healthHandler.Register(router)

	sched, err := startScheduler(cfg.Scheduler, svc.Quotes)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	// Cleanup resources on shutdown
	cleanup := func() {
		if sched != nil {
			ctx, cancel := context.WithTimeout(context.Background(), schedulerStopTimeout)
			sched.Stop(ctx)
			cancel()
		}
		if err := db.Close(); err != nil {
			logger.For("app").Warn().Err(err).Msg("closing database")
		}
	}

	return router, cleanup, nil
}
