package main

//
//  @title           tickerlens API
//  @version         1.0
//  @description     Stock profile aggregation, daily returns and risk analytics.
//  @termsOfService  https://github.com/guttosm/tickerlens
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/tickerlens
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        stocks
//  @tag.description Ticker search and search history
//
//  @tag.name        analytics
//  @tag.description Daily returns, beta and volatility
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guttosm/tickerlens/config"
	_ "github.com/guttosm/tickerlens/docs" // swagger docs
	"github.com/guttosm/tickerlens/internal/app"
	"github.com/guttosm/tickerlens/internal/domain/dto"
	"github.com/guttosm/tickerlens/internal/domain/models"
	"github.com/guttosm/tickerlens/internal/ingestion"
	"github.com/guttosm/tickerlens/internal/logger"
	"github.com/guttosm/tickerlens/internal/service"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
//
// Parameters:
//   - ctx (context.Context): A context with timeout for graceful shutdown.
//   - server (*http.Server): The HTTP server instance to shut down.
//   - cleanup (func()): Cleanup callback to release resources (e.g., DB connections, scheduler).
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// fetchOutput is what fetch mode prints for a ticker.
type fetchOutput struct {
	Company models.CompanyProfile `json:"company"`
	Stock   dto.StockResponse     `json:"stock"`
	Cached  bool                  `json:"cached"`
	Sources map[string]string     `json:"sources,omitempty"`
}

// fetch aggregates ticker through quotes and writes the result as indented JSON.
func fetch(ctx context.Context, quotes service.QuoteService, ticker string, refresh bool, w io.Writer) error {
	res, err := quotes.Search(ctx, ticker, refresh)
	if err != nil {
		return err
	}
	out := fetchOutput{
		Company: res.Entry.Profile,
		Stock:   dto.NewStockResponse(res.Entry.Quote),
		Cached:  res.Cached,
	}
	if len(res.Provenance) > 0 {
		out.Sources = make(map[string]string, len(res.Provenance))
		for field, id := range res.Provenance {
			out.Sources[field] = string(id)
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// main is the entry point of the tickerlens application.
//
// Modes (selected via --mode flag):
//   - api:    Starts the REST API (and the watchlist scheduler when configured).
//   - ingest: Loads the last N trading days of <date>_EOD.csv files into price_bars.
//   - fetch:  Aggregates one ticker and prints it as JSON.
//
// Flags:
//   - --mode:     Execution mode. Default: "api".
//   - --dir:      Directory containing EOD csv files. Default: "./data/input".
//   - --days:     Trading days to ingest (1-30). Default: 5.
//   - --parallel: Files processed concurrently (0=auto up to CPU, max 8).
//   - --force:    Reprocess already ingested days.
//   - --ticker:   Ticker for fetch mode.
//   - --refresh:  Bypass the snapshot cache in fetch mode.
//   - --port:     Port for the API server. Defaults to value from config (SERVER_PORT).
func main() {
	ctx := context.Background()

	// Load configuration from environment or .env file
	config.LoadConfig()

	// Initialize JSON logger from LOG_LEVEL / LOG_PRETTY
	logger.Configure(os.Stdout, config.AppConfig.Log.Level, config.AppConfig.Log.Pretty)

	// Parse CLI flags (override config defaults if provided)
	mode := flag.String("mode", "api", "Mode: api, ingest or fetch")
	dir := flag.String("dir", "./data/input", "Directory with <YYYY-MM-DD>_EOD.csv files")
	days := flag.Int("days", 5, "Number of last trading days to ingest (1-30)")
	parallel := flag.Int("parallel", 0, "How many files to process concurrently (0=auto up to CPU, max 8)")
	force := flag.Bool("force", false, "Reprocess days even if already ingested (deletes existing bars for that day)")
	ticker := flag.String("ticker", "", "Ticker for fetch mode")
	refresh := flag.Bool("refresh", false, "Ignore stored snapshots in fetch mode")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")
	flag.Parse()

	switch *mode {
	case "ingest":
		logger.L().Info().Msg("running ingestion")

		db, err := app.InitPostgres(config.AppConfig)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("db connect error")
		}
		defer func() { _ = db.Close() }()

		if err := ingestion.ProcessDirectory(ctx, *dir, db, *days, *parallel, *force); err != nil {
			logger.L().Fatal().Err(err).Msg("ingestion failed")
		}
		logger.L().Info().Msg("ingestion completed successfully")

	case "fetch":
		db, err := app.InitPostgres(config.AppConfig)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("db connect error")
		}
		defer func() { _ = db.Close() }()

		svc := app.NewServices(config.AppConfig, db)
		if err := fetch(ctx, svc.Quotes, *ticker, *refresh, os.Stdout); err != nil {
			logger.L().Fatal().Err(err).Str("ticker", *ticker).Msg("fetch failed")
		}

	case "api":
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
