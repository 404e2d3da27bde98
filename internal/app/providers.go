package app

import (
	"net/http"

	"github.com/guttosm/tickerlens/config"
	"github.com/guttosm/tickerlens/internal/logger"
	"github.com/guttosm/tickerlens/internal/normalize"
	"github.com/guttosm/tickerlens/internal/provider"
	"github.com/guttosm/tickerlens/internal/provider/cache"
	"github.com/guttosm/tickerlens/internal/provider/tiingo"
	"github.com/guttosm/tickerlens/internal/provider/yahoo"
	"github.com/guttosm/tickerlens/internal/service"
	"github.com/guttosm/tickerlens/internal/storage"
)

// feeds groups the live record sources and the history chain built from config.
type feeds struct {
	sources []provider.Source
	history *provider.Fallback
}

// buildFeeds wires the upstream clients described by cfg.Providers.
//
// The history chain always starts with the local price store, followed by
// Tiingo daily prices (when a token is configured) and the Yahoo chart.
// Every remote history source is wrapped in the in-memory TTL cache.
func buildFeeds(cfg config.Config, prices storage.PriceRepository) feeds {
	log := logger.For("app")
	httpClient := &http.Client{Timeout: cfg.Providers.HTTPTimeout}

	var f feeds
	chain := []provider.SeriesSource{service.NewStoreSource(prices)}

	if cfg.Providers.TiingoToken != "" {
		tc, err := tiingo.NewClient(cfg.Providers.TiingoToken,
			tiingo.WithBaseURL(cfg.Providers.TiingoBaseURL),
			tiingo.WithHTTPClient(httpClient),
			tiingo.WithMaxRetries(cfg.Providers.MaxRetries),
		)
		if err != nil {
			log.Warn().Err(err).Msg("tiingo disabled")
		} else {
			f.sources = append(f.sources, tc.Meta(), tc.IEX())
			chain = append(chain, cached(cfg, tc.Prices()))
		}
	} else {
		log.Warn().Msg("TIINGO_API_TOKEN not set, tiingo feeds disabled")
	}

	if cfg.Providers.YahooEnabled {
		yc := yahoo.NewClient(
			yahoo.WithBaseURL(cfg.Providers.YahooBaseURL),
			yahoo.WithHTTPClient(httpClient),
			yahoo.WithMaxRetries(cfg.Providers.MaxRetries),
		)
		f.sources = append(f.sources, yc.Summary())
		chain = append(chain, cached(cfg, yc.Chart()))
	}

	f.history = provider.NewFallback(chain...)
	return f
}

func cached(cfg config.Config, src provider.SeriesSource) provider.SeriesSource {
	if cfg.Cache.HistoryTTL <= 0 {
		return src
	}
	return cache.New(src, cfg.Cache.HistoryTTL, cfg.Cache.HistoryMaxItems)
}

// priority converts configured names into provider ids, dropping unknown ones.
func priority(names []string) []normalize.ProviderID {
	known := map[normalize.ProviderID]bool{normalize.History: true}
	for _, id := range normalize.Providers() {
		known[id] = true
	}
	out := make([]normalize.ProviderID, 0, len(names))
	for _, n := range names {
		id := normalize.ProviderID(n)
		if !known[id] {
			logger.For("app").Warn().Str("provider", n).Msg("unknown provider in PROVIDER_PRIORITY, ignored")
			continue
		}
		out = append(out, id)
	}
	return out
}
