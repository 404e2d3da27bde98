package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// It is composed of smaller structs that represent different concerns of the system.
//
// Example ENV equivalent:
//
//	SERVER_PORT=8080
//	POSTGRES_HOST=localhost
//	POSTGRES_DB=tickerlens
//	TIINGO_API_TOKEN=xxxx
//	PROVIDER_PRIORITY=tiingo_meta,tiingo_iex,yahoo_summary,history
//	CACHE_TTL=15m
//	REFRESH_CRON=*/15 13-21 * * 1-5
//	WATCHLIST=AAPL,MSFT,SPY
type Config struct {
	Server    ServerConfig    // HTTP server configuration
	Postgres  PostgresConfig  // PostgreSQL connection settings
	Providers ProvidersConfig // Upstream market data feeds
	Cache     CacheConfig     // Snapshot freshness and history cache
	Scheduler SchedulerConfig // Watchlist refresh
	Log       LogConfig       // Logger settings
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string        // The TCP port the HTTP server will listen on (e.g., "8080")
	RequestTimeout time.Duration // Per-request context deadline
	RateLimit      int           // Requests per client IP per minute, 0 disables
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// ProvidersConfig configures the upstream feeds.
//
// An empty TiingoToken disables the Tiingo feeds.
type ProvidersConfig struct {
	TiingoToken   string
	TiingoBaseURL string
	YahooBaseURL  string
	YahooEnabled  bool
	HTTPTimeout   time.Duration
	MaxRetries    int
	// Priority lists provider ids, highest first, for merging.
	Priority  []string
	Benchmark string
}

// CacheConfig configures freshness windows.
type CacheConfig struct {
	TTL             time.Duration // Snapshot age served without refetching
	HistoryTTL      time.Duration // In-memory history cache TTL, 0 disables
	HistoryMaxItems int
}

// SchedulerConfig configures the watchlist refresh. It is disabled unless
// both Cron and Watchlist are set.
type SchedulerConfig struct {
	Cron      string
	Watchlist []string
	Parallel  int
	Timeout   time.Duration
}

// Enabled reports whether a refresh schedule is configured.
func (s SchedulerConfig) Enabled() bool {
	return s.Cron != "" && len(s.Watchlist) > 0
}

// LogConfig mirrors the variables read by the logger package.
type LogConfig struct {
	Level  string
	Pretty bool
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
// All services should import this package and read from AppConfig instead of
// reloading environment variables directly.
var AppConfig Config

// defaultPriority is the merge order used when PROVIDER_PRIORITY is unset.
const defaultPriority = "tiingo_meta,tiingo_iex,yahoo_summary,history"

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If required variables are missing or invalid, validateConfig() will
//     terminate the app with a descriptive log message.
func LoadConfig() {
	setDefaults()

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	// Read environment variables automatically
	viper.AutomaticEnv()

	AppConfig = Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			RequestTimeout: viper.GetDuration("REQUEST_TIMEOUT"),
			RateLimit:      viper.GetInt("RATE_LIMIT_PER_MINUTE"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
		Providers: ProvidersConfig{
			TiingoToken:   viper.GetString("TIINGO_API_TOKEN"),
			TiingoBaseURL: viper.GetString("TIINGO_BASE_URL"),
			YahooBaseURL:  viper.GetString("YAHOO_BASE_URL"),
			YahooEnabled:  viper.GetBool("YAHOO_ENABLED"),
			HTTPTimeout:   viper.GetDuration("PROVIDER_HTTP_TIMEOUT"),
			MaxRetries:    viper.GetInt("PROVIDER_MAX_RETRIES"),
			Priority:      splitList(viper.GetString("PROVIDER_PRIORITY"), strings.ToLower),
			Benchmark:     strings.ToUpper(strings.TrimSpace(viper.GetString("BENCHMARK_SYMBOL"))),
		},
		Cache: CacheConfig{
			TTL:             viper.GetDuration("CACHE_TTL"),
			HistoryTTL:      viper.GetDuration("HISTORY_CACHE_TTL"),
			HistoryMaxItems: viper.GetInt("HISTORY_CACHE_MAX_ITEMS"),
		},
		Scheduler: SchedulerConfig{
			Cron:      strings.TrimSpace(viper.GetString("REFRESH_CRON")),
			Watchlist: splitList(viper.GetString("WATCHLIST"), strings.ToUpper),
			Parallel:  viper.GetInt("REFRESH_PARALLEL"),
			Timeout:   viper.GetDuration("REFRESH_TIMEOUT"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Pretty: viper.GetBool("LOG_PRETTY"),
		},
	}

	// Construct Postgres DSN (used by database/sql)
	AppConfig.Postgres.URL = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		AppConfig.Postgres.User,
		AppConfig.Postgres.Password,
		AppConfig.Postgres.Host,
		AppConfig.Postgres.Port,
		AppConfig.Postgres.DBName,
		AppConfig.Postgres.SSLMode,
	)

	// Validate critical fields
	validateConfig()
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REQUEST_TIMEOUT", "10s")
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 60)

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "tickerlens")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	viper.SetDefault("TIINGO_API_TOKEN", "")
	viper.SetDefault("TIINGO_BASE_URL", "https://api.tiingo.com")
	viper.SetDefault("YAHOO_BASE_URL", "https://query2.finance.yahoo.com")
	viper.SetDefault("YAHOO_ENABLED", true)
	viper.SetDefault("PROVIDER_HTTP_TIMEOUT", "5s")
	viper.SetDefault("PROVIDER_MAX_RETRIES", 2)
	viper.SetDefault("PROVIDER_PRIORITY", defaultPriority)
	viper.SetDefault("BENCHMARK_SYMBOL", "SPY")

	viper.SetDefault("CACHE_TTL", "15m")
	viper.SetDefault("HISTORY_CACHE_TTL", "1h")
	viper.SetDefault("HISTORY_CACHE_MAX_ITEMS", 512)

	viper.SetDefault("REFRESH_CRON", "")
	viper.SetDefault("WATCHLIST", "")
	viper.SetDefault("REFRESH_PARALLEL", 4)
	viper.SetDefault("REFRESH_TIMEOUT", "2m")

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_PRETTY", false)
}

// splitList splits a comma separated value, trimming and normalizing
// entries and dropping empty ones.
func splitList(s string, norm func(string) string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := norm(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// validateConfig ensures required variables are present and terminates
// the application if they are missing or invalid.
//
// Behavior:
//   - Checks each critical field of AppConfig.
//   - Collects problems in a slice.
//   - If any are found, logs them and terminates the app with log.Fatalf().
func validateConfig() {
	if problems := problems(AppConfig); len(problems) > 0 {
		log.Fatalf("❌ Invalid configuration: %v\n", problems)
	}
}

// problems lists the missing or invalid variables of cfg.
func problems(cfg Config) []string {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if cfg.Postgres.Host == "" {
		missing = append(missing, "POSTGRES_HOST")
	}
	if cfg.Postgres.Port == 0 {
		missing = append(missing, "POSTGRES_PORT")
	}
	if cfg.Postgres.User == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if cfg.Postgres.Password == "" {
		missing = append(missing, "POSTGRES_PASSWORD")
	}
	if cfg.Postgres.DBName == "" {
		missing = append(missing, "POSTGRES_DB")
	}
	if cfg.Providers.HTTPTimeout <= 0 {
		missing = append(missing, "PROVIDER_HTTP_TIMEOUT")
	}
	if cfg.Providers.MaxRetries < 0 {
		missing = append(missing, "PROVIDER_MAX_RETRIES")
	}
	if cfg.Providers.Benchmark == "" {
		missing = append(missing, "BENCHMARK_SYMBOL")
	}
	if cfg.Cache.TTL < 0 {
		missing = append(missing, "CACHE_TTL")
	}
	if cfg.Scheduler.Cron != "" && len(cfg.Scheduler.Watchlist) == 0 {
		missing = append(missing, "WATCHLIST")
	}

	return missing
}
