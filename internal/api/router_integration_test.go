//go:build integration
// +build integration

package api_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	goose "github.com/pressly/goose/v3"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/guttosm/tickerlens/config"
	"github.com/guttosm/tickerlens/internal/app"
)

func startPG(t *testing.T) (dsn string, host string, port nat.Port, terminate func()) {
	t.Helper()
	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "tickerlens",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
		},
		WaitingFor: wait.ForSQL("5432/tcp", "postgres", func(h string, p nat.Port) string {
			return fmt.Sprintf("host=%s port=%s user=postgres password=postgres dbname=tickerlens sslmode=disable", h, p.Port())
		}).WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("container: %v", err)
	}
	h, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", "postgres", "postgres", h, mp.Port(), "tickerlens")
	terminate = func() { _ = c.Terminate(context.Background()) }
	return dsn, h, mp, terminate
}

func openAndMigrate(t *testing.T, dsn string) *sql.DB {
	t.Helper()
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		t.Fatalf("dialect: %v", err)
	}
	path := filepath.Join("..", "..", "db", "migrations")
	if err := goose.Up(db, path); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// seedBars writes one bar per weekday for the last 120 days for both
// symbols, with closes that move on different cycles.
func seedBars(t *testing.T, db *sql.DB) {
	t.Helper()
	today := time.Now().UTC().Truncate(24 * time.Hour)
	i := 0
	for d := today.AddDate(0, 0, -120); !d.After(today); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		bench := 400 + float64(i%5)
		asset := 100 + float64(i%7)*1.5
		for sym, c := range map[string]float64{"SPY": bench, "E2E1": asset} {
			_, err := db.Exec(`INSERT INTO price_bars (symbol, bar_date, open, high, low, close, volume) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
				sym, d, c, c+1, c-1, c, 1000+i)
			if err != nil {
				t.Fatalf("seed %s %s: %v", sym, d.Format("2006-01-02"), err)
			}
		}
		i++
	}
}

func get(t *testing.T, h http.Handler, url string, out any) int {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	if out != nil && w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("json %s: %v body=%s", url, err, w.Body.String())
		}
	}
	return w.Code
}

func TestAPI_E2E_StoreBackedEndpoints(t *testing.T) {
	dsn, _, _, term := startPG(t)
	defer term()
	db := openAndMigrate(t, dsn)
	defer db.Close()
	seedBars(t, db)

	// Only the local store serves history; no upstream feed is configured.
	old := config.AppConfig
	t.Cleanup(func() { config.AppConfig = old })
	config.AppConfig = config.Config{
		Postgres:  config.PostgresConfig{URL: dsn},
		Providers: config.ProvidersConfig{HTTPTimeout: time.Second, Benchmark: "SPY"},
		Cache:     config.CacheConfig{TTL: 15 * time.Minute},
	}

	router, cleanup, err := app.InitializeApp()
	if err != nil {
		t.Fatalf("init app: %v", err)
	}
	defer cleanup()

	t.Run("returns", func(t *testing.T) {
		var body struct {
			Ticker  string `json:"ticker"`
			Window  string `json:"window"`
			Source  string `json:"source"`
			Returns []struct {
				Date   string  `json:"date"`
				Return float64 `json:"return"`
			} `json:"returns"`
		}
		if code := get(t, router, "/api/v1/returns?ticker=e2e1&window=1mo", &body); code != http.StatusOK {
			t.Fatalf("status %d", code)
		}
		if body.Ticker != "E2E1" || body.Window != "1mo" || body.Source != "store" || len(body.Returns) == 0 {
			t.Fatalf("unexpected body: %+v", body)
		}
	})

	t.Run("analytics", func(t *testing.T) {
		var body struct {
			Benchmark string          `json:"benchmark"`
			Risk      json.RawMessage `json:"risk"`
			RiskError string          `json:"risk_error"`
		}
		if code := get(t, router, "/api/v1/analytics?ticker=E2E1&window=3mo", &body); code != http.StatusOK {
			t.Fatalf("status %d", code)
		}
		if body.Benchmark != "SPY" || body.RiskError != "" || string(body.Risk) == "null" {
			t.Fatalf("unexpected body: %+v", body)
		}
	})

	t.Run("search then cached search", func(t *testing.T) {
		var first, second struct {
			Cached bool `json:"cached"`
			Stock  struct {
				Last      float64 `json:"last"`
				PrevClose float64 `json:"prev_close"`
			} `json:"stock"`
		}
		if code := get(t, router, "/api/v1/search?ticker=E2E1", &first); code != http.StatusOK {
			t.Fatalf("status %d", code)
		}
		if first.Cached || first.Stock.Last == 0 || first.Stock.PrevClose == 0 {
			t.Fatalf("unexpected first search: %+v", first)
		}
		if code := get(t, router, "/api/v1/search?ticker=E2E1", &second); code != http.StatusOK {
			t.Fatalf("status %d", code)
		}
		if !second.Cached || second.Stock.Last != first.Stock.Last {
			t.Fatalf("expected cached snapshot, got %+v", second)
		}

		var hist []struct {
			Ticker string `json:"ticker"`
		}
		if code := get(t, router, "/api/v1/history?limit=5", &hist); code != http.StatusOK {
			t.Fatalf("history status %d", code)
		}
		if len(hist) != 1 || hist[0].Ticker != "E2E1" {
			t.Fatalf("unexpected history: %+v", hist)
		}
	})

	t.Run("unknown ticker", func(t *testing.T) {
		if code := get(t, router, "/api/v1/returns?ticker=NOPE", nil); code != http.StatusNotFound {
			t.Fatalf("status %d, want 404", code)
		}
	})
}
