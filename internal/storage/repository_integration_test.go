//go:build integration
// +build integration

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/guregu/null/v6"
	_ "github.com/lib/pq"
	goose "github.com/pressly/goose/v3"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/guttosm/tickerlens/internal/domain/models"
)

// startPostgres spins up a Postgres container and returns a DSN and terminate func.
func startPostgres(t *testing.T) (dsn string, terminate func()) {
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
		WaitingFor: wait.ForSQL("5432/tcp", "postgres", func(host string, port nat.Port) string {
			return fmt.Sprintf("host=%s port=%s user=postgres password=postgres dbname=tickerlens sslmode=disable", host, port.Port())
		}).WithStartupTimeout(60 * time.Second),
	}

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("container start: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", "postgres", "postgres", host, port.Port(), "tickerlens")
	terminate = func() { _ = container.Terminate(context.Background()) }
	return dsn, terminate
}

func openDB(t *testing.T, dsn string) *sql.DB {
	t.Helper()
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
	return db
}

func runMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	if err := goose.SetDialect("postgres"); err != nil {
		t.Fatalf("dialect: %v", err)
	}
	// migrations path relative to this test file (internal/storage → ../../db/migrations)
	path := filepath.Join("..", "..", "db", "migrations")
	if err := goose.Up(db, path); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
}

func TestRepository_Integration(t *testing.T) {
	dsn, terminate := startPostgres(t)
	defer terminate()
	db := openDB(t, dsn)
	defer db.Close()
	runMigrations(t, db)
	ctx := context.Background()

	prices := NewPriceRepository(db)
	snaps := NewSnapshotRepository(db)

	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	days := []time.Time{base, base.AddDate(0, 0, 1), base.AddDate(0, 0, 2)}

	t.Run("copy in and read back", func(t *testing.T) {
		var bars []models.SymbolBar
		for i, d := range days {
			bars = append(bars,
				models.SymbolBar{Symbol: "SPY", PriceBar: models.PriceBar{Date: d, Open: 470, High: 475, Low: 465, Close: 470 + float64(i), Volume: 1000}},
				models.SymbolBar{Symbol: "AAPL", PriceBar: models.PriceBar{Date: d, Open: 185, High: 186, Low: 184, Close: 185 + float64(i), Volume: 500}},
			)
		}
		if err := prices.InsertPriceBarsBatch(ctx, bars); err != nil {
			t.Fatalf("insert: %v", err)
		}

		cases := []struct {
			name   string
			symbol string
			start  time.Time
			want   int
			last   float64
		}{
			{name: "all days", symbol: "SPY", start: base, want: 3, last: 472},
			{name: "from second day", symbol: "AAPL", start: days[1], want: 2, last: 187},
			{name: "unknown symbol", symbol: "ZZZZ", start: base, want: 0},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				s, err := prices.GetPriceSeries(ctx, tc.symbol, tc.start)
				if err != nil {
					t.Fatalf("GetPriceSeries: %v", err)
				}
				if len(s) != tc.want {
					t.Fatalf("len = %d, want %d", len(s), tc.want)
				}
				if tc.want > 0 && s[len(s)-1].Close != tc.last {
					t.Fatalf("last close = %v, want %v", s[len(s)-1].Close, tc.last)
				}
			})
		}
	})

	t.Run("ingestion log upsert+exists", func(t *testing.T) {
		if err := prices.UpsertIngestionLog(ctx, days[0], "2024-01-02_EOD.csv", 2); err != nil {
			t.Fatalf("upsert: %v", err)
		}
		ok, err := prices.HasIngestionForDate(ctx, days[0])
		if err != nil || !ok {
			t.Fatalf("exists want true, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("delete by date", func(t *testing.T) {
		if err := prices.DeletePriceBarsByDate(ctx, days[1]); err != nil {
			t.Fatalf("delete: %v", err)
		}
		var cnt int
		if err := db.QueryRow("SELECT COUNT(*) FROM price_bars WHERE bar_date=$1", days[1]).Scan(&cnt); err != nil {
			t.Fatalf("count: %v", err)
		}
		if cnt != 0 {
			t.Fatalf("expected 0 rows after delete, got %d", cnt)
		}
	})

	t.Run("snapshots are append only", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Microsecond)
		for i, last := range []float64{100, 105} {
			_, err := snaps.InsertSnapshot(ctx, models.CacheEntry{
				Ticker:      "AAPL",
				Profile:     models.CompanyProfile{Ticker: "AAPL", Name: null.StringFrom("Apple Inc.")},
				Quote:       models.QuoteSnapshot{Ticker: "AAPL", Last: null.FloatFrom(last)},
				RetrievedAt: now.Add(time.Duration(i) * time.Minute),
			})
			if err != nil {
				t.Fatalf("insert snapshot: %v", err)
			}
		}

		latest, err := snaps.LatestSnapshot(ctx, "AAPL")
		if err != nil || latest == nil {
			t.Fatalf("latest: %+v err=%v", latest, err)
		}
		if latest.Quote.Last.Float64 != 105 || latest.Quote.PrevClose.Valid {
			t.Fatalf("unexpected latest quote: %+v", latest.Quote)
		}

		none, err := snaps.LatestSnapshot(ctx, "MSFT")
		if err != nil || none != nil {
			t.Fatalf("want nil for unknown ticker, got %+v err=%v", none, err)
		}

		items, err := snaps.RecentSearches(ctx, 10)
		if err != nil || len(items) != 2 || !items[0].Timestamp.After(items[1].Timestamp) {
			t.Fatalf("recent searches: %+v err=%v", items, err)
		}
	})
}
