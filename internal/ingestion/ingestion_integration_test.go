//go:build integration
// +build integration

package ingestion

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	goose "github.com/pressly/goose/v3"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/guttosm/tickerlens/internal/calendar"
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
	// migrations path relative to this test file (internal/ingestion → ../../db/migrations)
	path := filepath.Join("..", "..", "db", "migrations")
	if err := goose.Up(db, path); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
}

func writeInputFile(t *testing.T, dir string, day time.Time, rows int) (string, int) {
	t.Helper()
	name := day.Format(fileDateLayout) + fileSuffix
	full := filepath.Join(dir, name)

	f, err := os.Create(full)
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	defer f.Close()

	// header exactly as expected by parser
	if _, err := f.WriteString("symbol,date,open,high,low,close,volume\n"); err != nil {
		t.Fatalf("write header: %v", err)
	}

	// one row per synthetic symbol TEST0..TESTn
	for i := 0; i < rows; i++ {
		price := 10.0 + float64(i)
		line := fmt.Sprintf("TEST%d,%s,%.2f,%.2f,%.2f,%.2f,%d\n",
			i, day.Format(fileDateLayout), price, price+1, price-1, price+0.5, 100+i)
		if _, err := f.WriteString(line); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}

	return full, rows
}

func TestIngestion_EndToEnd_ProcessDirectory(t *testing.T) {
	dsn, terminate := startPostgres(t)
	defer terminate()
	db := openDB(t, dsn)
	defer db.Close()
	runMigrations(t, db)

	// Prepare input directory with exactly one required trading day file
	tdir := t.TempDir()
	day := calendar.LastNTradingDays(1, time.Now())[0]
	_, wrote := writeInputFile(t, tdir, day, 3)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := ProcessDirectory(ctx, tdir, db, 1, 2, false); err != nil {
		t.Fatalf("ProcessDirectory: %v", err)
	}

	var cnt int
	if err := db.QueryRow("SELECT COUNT(*) FROM price_bars WHERE symbol LIKE 'TEST%' AND bar_date=$1", day).Scan(&cnt); err != nil {
		t.Fatalf("count price_bars: %v", err)
	}
	if cnt != wrote {
		t.Fatalf("expected %d bars, got %d", wrote, cnt)
	}

	var rowCount int
	if err := db.QueryRow("SELECT row_count FROM ingestion_log WHERE file_date=$1", day).Scan(&rowCount); err != nil {
		t.Fatalf("check ingestion_log: %v", err)
	}
	if rowCount != wrote {
		t.Fatalf("expected ingestion_log row_count %d, got %d", wrote, rowCount)
	}

	// A forced rerun replaces the day's bars instead of duplicating them.
	if err := ProcessDirectory(ctx, tdir, db, 1, 1, true); err != nil {
		t.Fatalf("ProcessDirectory force: %v", err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM price_bars WHERE bar_date=$1", day).Scan(&cnt); err != nil {
		t.Fatalf("recount: %v", err)
	}
	if cnt != wrote {
		t.Fatalf("expected %d bars after force, got %d", wrote, cnt)
	}
}
