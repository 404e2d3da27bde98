package ingestion

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/tickerlens/internal/calendar"
	"github.com/guttosm/tickerlens/internal/logger"
	"github.com/guttosm/tickerlens/internal/storage"
)

const (
	fileDateLayout   = "2006-01-02"
	fileSuffix       = "_EOD.csv"
	defaultBatchSize = 5000

	// MaxDays bounds how many trading days one run may load.
	MaxDays     = 30
	maxParallel = 8
)

// repoCtor is an indirection for creating the repository; tests can override this.
var repoCtor = func(db *sql.DB) storage.PriceRepository {
	return storage.NewPriceRepository(db)
}

// now is the clock used to pick the trading days; tests can override this.
var now = time.Now

// ProcessDirectory loads end-of-day price files into the price_bars table.
//
//   - dir: directory containing the EOD files.
//   - db:  open *sql.DB (PostgreSQL).
//
// Behavior:
//   - Expects exactly one file per trading day named "YYYY-MM-DD_EOD.csv"
//     for each of the last nDays NYSE trading days.
//   - Uses a concurrency limit of min(8, NumCPU) unless parallel is set.
//   - Skips days already in ingestion_log unless force is set, in which case
//     the day's bars are deleted and reloaded.
//   - If any file returns error, cancels the rest and returns that error.
//
// Returns:
//   - error: first error encountered (if any).
func ProcessDirectory(ctx context.Context, dir string, db *sql.DB, nDays int, parallel int, force bool) error {
	repo := repoCtor(db)
	log := logger.For("ingestion")

	if nDays < 1 {
		nDays = 1
	}
	if nDays > MaxDays {
		nDays = MaxDays
	}
	dates := calendar.LastNTradingDays(nDays, now())

	// Build expected filenames & validate presence upfront.
	var files []string
	var missing []string

	for _, d := range dates {
		name := d.Format(fileDateLayout) + fileSuffix
		full := filepath.Join(dir, name)
		files = append(files, full)

		if _, err := os.Stat(full); err != nil {
			if os.IsNotExist(err) {
				missing = append(missing, name)
			} else {
				return fmt.Errorf("stat failed for %s: %w", full, err)
			}
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required files: %s", strings.Join(missing, ", "))
	}

	limit := maxParallel
	if parallel > 0 {
		limit = min(parallel, maxParallel)
	} else if c := runtime.NumCPU(); c < limit {
		limit = c
	}

	log.Info().Int("files", len(files)).Str("dir", dir).Int("max_parallel", limit).Msg("ingestion start")

	// errgroup will cancel siblings on first error.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, f := range files {
		g.Go(func() error {
			start := time.Now()
			base := filepath.Base(f)
			flog := log.With().Int("idx", i+1).Int("total", len(files)).Str("file", base).Logger()

			d, err := time.Parse(fileDateLayout, strings.TrimSuffix(base, fileSuffix))
			if err != nil {
				return fmt.Errorf("file %s: parse date from filename: %w", f, err)
			}

			exists, err := repo.HasIngestionForDate(gctx, d)
			if err != nil {
				return fmt.Errorf("file %s: check ingestion log: %w", f, err)
			}
			if exists && !force {
				flog.Info().Bool("skipped", true).Msg("already ingested")
				return nil
			}
			if exists {
				if err := repo.DeletePriceBarsByDate(gctx, d); err != nil {
					return fmt.Errorf("file %s: delete existing: %w", f, err)
				}
			}

			total, err := parseAndPersistFile(gctx, f, d, repo, defaultBatchSize)
			if err != nil {
				flog.Error().Dur("elapsed", time.Since(start)).Err(err).Msg("file failed")
				return fmt.Errorf("file %s: %w", f, err)
			}
			if err := repo.UpsertIngestionLog(gctx, d, base, total); err != nil {
				return fmt.Errorf("file %s: upsert ingestion log: %w", f, err)
			}
			flog.Info().Int("rows", total).Dur("elapsed", time.Since(start)).Bool("force", force).Msg("file done")
			return nil
		})
	}

	return g.Wait()
}
