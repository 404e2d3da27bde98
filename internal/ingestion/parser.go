package ingestion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/guttosm/tickerlens/internal/domain/models"
	"github.com/guttosm/tickerlens/internal/storage"
)

// expectedHeaders enforces strict column ordering for EOD files.
var expectedHeaders = []string{"symbol", "date", "open", "high", "low", "close", "volume"}

// errNoClose marks rows that carry no closing price; they are skipped.
var errNoClose = errors.New("missing close")

// parseAndPersistFile opens, validates, parses, and persists one file in batches.
// It fails on:
//   - header not matching expected order/length
//   - malformed numbers or dates, or a row dated another day than the file
//   - a symbol appearing twice
//
// It tolerates:
//   - rows without a close (skipped)
//   - empty open/high/low (filled with the close) and volume (zero)
func parseAndPersistFile(ctx context.Context, path string, day time.Time, repo storage.PriceRepository, batch int) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(expectedHeaders) {
		return 0, fmt.Errorf("invalid header length: expected %d, got %d", len(expectedHeaders), len(header))
	}
	for i, h := range header {
		if !strings.EqualFold(strings.TrimSpace(h), expectedHeaders[i]) {
			return 0, fmt.Errorf("invalid header at col %d: expected %q, got %q", i+1, expectedHeaders[i], h)
		}
	}

	buf := make([]models.SymbolBar, 0, batch)
	seen := make(map[string]struct{})
	lineNumber := 1

	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		if err := repo.InsertPriceBarsBatch(ctx, buf); err != nil {
			return err
		}
		buf = buf[:0]
		return nil
	}

	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read line after %d: %w", lineNumber, err)
		}
		lineNumber++

		if len(rec) != len(expectedHeaders) {
			return 0, fmt.Errorf("invalid column count on line %d: expected %d got %d", lineNumber, len(expectedHeaders), len(rec))
		}

		bar, err := recordToBar(rec, day)
		if errors.Is(err, errNoClose) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", lineNumber, err)
		}
		if _, dup := seen[bar.Symbol]; dup {
			return 0, fmt.Errorf("line %d: duplicate symbol %q", lineNumber, bar.Symbol)
		}
		seen[bar.Symbol] = struct{}{}

		buf = append(buf, bar)
		total++
		if len(buf) >= batch {
			if err := flush(); err != nil {
				return 0, fmt.Errorf("flush batch ending line %d: %w", lineNumber, err)
			}
		}
	}

	if err := flush(); err != nil {
		return 0, fmt.Errorf("final flush: %w", err)
	}

	return total, nil
}

// recordToBar converts one CSV record (already validated length==7).
//
// Column order:
//
//	0 symbol  → upper-cased, required
//	1 date    → YYYY-MM-DD; empty means the file's day
//	2 open    → float, empty→close
//	3 high    → float, empty→close
//	4 low     → float, empty→close
//	5 close   → float, empty skips the row
//	6 volume  → int64, empty→0
func recordToBar(rec []string, day time.Time) (models.SymbolBar, error) {
	var b models.SymbolBar

	b.Symbol = strings.ToUpper(strings.TrimSpace(rec[0]))
	if b.Symbol == "" {
		return b, errors.New("empty symbol")
	}

	b.Date = day
	if s := strings.TrimSpace(rec[1]); s != "" {
		d, err := time.Parse(fileDateLayout, s)
		if err != nil {
			return b, fmt.Errorf("invalid date: %v", err)
		}
		if !d.Equal(day) {
			return b, fmt.Errorf("row dated %s in file for %s", s, day.Format(fileDateLayout))
		}
	}

	closeStr := strings.TrimSpace(rec[5])
	if closeStr == "" {
		return b, errNoClose
	}
	c, err := strconv.ParseFloat(closeStr, 64)
	if err != nil {
		return b, fmt.Errorf("invalid close: %v", err)
	}
	b.Close = c

	for _, col := range []struct {
		idx  int
		name string
		dst  *float64
	}{{2, "open", &b.Open}, {3, "high", &b.High}, {4, "low", &b.Low}} {
		s := strings.TrimSpace(rec[col.idx])
		if s == "" {
			*col.dst = c
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return b, fmt.Errorf("invalid %s: %v", col.name, err)
		}
		*col.dst = v
	}

	if s := strings.TrimSpace(rec[6]); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return b, fmt.Errorf("invalid volume: %v", err)
		}
		b.Volume = v
	}

	return b, nil
}
