package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	pq "github.com/lib/pq"

	"github.com/guttosm/tickerlens/internal/domain/models"
)

// PriceRepository defines the contract for the daily price-bar store fed by
// EOD file ingestion.
type PriceRepository interface {
	InsertPriceBarsBatch(ctx context.Context, bars []models.SymbolBar) error
	GetPriceSeries(ctx context.Context, symbol string, start time.Time) (models.PriceSeries, error)
	HasIngestionForDate(ctx context.Context, date time.Time) (bool, error)
	UpsertIngestionLog(ctx context.Context, date time.Time, filename string, rowCount int) error
	DeletePriceBarsByDate(ctx context.Context, date time.Time) error
}

type priceRepository struct {
	db *sql.DB
}

func NewPriceRepository(db *sql.DB) PriceRepository {
	return &priceRepository{db: db}
}

// InsertPriceBarsBatch bulk-loads bars with COPY in a single transaction.
func (r *priceRepository) InsertPriceBarsBatch(ctx context.Context, bars []models.SymbolBar) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	// Small optimization for bulk load
	if _, err := tx.ExecContext(ctx, `SET LOCAL synchronous_commit = OFF`); err != nil {
		_ = tx.Rollback()
		return err
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(
		"price_bars",
		"symbol",
		"bar_date",
		"open",
		"high",
		"low",
		"close",
		"volume",
	))
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, b.Symbol, models.Day(b.Date), b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return err
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return err
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// GetPriceSeries returns the bars of symbol on or after start, ascending.
func (r *priceRepository) GetPriceSeries(ctx context.Context, symbol string, start time.Time) (models.PriceSeries, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT bar_date, open, high, low, close, volume
		FROM price_bars
		WHERE symbol = $1 AND bar_date >= $2
		ORDER BY bar_date ASC
	`, symbol, models.Day(start))
	if err != nil {
		return nil, fmt.Errorf("query price bars: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var bars []models.PriceBar
	for rows.Next() {
		var b models.PriceBar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan price bar: %w", err)
		}
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return models.NewPriceSeries(bars), nil
}

// HasIngestionForDate checks if an ingestion was already recorded for a given trading day.
func (r *priceRepository) HasIngestionForDate(ctx context.Context, date time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM ingestion_log WHERE file_date = $1)`, date).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// UpsertIngestionLog records (or updates) an ingestion entry for a given day.
func (r *priceRepository) UpsertIngestionLog(ctx context.Context, date time.Time, filename string, rowCount int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ingestion_log (file_date, filename, row_count)
		VALUES ($1, $2, $3)
		ON CONFLICT (file_date)
		DO UPDATE SET filename = EXCLUDED.filename,
					  row_count = EXCLUDED.row_count,
					  ingested_at = NOW()
	`, date, filename, rowCount)
	return err
}

// DeletePriceBarsByDate removes all bars of a given day.
func (r *priceRepository) DeletePriceBarsByDate(ctx context.Context, date time.Time) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM price_bars WHERE bar_date = $1`, date)
	return err
}
