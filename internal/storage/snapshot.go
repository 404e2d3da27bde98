package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/guttosm/tickerlens/internal/domain/models"
)

// SnapshotRepository is the append-only history of aggregated records.
// Rows are only ever inserted; the newest row per ticker is authoritative.
type SnapshotRepository interface {
	InsertSnapshot(ctx context.Context, e models.CacheEntry) (int64, error)
	LatestSnapshot(ctx context.Context, ticker string) (*models.CacheEntry, error)
	RecentSearches(ctx context.Context, limit int) ([]models.SearchHistoryItem, error)
}

type snapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

// InsertSnapshot appends one entry and returns its id.
func (r *snapshotRepository) InsertSnapshot(ctx context.Context, e models.CacheEntry) (int64, error) {
	company, err := json.Marshal(e.Profile)
	if err != nil {
		return 0, fmt.Errorf("encode company: %w", err)
	}
	stock, err := json.Marshal(e.Quote)
	if err != nil {
		return 0, fmt.Errorf("encode stock: %w", err)
	}

	var id int64
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO search_history (ticker, company_json, stock_json, retrieved_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, e.Ticker, company, stock, e.RetrievedAt.UTC()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	return id, nil
}

// LatestSnapshot returns the most recent entry for ticker, or nil when the
// ticker was never aggregated.
func (r *snapshotRepository) LatestSnapshot(ctx context.Context, ticker string) (*models.CacheEntry, error) {
	var (
		e              models.CacheEntry
		company, stock []byte
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, ticker, company_json, stock_json, retrieved_at
		FROM search_history
		WHERE ticker = $1
		ORDER BY retrieved_at DESC, id DESC
		LIMIT 1
	`, ticker).Scan(&e.ID, &e.Ticker, &company, &stock, &e.RetrievedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select snapshot: %w", err)
	}

	if err := json.Unmarshal(company, &e.Profile); err != nil {
		return nil, fmt.Errorf("decode company: %w", err)
	}
	if err := json.Unmarshal(stock, &e.Quote); err != nil {
		return nil, fmt.Errorf("decode stock: %w", err)
	}
	return &e, nil
}

// RecentSearches lists the newest entries, most recent first.
func (r *snapshotRepository) RecentSearches(ctx context.Context, limit int) ([]models.SearchHistoryItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ticker, retrieved_at
		FROM search_history
		ORDER BY retrieved_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query searches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]models.SearchHistoryItem, 0, limit)
	for rows.Next() {
		var it models.SearchHistoryItem
		if err := rows.Scan(&it.Ticker, &it.Timestamp); err != nil {
			return nil, fmt.Errorf("scan search: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
