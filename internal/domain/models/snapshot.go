package models

import "time"

// CacheEntry is one immutable row of the append-only snapshot history.
// For a ticker, the entry with the latest RetrievedAt is authoritative.
type CacheEntry struct {
	ID          int64          `json:"id"`
	Ticker      string         `json:"ticker"`
	Profile     CompanyProfile `json:"company"`
	Quote       QuoteSnapshot  `json:"stock"`
	RetrievedAt time.Time      `json:"retrieved_at"`
}

// Fresh reports whether the entry is younger than ttl at instant now.
func (e CacheEntry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.RetrievedAt) < ttl
}

// SearchHistoryItem is one line of the recent searches feed.
type SearchHistoryItem struct {
	Ticker    string    `json:"ticker" example:"AAPL"`
	Timestamp time.Time `json:"timestamp"`
}
