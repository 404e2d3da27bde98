package models

import (
	"sort"
	"time"
)

// PriceBar is one trading day of OHLCV data.
// Date is always truncated to midnight UTC.
type PriceBar struct {
	Date   time.Time `json:"date" example:"2024-01-02T00:00:00Z"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// PriceSeries is a sequence of bars ordered ascending by date with no
// duplicate trading days. Build it with NewPriceSeries.
type PriceSeries []PriceBar

// Day truncates t to calendar-day granularity in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewPriceSeries returns a sorted, de-duplicated copy of bars.
// When two bars share a date the one appearing later in the input wins.
func NewPriceSeries(bars []PriceBar) PriceSeries {
	byDate := make(map[time.Time]PriceBar, len(bars))
	for _, b := range bars {
		b.Date = Day(b.Date)
		byDate[b.Date] = b
	}
	out := make(PriceSeries, 0, len(byDate))
	for _, b := range byDate {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Dates returns the dates of the series in order.
func (s PriceSeries) Dates() []time.Time {
	out := make([]time.Time, len(s))
	for i, b := range s {
		out[i] = b.Date
	}
	return out
}

// Closes returns the closing prices of the series in order.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// SymbolBar is a price bar tagged with its symbol, as stored in price_bars.
type SymbolBar struct {
	Symbol string
	PriceBar
}
