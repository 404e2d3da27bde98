package dto

import (
	"encoding/json"
	"time"

	"github.com/guregu/null/v6"

	"github.com/guttosm/tickerlens/internal/domain/models"
)

// NotAvailable is rendered for derived figures that cannot be computed.
const NotAvailable = "N/A"

// NumberOrNA encodes a known value as a JSON number and an unknown one as "N/A".
type NumberOrNA struct {
	null.Float
}

// MarshalJSON implements json.Marshaler.
func (n NumberOrNA) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return json.Marshal(NotAvailable)
	}
	return json.Marshal(n.Float64)
}

// StockResponse is the "stock" object of a search response. Every key is
// always present; unknown values are null, change fields "N/A".
type StockResponse struct {
	Ticker        string     `json:"ticker" example:"AAPL"`
	Last          null.Float `json:"last" swaggertype:"number" example:"187.44"`
	PrevClose     null.Float `json:"prev_close" swaggertype:"number" example:"185.64"`
	Open          null.Float `json:"open" swaggertype:"number"`
	High          null.Float `json:"high" swaggertype:"number"`
	Low           null.Float `json:"low" swaggertype:"number"`
	Volume        null.Int   `json:"volume" swaggertype:"integer"`
	Timestamp     null.Time  `json:"timestamp" swaggertype:"string" format:"date-time"`
	Change        NumberOrNA `json:"change" swaggertype:"number" example:"1.8"`
	ChangePercent NumberOrNA `json:"change_percent" swaggertype:"number" example:"0.97"`
	Revenue       null.Float `json:"revenue" swaggertype:"number"`
	NetIncome     null.Float `json:"net_income" swaggertype:"number"`
	EBITDA        null.Float `json:"ebitda" swaggertype:"number"`
	GrossProfit   null.Float `json:"gross_profit" swaggertype:"number"`
}

// SearchResponse is returned by GET /api/v1/search.
type SearchResponse struct {
	Company     models.CompanyProfile `json:"company"`
	Stock       StockResponse         `json:"stock"`
	RetrievedAt time.Time             `json:"retrieved_at"`
	Cached      bool                  `json:"cached" example:"false"`
	// Sources maps "company.<field>" / "stock.<field>" to the provider that
	// supplied it. Empty for cached results.
	Sources map[string]string `json:"sources,omitempty"`
}

// NewStockResponse renders a quote snapshot.
func NewStockResponse(q models.QuoteSnapshot) StockResponse {
	return StockResponse{
		Ticker:        q.Ticker,
		Last:          q.Last,
		PrevClose:     q.PrevClose,
		Open:          q.Open,
		High:          q.High,
		Low:           q.Low,
		Volume:        q.Volume,
		Timestamp:     q.Timestamp,
		Change:        NumberOrNA{q.Change},
		ChangePercent: NumberOrNA{q.ChangePercent},
		Revenue:       q.Revenue,
		NetIncome:     q.NetIncome,
		EBITDA:        q.EBITDA,
		GrossProfit:   q.GrossProfit,
	}
}

// HistoryItem is one entry of GET /api/v1/history.
type HistoryItem struct {
	Ticker    string    `json:"ticker" example:"AAPL"`
	Timestamp time.Time `json:"timestamp"`
}

// NewHistoryItems renders recent searches; never nil.
func NewHistoryItems(items []models.SearchHistoryItem) []HistoryItem {
	out := make([]HistoryItem, 0, len(items))
	for _, it := range items {
		out = append(out, HistoryItem{Ticker: it.Ticker, Timestamp: it.Timestamp})
	}
	return out
}
