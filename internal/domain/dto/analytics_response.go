package dto

import (
	"time"

	"github.com/guttosm/tickerlens/internal/domain/models"
)

// Risk error codes reported in AnalyticsResponse.RiskError.
const (
	RiskErrInsufficientData = "insufficient_data"
	RiskErrDegenerateMarket = "degenerate_market"
)

// ReturnPoint is one daily return.
type ReturnPoint struct {
	Date   string  `json:"date" example:"2025-09-19"`
	Return float64 `json:"return" example:"1.25"`
	Close  float64 `json:"close" example:"245.5"`
}

// ReturnsResponse is returned by GET /api/v1/returns.
type ReturnsResponse struct {
	Ticker  string        `json:"ticker" example:"AAPL"`
	Window  string        `json:"window" example:"1y"`
	Source  string        `json:"source" example:"store"`
	Returns []ReturnPoint `json:"returns"`
}

// AnalyticsResponse is returned by GET /api/v1/analytics. Risk is null and
// RiskError set when the risk figures could not be computed.
type AnalyticsResponse struct {
	ReturnsResponse
	Benchmark string              `json:"benchmark" example:"SPY"`
	Risk      *models.RiskMetrics `json:"risk"`
	RiskError string              `json:"risk_error,omitempty" example:"insufficient_data"`
}

// NewReturnPoints renders daily returns with date-only timestamps; never nil.
func NewReturnPoints(rs []models.DailyReturn) []ReturnPoint {
	out := make([]ReturnPoint, 0, len(rs))
	for _, r := range rs {
		out = append(out, ReturnPoint{Date: r.Date.UTC().Format(time.DateOnly), Return: r.Return, Close: r.Close})
	}
	return out
}
