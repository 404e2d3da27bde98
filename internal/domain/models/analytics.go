package models

import "time"

// DailyReturn is the percentage move of one close relative to the previous
// close, rounded to two decimals.
type DailyReturn struct {
	Date   time.Time `json:"date"`
	Return float64   `json:"return" example:"10"`
	Close  float64   `json:"close" example:"110"`
}

// Risk classes derived from |beta|.
const (
	RiskHigh   = "High"
	RiskMedium = "Medium"
	RiskLow    = "Low"
)

// RiskMetrics holds beta and volatility for an asset against a benchmark.
// Volatilities are annualized and expressed in percent.
type RiskMetrics struct {
	Benchmark           string  `json:"benchmark" example:"SPY"`
	Beta                float64 `json:"beta" example:"1.12"`
	AssetVolatility     float64 `json:"asset_volatility" example:"27.4"`
	BenchmarkVolatility float64 `json:"benchmark_volatility" example:"16.8"`
	Risk                string  `json:"risk" example:"Medium"`
	Observations        int     `json:"observations" example:"251"`
}
