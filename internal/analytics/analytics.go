// Package analytics derives price change, daily returns, beta and
// annualized volatility from price series.
//
// Every function is pure. Percentages are rounded to two decimals with
// half-away-from-zero rounding; intermediate statistics use unrounded
// fractional returns.
package analytics

import (
	"errors"
	"math"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"

	"github.com/guttosm/tickerlens/internal/domain/models"
	"github.com/guttosm/tickerlens/internal/timeseries"
)

// TradingDaysPerYear scales daily volatility to a yearly figure.
const TradingDaysPerYear = 252

var (
	// ErrInsufficientData is the aligner's error, re-exported for callers
	// that only import analytics.
	ErrInsufficientData = timeseries.ErrInsufficientData

	// ErrDegenerateMarket is returned when the benchmark returns have zero
	// variance, leaving beta undefined.
	ErrDegenerateMarket = errors.New("degenerate market: benchmark variance is zero")
)

var hundred = decimal.NewFromInt(100)

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func round2f(f float64) float64 {
	return round2(decimal.NewFromFloat(f))
}

// Change returns last-prevClose and its percentage of prevClose, both
// rounded to two decimals. The percentage is taken from the rounded change.
// Both results are unknown when either input is unknown or prevClose is 0.
func Change(last, prevClose null.Float) (change, changePercent null.Float) {
	if !last.Valid || !prevClose.Valid || prevClose.Float64 == 0 {
		return null.Float{}, null.Float{}
	}
	prev := decimal.NewFromFloat(prevClose.Float64)
	diff := decimal.NewFromFloat(last.Float64).Sub(prev).Round(2)
	pct := diff.Div(prev).Mul(hundred)
	return null.FloatFrom(diff.InexactFloat64()), null.FloatFrom(round2(pct))
}

// PrevClose returns the close of the latest bar and of the bar before it
// by date. Missing bars give unknown values.
func PrevClose(s models.PriceSeries) (last, prev null.Float) {
	s = models.NewPriceSeries(s)
	if n := len(s); n > 0 {
		last = null.FloatFrom(s[n-1].Close)
		if n > 1 {
			prev = null.FloatFrom(s[n-2].Close)
		}
	}
	return last, prev
}

// fractionalReturns returns close[i]/close[i-1]-1 for each consecutive pair.
// A non-positive previous close yields 0.
func fractionalReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 {
			continue
		}
		out[i-1] = (closes[i] - closes[i-1]) / closes[i-1]
	}
	return out
}

// DailyReturns produces one record per bar after the first: the percentage
// move from the previous close, rounded to two decimals.
func DailyReturns(s models.PriceSeries) []models.DailyReturn {
	if len(s) < 2 {
		return []models.DailyReturn{}
	}
	out := make([]models.DailyReturn, 0, len(s)-1)
	for i := 1; i < len(s); i++ {
		ret := 0.0
		if prev := s[i-1].Close; prev > 0 {
			d := decimal.NewFromFloat(s[i].Close).Sub(decimal.NewFromFloat(prev))
			ret = round2(d.Div(decimal.NewFromFloat(prev)).Mul(hundred))
		}
		out = append(out, models.DailyReturn{Date: s[i].Date, Return: ret, Close: s[i].Close})
	}
	return out
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// covariance is the sample covariance (n-1 denominator) of equal-length xs
// and ys.
func covariance(xs, ys []float64) float64 {
	mx, my := mean(xs), mean(ys)
	var sum float64
	for i := range xs {
		sum += (xs[i] - mx) * (ys[i] - my)
	}
	return sum / float64(len(xs)-1)
}

// Beta is cov(asset, benchmark) / var(benchmark) over two aligned return
// series.
func Beta(asset, benchmark []float64) (float64, error) {
	if len(asset) != len(benchmark) || len(asset) < 2 {
		return 0, ErrInsufficientData
	}
	v := covariance(benchmark, benchmark)
	if v == 0 {
		return 0, ErrDegenerateMarket
	}
	return covariance(asset, benchmark) / v, nil
}

// AnnualizedVolatility is the sample standard deviation of fractional daily
// returns scaled by sqrt(252), in percent. Fewer than two returns give 0.
func AnnualizedVolatility(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	return math.Sqrt(covariance(returns, returns)) * math.Sqrt(TradingDaysPerYear) * 100
}

// ClassifyRisk buckets |beta|: above 1.5 is High, above 0.8 Medium, else Low.
func ClassifyRisk(beta float64) string {
	switch b := math.Abs(beta); {
	case b > 1.5:
		return models.RiskHigh
	case b > 0.8:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}
