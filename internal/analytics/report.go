package analytics

import (
	"github.com/guttosm/tickerlens/internal/domain/models"
	"github.com/guttosm/tickerlens/internal/timeseries"
)

// Report is the outcome of Analyze. Risk is nil when the risk part could
// not be computed.
type Report struct {
	Returns []models.DailyReturn
	Risk    *models.RiskMetrics
}

// Analyze computes the daily returns of the most recent window bars of
// asset and, after aligning asset with benchmark, beta, both volatilities
// and the risk class.
//
// Returns is always filled. When the risk part fails, the partial report is
// returned together with ErrInsufficientData or ErrDegenerateMarket.
func Analyze(asset, benchmark models.PriceSeries, window int) (Report, error) {
	asset = models.NewPriceSeries(asset)
	tail := asset
	if window > 0 && len(tail) > window {
		tail = tail[len(tail)-window:]
	}
	rep := Report{Returns: DailyReturns(tail)}

	a, b, err := timeseries.Align(asset, benchmark, window)
	if err != nil {
		return rep, err
	}
	ra := fractionalReturns(a.Closes())
	rb := fractionalReturns(b.Closes())

	beta, err := Beta(ra, rb)
	if err != nil {
		return rep, err
	}
	rep.Risk = &models.RiskMetrics{
		Beta:                round2f(beta),
		AssetVolatility:     round2f(AnnualizedVolatility(ra)),
		BenchmarkVolatility: round2f(AnnualizedVolatility(rb)),
		Risk:                ClassifyRisk(beta),
		Observations:        len(ra),
	}
	return rep, nil
}
