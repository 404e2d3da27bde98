// Package timeseries aligns price series on their common trading dates.
package timeseries

import (
	"errors"
	"strings"
	"time"

	"github.com/guttosm/tickerlens/internal/domain/models"
)

// MinObservations is the smallest intersection Align accepts.
const MinObservations = 30

// DefaultWindow is used for unrecognized window names.
const DefaultWindow = "1y"

// ErrInsufficientData is returned when two series share fewer than
// MinObservations dates.
var ErrInsufficientData = errors.New("insufficient data: fewer than 30 common observations")

var windowDays = map[string]int{
	"1mo": 30,
	"3mo": 90,
	"6mo": 180,
	"1y":  365,
	"2y":  730,
	"5y":  1825,
	"10y": 3650,
	"max": 3650,
}

// WindowDays maps a lookback name to its day count, falling back to the
// 1-year default.
func WindowDays(name string) int {
	if d, ok := windowDays[strings.ToLower(strings.TrimSpace(name))]; ok {
		return d
	}
	return windowDays[DefaultWindow]
}

// WindowName returns the canonical name for a lookback, or DefaultWindow.
func WindowName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if _, ok := windowDays[n]; ok {
		return n
	}
	return DefaultWindow
}

// Align restricts a and b to the dates present in both, ascending, and keeps
// the most recent window entries. A window <= 0 keeps the whole
// intersection. The returned series always have equal length and dates.
func Align(a, b models.PriceSeries, window int) (models.PriceSeries, models.PriceSeries, error) {
	sa := models.NewPriceSeries(a)
	sb := models.NewPriceSeries(b)

	inB := make(map[time.Time]models.PriceBar, len(sb))
	for _, bar := range sb {
		inB[bar.Date] = bar
	}

	outA := make(models.PriceSeries, 0, len(sa))
	outB := make(models.PriceSeries, 0, len(sa))
	for _, bar := range sa {
		if other, ok := inB[bar.Date]; ok {
			outA = append(outA, bar)
			outB = append(outB, other)
		}
	}

	if len(outA) < MinObservations {
		return nil, nil, ErrInsufficientData
	}
	if window > 0 && len(outA) > window {
		outA = outA[len(outA)-window:]
		outB = outB[len(outB)-window:]
	}
	return outA, outB, nil
}
