package analytics

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/guregu/null/v6"

	"github.com/guttosm/tickerlens/internal/domain/models"
)

const eps = 1e-9

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func closes(vals ...float64) models.PriceSeries {
	bars := make([]models.PriceBar, len(vals))
	for i, v := range vals {
		bars[i] = models.PriceBar{Date: day0.AddDate(0, 0, i), Close: v}
	}
	return bars
}

// fromReturns compounds returns from a starting close of 100.
func fromReturns(rs []float64) models.PriceSeries {
	vals := []float64{100}
	for _, r := range rs {
		vals = append(vals, vals[len(vals)-1]*(1+r))
	}
	return closes(vals...)
}

func wave(n int, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(float64(i)*0.7)
	}
	return out
}

func TestChange(t *testing.T) {
	cases := []struct {
		name       string
		last, prev null.Float
		wantOK     bool
		change     float64
		pct        float64
	}{
		{name: "up five", last: null.FloatFrom(105), prev: null.FloatFrom(100), wantOK: true, change: 5, pct: 5},
		{name: "down five", last: null.FloatFrom(95), prev: null.FloatFrom(100), wantOK: true, change: -5, pct: -5},
		{name: "half cent rounds away from zero", last: null.FloatFrom(10.005), prev: null.FloatFrom(10), wantOK: true, change: 0.01, pct: 0.1},
		{name: "fractional percent", last: null.FloatFrom(187.44), prev: null.FloatFrom(185.64), wantOK: true, change: 1.8, pct: 0.97},
		{name: "unknown last", last: null.Float{}, prev: null.FloatFrom(100)},
		{name: "unknown prev", last: null.FloatFrom(100), prev: null.Float{}},
		{name: "zero prev", last: null.FloatFrom(100), prev: null.FloatFrom(0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, p := Change(tc.last, tc.prev)
			if c.Valid != tc.wantOK || p.Valid != tc.wantOK {
				t.Fatalf("validity = %v/%v, want %v", c.Valid, p.Valid, tc.wantOK)
			}
			if !tc.wantOK {
				return
			}
			if c.Float64 != tc.change || p.Float64 != tc.pct {
				t.Fatalf("got %v/%v, want %v/%v", c.Float64, p.Float64, tc.change, tc.pct)
			}
		})
	}
}

func TestDailyReturns(t *testing.T) {
	got := DailyReturns(closes(100, 110))
	if len(got) != 1 {
		t.Fatalf("want 1 return, got %d", len(got))
	}
	want := models.DailyReturn{Date: day0.AddDate(0, 0, 1), Return: 10.0, Close: 110}
	if !got[0].Date.Equal(want.Date) || got[0].Return != want.Return || got[0].Close != want.Close {
		t.Fatalf("got %+v, want %+v", got[0], want)
	}

	for _, s := range []models.PriceSeries{nil, closes(100)} {
		if r := DailyReturns(s); r == nil || len(r) != 0 {
			t.Fatalf("series of length %d: want empty non-nil, got %v", len(s), r)
		}
	}

	got = DailyReturns(closes(0, 5, -1, 3, 2))
	wantR := []float64{0, -120, 0, -33.33}
	for i, r := range got {
		if r.Return != wantR[i] {
			t.Fatalf("return[%d] = %v, want %v", i, r.Return, wantR[i])
		}
	}
}

func TestBeta(t *testing.T) {
	bench := wave(50, 0.01)

	b, err := Beta(bench, bench)
	if err != nil || math.Abs(b-1) > eps {
		t.Fatalf("identical series: beta=%v err=%v", b, err)
	}

	double := make([]float64, len(bench))
	for i, r := range bench {
		double[i] = 2 * r
	}
	if b, err = Beta(double, bench); err != nil || math.Abs(b-2) > eps {
		t.Fatalf("doubled series: beta=%v err=%v", b, err)
	}

	if _, err = Beta(bench, make([]float64, len(bench))); !errors.Is(err, ErrDegenerateMarket) {
		t.Fatalf("zero benchmark returns: want ErrDegenerateMarket, got %v", err)
	}
	if _, err = Beta(bench[:3], bench[:4]); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("length mismatch: want ErrInsufficientData, got %v", err)
	}
	if _, err = Beta(bench[:1], bench[:1]); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("single point: want ErrInsufficientData, got %v", err)
	}
}

func TestAnnualizedVolatility(t *testing.T) {
	got := AnnualizedVolatility([]float64{0.01, -0.01})
	want := math.Sqrt(0.0002) * math.Sqrt(252) * 100
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("got %v, want %v", got, want)
	}
	if AnnualizedVolatility([]float64{0.5}) != 0 || AnnualizedVolatility(nil) != 0 {
		t.Fatalf("fewer than two returns must give 0")
	}
	if AnnualizedVolatility([]float64{0.01, 0.01, 0.01}) != 0 {
		t.Fatalf("constant returns must give 0")
	}
}

func TestClassifyRisk(t *testing.T) {
	cases := map[float64]string{
		1.6:  models.RiskHigh,
		-1.6: models.RiskHigh,
		1.5:  models.RiskMedium,
		1.0:  models.RiskMedium,
		0.8:  models.RiskLow,
		0.5:  models.RiskLow,
		0:    models.RiskLow,
	}
	for beta, want := range cases {
		if got := ClassifyRisk(beta); got != want {
			t.Fatalf("ClassifyRisk(%v) = %q, want %q", beta, got, want)
		}
	}
}

func TestPrevClose(t *testing.T) {
	s := models.PriceSeries{
		{Date: day0.AddDate(0, 0, 2), Close: 12},
		{Date: day0, Close: 10},
		{Date: day0.AddDate(0, 0, 1), Close: 11},
	}
	last, prev := PrevClose(s)
	if last.Float64 != 12 || prev.Float64 != 11 {
		t.Fatalf("got %v/%v, want 12/11", last, prev)
	}
	last, prev = PrevClose(closes(7))
	if !last.Valid || prev.Valid {
		t.Fatalf("single bar: got %v/%v", last, prev)
	}
	last, prev = PrevClose(nil)
	if last.Valid || prev.Valid {
		t.Fatalf("empty series must give unknowns")
	}
}

func TestAnalyze(t *testing.T) {
	rs := wave(60, 0.01)
	bench := fromReturns(rs)

	t.Run("identical series", func(t *testing.T) {
		rep, err := Analyze(bench, bench, 365)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if len(rep.Returns) != 60 || rep.Risk == nil {
			t.Fatalf("unexpected report: %d returns risk=%v", len(rep.Returns), rep.Risk)
		}
		if rep.Risk.Beta != 1 || rep.Risk.Risk != models.RiskMedium || rep.Risk.Observations != 60 {
			t.Fatalf("unexpected risk: %+v", rep.Risk)
		}
		if rep.Risk.AssetVolatility != rep.Risk.BenchmarkVolatility || rep.Risk.AssetVolatility <= 0 {
			t.Fatalf("unexpected volatilities: %+v", rep.Risk)
		}
	})

	t.Run("window truncates to the tail", func(t *testing.T) {
		rep, err := Analyze(bench, bench, 40)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if len(rep.Returns) != 39 || rep.Risk.Observations != 39 {
			t.Fatalf("returns=%d observations=%d, want 39", len(rep.Returns), rep.Risk.Observations)
		}
		if !rep.Returns[38].Date.Equal(bench[60].Date) {
			t.Fatalf("last return must be the latest bar")
		}
	})

	t.Run("leveraged asset is high risk", func(t *testing.T) {
		lev := make([]float64, len(rs))
		for i, r := range rs {
			lev[i] = 2 * r
		}
		rep, err := Analyze(fromReturns(lev), bench, 0)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if rep.Risk.Beta != 2 || rep.Risk.Risk != models.RiskHigh {
			t.Fatalf("unexpected risk: %+v", rep.Risk)
		}
	})

	t.Run("flat benchmark", func(t *testing.T) {
		flat := make([]float64, 60)
		rep, err := Analyze(bench, fromReturns(flat), 0)
		if !errors.Is(err, ErrDegenerateMarket) {
			t.Fatalf("want ErrDegenerateMarket, got %v", err)
		}
		if rep.Risk != nil || len(rep.Returns) != 60 {
			t.Fatalf("partial report must keep returns only: %+v", rep)
		}
	})

	t.Run("short history", func(t *testing.T) {
		short := bench[:10]
		rep, err := Analyze(short, bench, 365)
		if !errors.Is(err, ErrInsufficientData) {
			t.Fatalf("want ErrInsufficientData, got %v", err)
		}
		if len(rep.Returns) != 9 {
			t.Fatalf("want 9 returns, got %d", len(rep.Returns))
		}
	})
}
