package normalize

import (
	"strings"

	"github.com/guregu/null/v6"

	"github.com/guttosm/tickerlens/internal/domain/models"
)

// setter coerces a raw value into one canonical field of R.
type setter[R any] func(r *R, raw any) error

func stringField[R any](get func(*R) *null.String) setter[R] {
	return func(r *R, raw any) error {
		v, err := toString(raw)
		if err != nil {
			return err
		}
		*get(r) = v
		return nil
	}
}

func floatField[R any](get func(*R) *null.Float) setter[R] {
	return func(r *R, raw any) error {
		v, err := toFloat(raw)
		if err != nil {
			return err
		}
		*get(r) = v
		return nil
	}
}

func intField[R any](get func(*R) *null.Int) setter[R] {
	return func(r *R, raw any) error {
		v, err := toInt(raw)
		if err != nil {
			return err
		}
		*get(r) = v
		return nil
	}
}

func timeField[R any](get func(*R) *null.Time) setter[R] {
	return func(r *R, raw any) error {
		v, err := toTime(raw)
		if err != nil {
			return err
		}
		*get(r) = v
		return nil
	}
}

func tickerField[R any](get func(*R) *string) setter[R] {
	return func(r *R, raw any) error {
		v, err := toString(raw)
		if err != nil {
			return err
		}
		if v.Valid {
			*get(r) = strings.ToUpper(v.String)
		}
		return nil
	}
}

type profile = models.CompanyProfile
type quote = models.QuoteSnapshot

var profileFields = map[string]setter[profile]{
	"ticker":         tickerField(func(p *profile) *string { return &p.Ticker }),
	"name":           stringField(func(p *profile) *null.String { return &p.Name }),
	"description":    stringField(func(p *profile) *null.String { return &p.Description }),
	"sector":         stringField(func(p *profile) *null.String { return &p.Sector }),
	"industry":       stringField(func(p *profile) *null.String { return &p.Industry }),
	"exchange":       stringField(func(p *profile) *null.String { return &p.Exchange }),
	"website":        stringField(func(p *profile) *null.String { return &p.Website }),
	"start_date":     stringField(func(p *profile) *null.String { return &p.StartDate }),
	"end_date":       stringField(func(p *profile) *null.String { return &p.EndDate }),
	"employees":      intField(func(p *profile) *null.Int { return &p.Employees }),
	"market_cap":     floatField(func(p *profile) *null.Float { return &p.MarketCap }),
	"pe_ratio":       floatField(func(p *profile) *null.Float { return &p.PERatio }),
	"pb_ratio":       floatField(func(p *profile) *null.Float { return &p.PBRatio }),
	"eps":            floatField(func(p *profile) *null.Float { return &p.EPS }),
	"dividend_yield": floatField(func(p *profile) *null.Float { return &p.DividendYield }),
	"beta":           floatField(func(p *profile) *null.Float { return &p.Beta }),
	"address":        stringField(func(p *profile) *null.String { return &p.Address }),
	"city":           stringField(func(p *profile) *null.String { return &p.City }),
	"state":          stringField(func(p *profile) *null.String { return &p.State }),
	"country":        stringField(func(p *profile) *null.String { return &p.Country }),
	"zip":            stringField(func(p *profile) *null.String { return &p.Zip }),
}

var quoteFields = map[string]setter[quote]{
	"ticker":         tickerField(func(q *quote) *string { return &q.Ticker }),
	"last":           floatField(func(q *quote) *null.Float { return &q.Last }),
	"prev_close":     floatField(func(q *quote) *null.Float { return &q.PrevClose }),
	"open":           floatField(func(q *quote) *null.Float { return &q.Open }),
	"high":           floatField(func(q *quote) *null.Float { return &q.High }),
	"low":            floatField(func(q *quote) *null.Float { return &q.Low }),
	"volume":         intField(func(q *quote) *null.Int { return &q.Volume }),
	"timestamp":      timeField(func(q *quote) *null.Time { return &q.Timestamp }),
	"change":         floatField(func(q *quote) *null.Float { return &q.Change }),
	"change_percent": floatField(func(q *quote) *null.Float { return &q.ChangePercent }),
	"revenue":        floatField(func(q *quote) *null.Float { return &q.Revenue }),
	"net_income":     floatField(func(q *quote) *null.Float { return &q.NetIncome }),
	"ebitda":         floatField(func(q *quote) *null.Float { return &q.EBITDA }),
	"gross_profit":   floatField(func(q *quote) *null.Float { return &q.GrossProfit }),
}

// rawBar is a history row before unknown values are resolved.
type rawBar struct {
	Date                   null.Time
	Open, High, Low, Close null.Float
	Volume                 null.Int
}

var barFields = map[string]setter[rawBar]{
	"date":   timeField(func(b *rawBar) *null.Time { return &b.Date }),
	"open":   floatField(func(b *rawBar) *null.Float { return &b.Open }),
	"high":   floatField(func(b *rawBar) *null.Float { return &b.High }),
	"low":    floatField(func(b *rawBar) *null.Float { return &b.Low }),
	"close":  floatField(func(b *rawBar) *null.Float { return &b.Close }),
	"volume": intField(func(b *rawBar) *null.Int { return &b.Volume }),
}
