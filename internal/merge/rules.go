package merge

import (
	"github.com/guregu/null/v6"

	"github.com/guttosm/tickerlens/internal/domain/models"
)

// nullable is satisfied by every guregu/null value type.
type nullable interface {
	IsZero() bool
}

type rule[R any] struct {
	name string
	fill func(dst, src *R) bool
}

func field[R any, V nullable](name string, get func(*R) *V) rule[R] {
	return rule[R]{
		name: name,
		fill: func(dst, src *R) bool {
			d, s := get(dst), get(src)
			if !(*d).IsZero() || (*s).IsZero() {
				return false
			}
			*d = *s
			return true
		},
	}
}

type profile = models.CompanyProfile
type quote = models.QuoteSnapshot

var profileRules = []rule[profile]{
	field("name", func(p *profile) *null.String { return &p.Name }),
	field("description", func(p *profile) *null.String { return &p.Description }),
	field("sector", func(p *profile) *null.String { return &p.Sector }),
	field("industry", func(p *profile) *null.String { return &p.Industry }),
	field("exchange", func(p *profile) *null.String { return &p.Exchange }),
	field("website", func(p *profile) *null.String { return &p.Website }),
	field("start_date", func(p *profile) *null.String { return &p.StartDate }),
	field("end_date", func(p *profile) *null.String { return &p.EndDate }),
	field("employees", func(p *profile) *null.Int { return &p.Employees }),
	field("market_cap", func(p *profile) *null.Float { return &p.MarketCap }),
	field("pe_ratio", func(p *profile) *null.Float { return &p.PERatio }),
	field("pb_ratio", func(p *profile) *null.Float { return &p.PBRatio }),
	field("eps", func(p *profile) *null.Float { return &p.EPS }),
	field("dividend_yield", func(p *profile) *null.Float { return &p.DividendYield }),
	field("beta", func(p *profile) *null.Float { return &p.Beta }),
	field("address", func(p *profile) *null.String { return &p.Address }),
	field("city", func(p *profile) *null.String { return &p.City }),
	field("state", func(p *profile) *null.String { return &p.State }),
	field("country", func(p *profile) *null.String { return &p.Country }),
	field("zip", func(p *profile) *null.String { return &p.Zip }),
}

var quoteRules = []rule[quote]{
	field("last", func(q *quote) *null.Float { return &q.Last }),
	field("prev_close", func(q *quote) *null.Float { return &q.PrevClose }),
	field("open", func(q *quote) *null.Float { return &q.Open }),
	field("high", func(q *quote) *null.Float { return &q.High }),
	field("low", func(q *quote) *null.Float { return &q.Low }),
	field("volume", func(q *quote) *null.Int { return &q.Volume }),
	field("timestamp", func(q *quote) *null.Time { return &q.Timestamp }),
	field("change", func(q *quote) *null.Float { return &q.Change }),
	field("change_percent", func(q *quote) *null.Float { return &q.ChangePercent }),
	field("revenue", func(q *quote) *null.Float { return &q.Revenue }),
	field("net_income", func(q *quote) *null.Float { return &q.NetIncome }),
	field("ebitda", func(q *quote) *null.Float { return &q.EBITDA }),
	field("gross_profit", func(q *quote) *null.Float { return &q.GrossProfit }),
}
