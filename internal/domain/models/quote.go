package models

import "github.com/guregu/null/v6"

// QuoteSnapshot is the canonical quote record for a ticker at one point in
// time. Change and ChangePercent are derived from Last and PrevClose and stay
// unknown whenever either input is unknown.
//
// swagger:model QuoteSnapshot
type QuoteSnapshot struct {
	Ticker        string     `json:"ticker" example:"AAPL"`
	Last          null.Float `json:"last" swaggertype:"number" example:"105"`
	PrevClose     null.Float `json:"prev_close" swaggertype:"number" example:"100"`
	Open          null.Float `json:"open" swaggertype:"number"`
	High          null.Float `json:"high" swaggertype:"number"`
	Low           null.Float `json:"low" swaggertype:"number"`
	Volume        null.Int   `json:"volume" swaggertype:"integer"`
	Timestamp     null.Time  `json:"timestamp" swaggertype:"string" format:"date-time"`
	Change        null.Float `json:"change" swaggertype:"number" example:"5"`
	ChangePercent null.Float `json:"change_percent" swaggertype:"number" example:"5"`
	Revenue       null.Float `json:"revenue" swaggertype:"number"`
	NetIncome     null.Float `json:"net_income" swaggertype:"number"`
	EBITDA        null.Float `json:"ebitda" swaggertype:"number"`
	GrossProfit   null.Float `json:"gross_profit" swaggertype:"number"`
}

// Empty reports whether no field beyond the ticker is known.
func (q QuoteSnapshot) Empty() bool {
	return !q.Last.Valid && !q.PrevClose.Valid && !q.Open.Valid && !q.High.Valid &&
		!q.Low.Valid && !q.Volume.Valid && !q.Timestamp.Valid && !q.Change.Valid &&
		!q.ChangePercent.Valid && !q.Revenue.Valid && !q.NetIncome.Valid &&
		!q.EBITDA.Valid && !q.GrossProfit.Valid
}
