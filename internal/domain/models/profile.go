package models

import "github.com/guregu/null/v6"

// CompanyProfile is the canonical company record assembled from one or more
// providers.
//
// Every field except Ticker is optional. An invalid null value means the
// field is unknown: no provider supplied it, or the supplied value could not
// be coerced. Unknown is never represented as zero or an empty string.
//
// swagger:model CompanyProfile
type CompanyProfile struct {
	Ticker        string      `json:"ticker" example:"AAPL"`
	Name          null.String `json:"name" swaggertype:"string" example:"Apple Inc"`
	Description   null.String `json:"description" swaggertype:"string"`
	Sector        null.String `json:"sector" swaggertype:"string" example:"Technology"`
	Industry      null.String `json:"industry" swaggertype:"string" example:"Consumer Electronics"`
	Exchange      null.String `json:"exchange" swaggertype:"string" example:"NASDAQ"`
	Website       null.String `json:"website" swaggertype:"string"`
	StartDate     null.String `json:"start_date" swaggertype:"string" example:"1980-12-12"`
	EndDate       null.String `json:"end_date" swaggertype:"string"`
	Employees     null.Int    `json:"employees" swaggertype:"integer"`
	MarketCap     null.Float  `json:"market_cap" swaggertype:"number"`
	PERatio       null.Float  `json:"pe_ratio" swaggertype:"number"`
	PBRatio       null.Float  `json:"pb_ratio" swaggertype:"number"`
	EPS           null.Float  `json:"eps" swaggertype:"number"`
	DividendYield null.Float  `json:"dividend_yield" swaggertype:"number"`
	Beta          null.Float  `json:"beta" swaggertype:"number"`
	Address       null.String `json:"address" swaggertype:"string"`
	City          null.String `json:"city" swaggertype:"string"`
	State         null.String `json:"state" swaggertype:"string"`
	Country       null.String `json:"country" swaggertype:"string"`
	Zip           null.String `json:"zip" swaggertype:"string"`
}

// Empty reports whether no field beyond the ticker is known.
func (p CompanyProfile) Empty() bool {
	return !p.Name.Valid && !p.Description.Valid && !p.Sector.Valid && !p.Industry.Valid &&
		!p.Exchange.Valid && !p.Website.Valid && !p.StartDate.Valid && !p.EndDate.Valid &&
		!p.Employees.Valid && !p.MarketCap.Valid && !p.PERatio.Valid && !p.PBRatio.Valid &&
		!p.EPS.Valid && !p.DividendYield.Valid && !p.Beta.Valid && !p.Address.Valid &&
		!p.City.Valid && !p.State.Valid && !p.Country.Valid && !p.Zip.Valid
}
