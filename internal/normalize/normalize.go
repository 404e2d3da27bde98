// Package normalize converts raw provider payloads into canonical records.
//
// Each provider has a declarative field-mapping table (mappings.yaml) from
// canonical field names to JSONPath expressions. Absent fields and values
// that cannot be coerced stay unknown; a coercion failure never fails the
// rest of the record.
package normalize

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"github.com/PaesslerAG/jsonpath"
	"github.com/guregu/null/v6"
	"gopkg.in/yaml.v3"

	"github.com/guttosm/tickerlens/internal/domain/models"
)

// ProviderID identifies a data provider (and therefore a mapping table).
type ProviderID string

const (
	TiingoMeta   ProviderID = "tiingo_meta"
	TiingoIEX    ProviderID = "tiingo_iex"
	YahooSummary ProviderID = "yahoo_summary"
	TiingoPrices ProviderID = "tiingo_prices"
	YahooChart   ProviderID = "yahoo_chart"
	Store        ProviderID = "store"
	History      ProviderID = "history"
)

// Payload is one decoded provider response.
type Payload = map[string]any

// ErrUnknownProvider is returned when no mapping table exists for a provider.
var ErrUnknownProvider = errors.New("normalize: unknown provider")

// CoercionFailure records a raw value that could not be converted to the
// canonical type of its field. The field itself is left unknown.
type CoercionFailure struct {
	Provider ProviderID `json:"provider"`
	Field    string     `json:"field"`
	Raw      any        `json:"raw"`
	Err      error      `json:"-"`
}

func (f CoercionFailure) Error() string {
	return fmt.Sprintf("%s.%s: cannot coerce %v: %v", f.Provider, f.Field, f.Raw, f.Err)
}

func (f CoercionFailure) Unwrap() error { return f.Err }

// Record is the partially populated output of one provider.
type Record struct {
	Provider ProviderID
	Profile  models.CompanyProfile
	Quote    models.QuoteSnapshot
	Failures []CoercionFailure
}

// Empty reports whether the record carries no known field.
func (r Record) Empty() bool {
	return r.Profile.Empty() && r.Quote.Empty()
}

type table struct {
	Profile map[string][]string `yaml:"profile"`
	Quote   map[string][]string `yaml:"quote"`
	Bar     map[string][]string `yaml:"bar"`
}

//go:embed mappings.yaml
var mappingsYAML []byte

var tables = mustLoadTables(mappingsYAML)

func loadTables(doc []byte) (map[ProviderID]table, error) {
	var raw map[ProviderID]table
	if err := yaml.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("parse mappings: %w", err)
	}
	for id, t := range raw {
		if err := checkFields(id, "profile", t.Profile, profileFields); err != nil {
			return nil, err
		}
		if err := checkFields(id, "quote", t.Quote, quoteFields); err != nil {
			return nil, err
		}
		if err := checkFields(id, "bar", t.Bar, barFields); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

func checkFields[R any](id ProviderID, section string, m map[string][]string, known map[string]setter[R]) error {
	for name, paths := range m {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("mappings: %s.%s: unknown field %q", id, section, name)
		}
		if len(paths) == 0 {
			return fmt.Errorf("mappings: %s.%s.%s: no paths", id, section, name)
		}
	}
	return nil
}

func mustLoadTables(doc []byte) map[ProviderID]table {
	t, err := loadTables(doc)
	if err != nil {
		panic(err)
	}
	return t
}

// Providers lists the provider IDs that have a mapping table, sorted.
func Providers() []ProviderID {
	out := make([]ProviderID, 0, len(tables))
	for id := range tables {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// resolve evaluates one JSONPath; a missing or null value is not found.
func resolve(payload Payload, path string) (any, bool) {
	v, err := jsonpath.Get(path, map[string]any(payload))
	if err != nil || v == nil {
		return nil, false
	}
	if list, ok := v.([]any); ok && len(list) == 1 {
		v = list[0]
	}
	if v == nil {
		return nil, false
	}
	return v, true
}

// apply fills r from payload using the mapping m. Paths are tried in order
// until one resolves and coerces; every value with the wrong shape is
// reported as a coercion failure.
func apply[R any](id ProviderID, payload Payload, m map[string][]string, fields map[string]setter[R], r *R) []CoercionFailure {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	var failures []CoercionFailure
	for _, name := range names {
		for _, path := range m[name] {
			raw, ok := resolve(payload, path)
			if !ok {
				continue
			}
			if err := fields[name](r, raw); err != nil {
				failures = append(failures, CoercionFailure{Provider: id, Field: name, Raw: raw, Err: err})
				continue
			}
			break
		}
	}
	return failures
}

// Normalize maps one provider payload onto the canonical profile and quote
// shapes. A nil payload yields an all-unknown record.
func Normalize(payload Payload, id ProviderID) (Record, error) {
	t, ok := tables[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: %q", ErrUnknownProvider, id)
	}
	rec := Record{Provider: id}
	if payload == nil {
		return rec, nil
	}
	rec.Failures = append(rec.Failures, apply(id, payload, t.Profile, profileFields, &rec.Profile)...)
	rec.Failures = append(rec.Failures, apply(id, payload, t.Quote, quoteFields, &rec.Quote)...)

	// The ticker is the record key; share it between both halves.
	switch {
	case rec.Profile.Ticker == "" && rec.Quote.Ticker != "":
		rec.Profile.Ticker = rec.Quote.Ticker
	case rec.Quote.Ticker == "" && rec.Profile.Ticker != "":
		rec.Quote.Ticker = rec.Profile.Ticker
	}
	return rec, nil
}

// NormalizeBars maps the rows of a history feed onto a PriceSeries.
//
// Rows without a known date or close are dropped and reported. Unknown
// open/high/low fall back to the close and unknown volume to zero, since a
// bar is only consumed through its close.
func NormalizeBars(rows []Payload, id ProviderID) (models.PriceSeries, []CoercionFailure, error) {
	t, ok := tables[id]
	if !ok || len(t.Bar) == 0 {
		return nil, nil, fmt.Errorf("%w: %q has no bar mapping", ErrUnknownProvider, id)
	}

	bars := make([]models.PriceBar, 0, len(rows))
	var failures []CoercionFailure
	for i, row := range rows {
		var rb rawBar
		failures = append(failures, apply(id, row, t.Bar, barFields, &rb)...)
		if !rb.Date.Valid || !rb.Close.Valid {
			failures = append(failures, CoercionFailure{
				Provider: id,
				Field:    fmt.Sprintf("row[%d]", i),
				Raw:      row,
				Err:      errors.New("missing date or close"),
			})
			continue
		}
		c := rb.Close.Float64
		bars = append(bars, models.PriceBar{
			Date:   rb.Date.Time,
			Open:   orElse(rb.Open, c),
			High:   orElse(rb.High, c),
			Low:    orElse(rb.Low, c),
			Close:  c,
			Volume: rb.Volume.ValueOrZero(),
		})
	}
	return models.NewPriceSeries(bars), failures, nil
}

func orElse(f null.Float, v float64) float64 {
	if f.Valid {
		return f.Float64
	}
	return v
}
