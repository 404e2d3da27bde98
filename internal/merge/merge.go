// Package merge reconciles per-provider records into one record per ticker.
//
// Records are consumed in priority order and, for every field, the first
// provider that supplies a known value wins. A later provider never
// overwrites a known field. Merging nothing, or only unknowns, yields an
// all-unknown record rather than an error.
package merge

import (
	"sort"

	"github.com/guttosm/tickerlens/internal/domain/models"
	"github.com/guttosm/tickerlens/internal/normalize"
)

// Result is the merged record plus the provider that supplied each field.
// Provenance keys are "company.<field>" and "stock.<field>".
type Result struct {
	Profile    models.CompanyProfile
	Quote      models.QuoteSnapshot
	Provenance map[string]normalize.ProviderID
}

// Empty reports whether no provider supplied any known field.
func (r Result) Empty() bool {
	return r.Profile.Empty() && r.Quote.Empty()
}

// Merge folds records, highest priority first, into one Result.
func Merge(records []normalize.Record) Result {
	res := Result{Provenance: make(map[string]normalize.ProviderID)}

	for _, rec := range records {
		if res.Profile.Ticker == "" && rec.Profile.Ticker != "" {
			res.Profile.Ticker = rec.Profile.Ticker
		}
		if res.Quote.Ticker == "" && rec.Quote.Ticker != "" {
			res.Quote.Ticker = rec.Quote.Ticker
		}
		firstKnown(&res.Profile, &rec.Profile, profileRules, "company.", rec.Provider, res.Provenance)
		firstKnown(&res.Quote, &rec.Quote, quoteRules, "stock.", rec.Provider, res.Provenance)
	}

	switch {
	case res.Profile.Ticker == "":
		res.Profile.Ticker = res.Quote.Ticker
	case res.Quote.Ticker == "":
		res.Quote.Ticker = res.Profile.Ticker
	}
	return res
}

// firstKnown copies every field of src that is still unknown in dst.
func firstKnown[R any](dst, src *R, rules []rule[R], prefix string, from normalize.ProviderID, provenance map[string]normalize.ProviderID) {
	for _, r := range rules {
		if r.fill(dst, src) {
			provenance[prefix+r.name] = from
		}
	}
}

// Order returns records sorted by the position of their provider in
// priority. Providers missing from priority keep their relative input order
// after all listed ones.
func Order(records []normalize.Record, priority []normalize.ProviderID) []normalize.Record {
	rank := make(map[normalize.ProviderID]int, len(priority))
	for i, id := range priority {
		if _, seen := rank[id]; !seen {
			rank[id] = i
		}
	}
	pos := func(id normalize.ProviderID) int {
		if r, ok := rank[id]; ok {
			return r
		}
		return len(priority)
	}

	out := make([]normalize.Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return pos(out[i].Provider) < pos(out[j].Provider)
	})
	return out
}
