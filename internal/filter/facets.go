package filter

import (
	"sort"

	"github.com/david/support-finder/internal/models"
)

// Facet is a single value count.
type Facet struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FacetResult contains the counts shown next to each filter option.
type FacetResult struct {
	Urgency     []Facet `json:"urgency"`
	SupportType []Facet `json:"supportType"`
	Location    []Facet `json:"location"`
	Level       []Facet `json:"level,omitempty"`
}

// Facets counts option values per dimension. Each dimension is counted with
// every other dimension applied but not itself, so a list always shows all
// of its options (cross-faceted filtering).
func Facets(entities []models.Entity, state State, opts Options) FacetResult {
	res := FacetResult{
		Urgency: count(entities, state, opts, Urgency, func(e models.Entity) []string {
			return []string{e.Urgency}
		}),
		SupportType: count(entities, state, opts, SupportType, func(e models.Entity) []string {
			if opts.GermanLearning {
				return []string{e.Type}
			}
			return e.SupportTypes
		}),
		Location: count(entities, state, opts, Location, func(e models.Entity) []string {
			if e.Online && e.Location != models.LocationOnline {
				return []string{e.Location, models.LocationOnline}
			}
			return []string{e.Location}
		}),
	}
	if opts.GermanLearning {
		res.Level = count(entities, state, opts, Level, func(e models.Entity) []string {
			return e.Level
		})
	}
	return res
}

func count(entities []models.Entity, state State, opts Options, dim string, values func(models.Entity) []string) []Facet {
	counts := map[string]int{}
	for _, e := range entities {
		if !matchExcept(e, state, opts, dim) {
			continue
		}
		seen := map[string]bool{}
		for _, v := range values(e) {
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			counts[v]++
		}
	}

	out := make([]Facet, 0, len(counts))
	for v, n := range counts {
		out = append(out, Facet{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}
