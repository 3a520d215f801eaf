package filter

import (
	"sort"
	"strings"
)

// Filter dimensions.
const (
	Urgency     = "urgency"
	SupportType = "supportType"
	Location    = "location"
	Level       = "level"

	ForWomen               = "forWomen"
	ForYoungMigrants       = "forYoungMigrants"
	Childcare              = "childcare"
	IntegrationRequirement = "integrationRequirement"
	OnlineOnly             = "onlineOnly"
)

// FlagDimensions are the boolean eligibility filters of German-course lists.
var FlagDimensions = []string{ForWomen, ForYoungMigrants, Childcare, IntegrationRequirement, OnlineOnly}

// Dimensions lists every dimension the engine understands.
var Dimensions = append([]string{Urgency, SupportType, Location, Level}, FlagDimensions...)

// FlagOn is the only value that activates a boolean flag dimension.
const FlagOn = "true"

// State maps a dimension to its selected value. An empty or missing value
// means the dimension does not constrain anything.
type State map[string]string

// Get returns the trimmed value of dim.
func (s State) Get(dim string) string {
	return strings.TrimSpace(s[dim])
}

// Set replaces the value of dim. An empty value clears it.
func (s State) Set(dim, value string) {
	if strings.TrimSpace(value) == "" {
		delete(s, dim)
		return
	}
	s[dim] = value
}

func (s State) Clear(dim string) {
	delete(s, dim)
}

// Clone returns an independent copy.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Active returns the dimensions that currently constrain results, sorted.
func (s State) Active() []string {
	dims := make([]string, 0, len(s))
	for k := range s {
		if s.Get(k) != "" {
			dims = append(dims, k)
		}
	}
	sort.Strings(dims)
	return dims
}

// IsKnown reports whether dim is one of Dimensions.
func IsKnown(dim string) bool {
	for _, d := range Dimensions {
		if d == dim {
			return true
		}
	}
	return false
}

// FromValues builds a State from query parameters. Only known dimensions are
// kept and only their first non-empty value is used.
func FromValues(values map[string][]string) State {
	s := State{}
	for _, dim := range Dimensions {
		for _, v := range values[dim] {
			if v = strings.TrimSpace(v); v != "" {
				s[dim] = v
				break
			}
		}
	}
	return s
}
