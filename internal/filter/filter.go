// Package filter narrows entity lists by a FilterState. Every function here is
// pure: arguments are never mutated and nothing is cached, so callers can
// recompute results on every state change.
package filter

import (
	"strings"

	"github.com/david/support-finder/internal/models"
)

// Options selects the rule set. German-course lists match supportType
// against the course type and honour level and flag dimensions.
type Options struct {
	GermanLearning bool
}

// Apply returns the entities matching every set dimension of state, in input
// order. The result is never nil.
func Apply(entities []models.Entity, state State, opts Options) []models.Entity {
	out := make([]models.Entity, 0, len(entities))
	for _, e := range entities {
		if Match(e, state, opts) {
			out = append(out, e)
		}
	}
	return out
}

// Match reports whether e satisfies every set dimension of state.
// Unknown dimensions are ignored.
func Match(e models.Entity, state State, opts Options) bool {
	return matchExcept(e, state, opts, "")
}

// matchExcept is Match with one dimension left out; facets use it.
func matchExcept(e models.Entity, state State, opts Options, skip string) bool {
	if v := state.Get(Urgency); v != "" && skip != Urgency {
		if e.Urgency != v {
			return false
		}
	}

	if v := state.Get(SupportType); v != "" && skip != SupportType {
		if opts.GermanLearning {
			if e.Type != v {
				return false
			}
		} else if !e.HasSupportType(v) {
			return false
		}
	}

	if v := state.Get(Location); v != "" && skip != Location {
		if !matchLocation(e, v) {
			return false
		}
	}

	if !opts.GermanLearning {
		return true
	}

	if v := state.Get(Level); v != "" && skip != Level {
		if !matchLevel(e.Level, v) {
			return false
		}
	}

	for _, dim := range FlagDimensions {
		if dim == skip || state.Get(dim) != FlagOn {
			continue
		}
		if !flagValue(e, dim) {
			return false
		}
	}
	return true
}

func matchLocation(e models.Entity, want string) bool {
	switch want {
	case models.LocationAllAustria, models.LocationAnywhere:
		return true
	case models.LocationOnline:
		return e.Online
	}
	// Online entities only satisfy the "Online" selection, handled above.
	return e.Location == want || e.Location == models.LocationAllAustria
}

func matchLevel(levels []string, want string) bool {
	for _, l := range levels {
		if strings.Contains(l, want) {
			return true
		}
	}
	return false
}

func flagValue(e models.Entity, dim string) bool {
	switch dim {
	case ForWomen:
		return e.ForWomen
	case ForYoungMigrants:
		return e.ForYoungMigrants
	case Childcare:
		return e.Childcare
	case IntegrationRequirement:
		return e.IntegrationRequirement
	case OnlineOnly:
		return e.Online
	}
	return true
}
