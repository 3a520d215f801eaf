// Package discovery is the one screen controller shared by every support
// domain. A Domain carries the configuration (dictionary, dataset, categories,
// quiz); a Session holds one user's filters and quiz progress over it.
package discovery

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/david/support-finder/internal/filter"
	"github.com/david/support-finder/internal/locale"
	"github.com/david/support-finder/internal/logger"
	"github.com/david/support-finder/internal/metrics"
	"github.com/david/support-finder/internal/models"
	"github.com/david/support-finder/internal/quiz"
)

// Category is the presentation of one entity category.
type Category struct {
	Icon  string `json:"icon" yaml:"icon"`
	Color string `json:"color" yaml:"color"`
}

// FallbackCategory is used when neither the entity's category nor "general"
// is configured.
var FallbackCategory = Category{Icon: "info", Color: "#607D8B"}

// Domain is immutable once built; sessions share it.
type Domain struct {
	ID             string
	Title          string // dictionary key
	Namespace      string
	GermanLearning bool
	Entities       []models.Entity
	Categories     map[string]Category
	Questions      []quiz.Question
	Text           locale.Getter
}

// Options returns the filter rule set for the domain.
func (d *Domain) Options() filter.Options {
	return filter.Options{GermanLearning: d.GermanLearning}
}

// Entity looks an entity up by id.
func (d *Domain) Entity(id string) (models.Entity, bool) {
	for _, e := range d.Entities {
		if e.ID == id {
			return e, true
		}
	}
	return models.Entity{}, false
}

// CategoryFor returns the icon and colour for e's category.
func (d *Domain) CategoryFor(e models.Entity) Category {
	if c, ok := d.Categories[e.Category]; ok {
		return c
	}
	if c, ok := d.Categories[models.DefaultCategory]; ok {
		return c
	}
	return FallbackCategory
}

// Resolve looks key up in the domain namespace, then in the common one.
func (d *Domain) Resolve(key, lang string) string {
	if d.Text == nil {
		return key
	}
	return d.Text(key, lang)
}

type Session struct {
	domain  *Domain
	filters filter.State
	quiz    *quiz.Controller
	log     *zap.Logger
}

// NewSession starts with no filters and the quiz at its first question.
func NewSession(d *Domain, log *zap.Logger, opts ...quiz.Option) *Session {
	s := &Session{
		domain:  d,
		filters: filter.State{},
		log:     logger.OrNop(log).With(zap.String("domain", d.ID)),
	}
	s.quiz = quiz.New(d.Questions, s.filters, opts...)
	return s
}

// Resume rebuilds a session from previously saved filters and quiz state.
func Resume(d *Domain, log *zap.Logger, filters filter.State, qs quiz.State, opts ...quiz.Option) (*Session, error) {
	s := NewSession(d, log, opts...)
	for _, dim := range filters.Active() {
		if filter.IsKnown(dim) {
			s.filters.Set(dim, filters.Get(dim))
		}
	}
	if err := s.quiz.Restore(qs); err != nil {
		return nil, fmt.Errorf("resume %s session: %w", d.ID, err)
	}
	return s, nil
}

func (s *Session) Domain() *Domain { return s.domain }

func (s *Session) Quiz() *quiz.Controller { return s.quiz }

// Filters returns a copy of the current filter state.
func (s *Session) Filters() filter.State { return s.filters.Clone() }

// Toggle selects value for dim, or clears dim when value is already selected.
func (s *Session) Toggle(dim, value string) {
	if !s.known(dim) {
		return
	}
	if s.filters.Get(dim) == value {
		s.filters.Clear(dim)
		return
	}
	s.filters.Set(dim, value)
}

// SetFilter replaces dim. An empty value clears it.
func (s *Session) SetFilter(dim, value string) {
	if !s.known(dim) {
		return
	}
	s.filters.Set(dim, value)
}

// ClearFilters drops every selection. Quiz answers are kept.
func (s *Session) ClearFilters() {
	for _, dim := range s.filters.Active() {
		s.filters.Clear(dim)
	}
}

func (s *Session) known(dim string) bool {
	if filter.IsKnown(dim) {
		return true
	}
	s.log.Debug("ignoring unknown filter dimension", zap.String("dimension", dim))
	return false
}

// Results filters the domain entities against the current state. Nothing is
// cached; every call starts from the full list.
func (s *Session) Results() []models.Entity {
	out := filter.Apply(s.domain.Entities, s.filters, s.domain.Options())
	s.observe(len(out))
	return out
}

// ResultsFor is Results narrowed by a free-text query.
func (s *Session) ResultsFor(query, lang string) []models.Entity {
	out := filter.Search(filter.Apply(s.domain.Entities, s.filters, s.domain.Options()), query, lang)
	s.observe(len(out))
	return out
}

func (s *Session) observe(n int) {
	metrics.FilterRequests.WithLabelValues(s.domain.ID).Inc()
	metrics.FilterResults.WithLabelValues(s.domain.ID).Observe(float64(n))
}

// Facets counts the options of every dimension under the current state.
func (s *Session) Facets() filter.FacetResult {
	return filter.Facets(s.domain.Entities, s.filters, s.domain.Options())
}

func (s *Session) CategoryFor(e models.Entity) Category {
	return s.domain.CategoryFor(e)
}

// Text resolves an interface string for the session's domain.
func (s *Session) Text(key, lang string) string {
	return s.domain.Resolve(key, lang)
}
