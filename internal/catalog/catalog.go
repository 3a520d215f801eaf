package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/david/support-finder/internal/discovery"
	"github.com/david/support-finder/internal/locale"
	"github.com/david/support-finder/internal/logger"
	"github.com/david/support-finder/internal/metrics"
)

var ErrUnknownDomain = errors.New("unknown domain")

// Catalog is built once at startup and only read afterwards, so it can be
// shared between request handlers.
type Catalog struct {
	registry *locale.Registry
	domains  map[string]*discovery.Domain
	order    []string
}

// Load fetches the entities of every configured domain from src and binds
// each domain to its dictionary namespace in reg.
func Load(ctx context.Context, cfg *Config, reg *locale.Registry, src Source, log *zap.Logger) (*Catalog, error) {
	log = logger.OrNop(log)
	c := &Catalog{
		registry: reg,
		domains:  make(map[string]*discovery.Domain, len(cfg.Domains)),
	}

	for _, dc := range cfg.Domains {
		entities, err := src.Entities(ctx, dc.ID)
		if err != nil {
			return nil, fmt.Errorf("load domain %s: %w", dc.ID, err)
		}
		if reg.Dictionary(dc.Namespace) == nil {
			log.Warn("no dictionary for domain namespace", zap.String("domain", dc.ID), zap.String("namespace", dc.Namespace))
		}

		c.domains[dc.ID] = &discovery.Domain{
			ID:             dc.ID,
			Title:          dc.Title,
			Namespace:      dc.Namespace,
			GermanLearning: dc.GermanLearning,
			Entities:       entities,
			Categories:     dc.Categories,
			Questions:      dc.Quiz,
			Text:           countingGetter(reg, dc.Namespace),
		}
		c.order = append(c.order, dc.ID)
		log.Info("domain loaded",
			zap.String("domain", dc.ID),
			zap.Int("entities", len(entities)),
			zap.Int("questions", len(dc.Quiz)),
		)
	}
	return c, nil
}

// countingGetter resolves in ns and records keys neither ns nor the common
// namespace can translate.
func countingGetter(reg *locale.Registry, ns string) locale.Getter {
	get := reg.Namespace(ns)
	return func(key, lang string) string {
		v := get(key, lang)
		if v == key &&
			locale.Missing(reg.Dictionary(ns), key, lang) &&
			locale.Missing(reg.Dictionary(locale.CommonNamespace), key, lang) {
			metrics.MissingTranslations.WithLabelValues(ns).Inc()
		}
		return v
	}
}

// Domain returns the domain with the given id.
func (c *Catalog) Domain(id string) (*discovery.Domain, error) {
	d, ok := c.domains[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDomain, id)
	}
	return d, nil
}

// Domains returns all domains in configuration order.
func (c *Catalog) Domains() []*discovery.Domain {
	out := make([]*discovery.Domain, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.domains[id])
	}
	return out
}

func (c *Catalog) Registry() *locale.Registry { return c.registry }

// Text resolves key in namespace ns, falling back to the common namespace.
func (c *Catalog) Text(ns, key, lang string) string {
	return countingGetter(c.registry, ns)(key, lang)
}
