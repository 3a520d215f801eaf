// Package catalog turns the domain configuration and datasets into the
// immutable discovery domains served by the API.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/david/support-finder/internal/discovery"
	"github.com/david/support-finder/internal/filter"
	"github.com/david/support-finder/internal/quiz"
)

//go:embed config/domains.yaml
var configFS embed.FS

// Config lists every configured domain in display order.
type Config struct {
	Domains []DomainConfig `yaml:"domains"`
}

// DomainConfig describes one support domain.
type DomainConfig struct {
	ID             string                        `yaml:"id"`
	Title          string                        `yaml:"title,omitempty"`     // dictionary key, default "title"
	Namespace      string                        `yaml:"namespace,omitempty"` // default: ID
	Dataset        string                        `yaml:"dataset,omitempty"`   // file under data/, default: <ID>.json
	GermanLearning bool                          `yaml:"german_learning,omitempty"`
	Categories     map[string]discovery.Category `yaml:"categories,omitempty"`
	Quiz           []quiz.Question               `yaml:"quiz,omitempty"`
}

// LoadConfig reads the embedded domains.yaml. When path is non-empty that
// file is read instead, which allows overriding the catalog without a rebuild.
func LoadConfig(path string) (*Config, error) {
	var (
		data []byte
		err  error
	)
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = configFS.ReadFile("config/domains.yaml")
	}
	if err != nil {
		return nil, fmt.Errorf("read domain config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig expands ${VAR} references, decodes the YAML and applies
// defaults.
func ParseConfig(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse domain config: %w", err)
	}
	for i := range cfg.Domains {
		cfg.Domains[i].applyDefaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (d *DomainConfig) applyDefaults() {
	d.ID = strings.TrimSpace(d.ID)
	if d.Title == "" {
		d.Title = "title"
	}
	if d.Namespace == "" {
		d.Namespace = d.ID
	}
	if strings.TrimSpace(d.Dataset) == "" {
		d.Dataset = d.ID + ".json"
	}
	for qi := range d.Quiz {
		q := &d.Quiz[qi]
		for ai := range q.Answers {
			a := &q.Answers[ai]
			if a.LabelKey == "" && a.Label.IsEmpty() {
				a.LabelKey = "quiz." + q.TargetDimension + "." + a.Key
			}
		}
	}
}

// Validate checks ids are present and unique and that every quiz question
// targets a known filter dimension with at least one answer.
func (c *Config) Validate() error {
	if len(c.Domains) == 0 {
		return errors.New("domain config: no domains configured")
	}
	seen := make(map[string]bool, len(c.Domains))
	for _, d := range c.Domains {
		if d.ID == "" {
			return errors.New("domain config: domain without id")
		}
		if seen[d.ID] {
			return fmt.Errorf("domain config: duplicate domain %q", d.ID)
		}
		seen[d.ID] = true

		for i, q := range d.Quiz {
			if !filter.IsKnown(q.TargetDimension) {
				return fmt.Errorf("domain config: %s question %d targets unknown dimension %q", d.ID, i, q.TargetDimension)
			}
			if len(q.Answers) == 0 {
				return fmt.Errorf("domain config: %s question %d has no answers", d.ID, i)
			}
			for _, a := range q.Answers {
				if a.Key == "" {
					return fmt.Errorf("domain config: %s question %d has an answer without key", d.ID, i)
				}
			}
		}
	}
	return nil
}

// Domain returns the configuration for id.
func (c *Config) Domain(id string) (DomainConfig, bool) {
	for _, d := range c.Domains {
		if d.ID == id {
			return d, true
		}
	}
	return DomainConfig{}, false
}
