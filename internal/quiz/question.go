// Package quiz drives the question flow that fills a filter state one
// dimension at a time.
package quiz

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/david/support-finder/internal/locale"
	"github.com/david/support-finder/internal/models"
)

// Answer is one selectable option. Only Key is written into the filter state;
// the label is for display.
type Answer struct {
	Key      string               `json:"key" yaml:"key"`
	Label    models.LocalizedText `json:"label,omitempty" yaml:"label,omitempty"`
	LabelKey string               `json:"labelKey,omitempty" yaml:"label_key,omitempty"`
}

// UnmarshalYAML accepts either a bare string (used as key) or a mapping.
func (a *Answer) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		a.Key = strings.TrimSpace(node.Value)
		return nil
	}
	type plain Answer
	var p plain
	if err := node.Decode(&p); err != nil {
		return fmt.Errorf("decode answer: %w", err)
	}
	*a = Answer(p)
	a.Key = strings.TrimSpace(a.Key)
	return nil
}

// UnmarshalJSON mirrors UnmarshalYAML.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.Key = strings.TrimSpace(s)
		return nil
	}
	type plain Answer
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode answer: %w", err)
	}
	*a = Answer(p)
	a.Key = strings.TrimSpace(a.Key)
	return nil
}

// Text returns the display label. Inline labels win over dictionary keys;
// without either the key itself is shown.
func (a Answer) Text(get locale.Getter, lang string) string {
	if v := a.Label.Text(lang); v != "" {
		return v
	}
	if a.LabelKey != "" && get != nil {
		return get(a.LabelKey, lang)
	}
	return a.Key
}

// Question asks for one value of TargetDimension. Question is a dictionary
// key; literal text works too since unresolved keys come back unchanged.
type Question struct {
	Question        string   `json:"question" yaml:"question"`
	Answers         []Answer `json:"answers" yaml:"answers"`
	TargetDimension string   `json:"targetDimension" yaml:"target"`
}

// Prompt resolves the question text.
func (q Question) Prompt(get locale.Getter, lang string) string {
	if get == nil {
		return q.Question
	}
	return get(q.Question, lang)
}

// Keys returns the answer keys in order.
func (q Question) Keys() []string {
	keys := make([]string, len(q.Answers))
	for i, a := range q.Answers {
		keys[i] = a.Key
	}
	return keys
}
