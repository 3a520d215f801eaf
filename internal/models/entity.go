package models

import (
	"sort"
	"strings"
)

// DefaultLanguage is the locale every localized lookup falls back to.
const DefaultLanguage = "de"

// Location sentinels. Anything else is a concrete place name.
const (
	LocationOnline     = "Online"
	LocationNationwide = "Nationwide"
	LocationAllAustria = "all-austria"
	LocationAnywhere   = "anywhere"
)

const (
	UrgencyUrgent    = "urgent"
	UrgencyNonUrgent = "non-urgent"
)

// DefaultCategory is used when a record carries no support types.
const DefaultCategory = "general"

// LocalizedText is pre-translated content keyed by language code.
type LocalizedText map[string]string

// Text returns the value for lang, falling back to German, then English,
// then the first non-empty value in key order. Empty when nothing is set.
func (t LocalizedText) Text(lang string) string {
	if v := strings.TrimSpace(t[lang]); v != "" {
		return v
	}
	if v := strings.TrimSpace(t[DefaultLanguage]); v != "" {
		return v
	}
	if v := strings.TrimSpace(t["en"]); v != "" {
		return v
	}
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := strings.TrimSpace(t[k]); v != "" {
			return v
		}
	}
	return ""
}

// IsEmpty reports whether no language has a non-blank value.
func (t LocalizedText) IsEmpty() bool {
	return t.Text(DefaultLanguage) == ""
}

type Contact struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`
	Address string `json:"address,omitempty"`
}

// Entity is one support-service or course listing.
type Entity struct {
	ID              string        `json:"id"`
	Title           LocalizedText `json:"title"`
	Subtitle        LocalizedText `json:"subtitle,omitempty"`
	Category        string        `json:"category"`
	Location        string        `json:"location"`
	SupportTypes    []string      `json:"supportTypes"`
	SupportType     string        `json:"supportType"` // legacy singular, first of SupportTypes
	Type            string        `json:"type,omitempty"`
	Specializations []string      `json:"specializations,omitempty"`
	Contact         Contact       `json:"contact"`

	Urgency string   `json:"urgency"`
	Level   []string `json:"level,omitempty"`
	Online  bool     `json:"online"`
	Cost    string   `json:"cost,omitempty"`

	ForWomen               bool `json:"forWomen"`
	ForYoungMigrants       bool `json:"forYoungMigrants"`
	Childcare              bool `json:"childcare"`
	IntegrationRequirement bool `json:"integrationRequirement"`
}

// HasSupportType reports whether tag is one of the entity's support types.
func (e Entity) HasSupportType(tag string) bool {
	for _, t := range e.SupportTypes {
		if t == tag {
			return true
		}
	}
	return false
}
