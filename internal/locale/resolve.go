// Package locale resolves interface translation keys into language-specific
// strings. Lookups never fail: a missing translation falls back to the default
// language and finally to the key itself, so gaps show up in the UI instead
// of breaking it.
package locale

import (
	"strconv"
	"strings"
	"time"
)

// DefaultLanguage is the second step of every fallback chain.
const DefaultLanguage = "de"

// Languages lists the language codes the app ships translations for.
var Languages = []string{"de", "en", "ar", "fa", "uk", "ru", "tr", "so", "ti", "fr"}

// Dictionary maps keys either to nested dictionaries or to translation leaves.
// A leaf is a map of language code to string, or a plain string that applies
// to every language.
type Dictionary map[string]any

// Getter resolves keys against one fixed dictionary.
type Getter func(key, lang string) string

// Resolve returns the translation of key in lang. Resolution order: lang,
// then DefaultLanguage, then the literal key.
func Resolve(dict Dictionary, key, lang string) string {
	if v, ok := lookup(dict, key, lang); ok {
		return v
	}
	return key
}

// Missing reports whether Resolve would fall through to the literal key.
func Missing(dict Dictionary, key, lang string) bool {
	_, ok := lookup(dict, key, lang)
	return !ok
}

func lookup(dict Dictionary, key, lang string) (string, bool) {
	if dict == nil || key == "" {
		return "", false
	}
	lang = NormalizeLanguage(lang)
	if leaf, ok := dict[key]; ok {
		if v, ok := translate(leaf, lang); ok {
			return v, true
		}
	}
	if !strings.Contains(key, ".") {
		return "", false
	}
	leaf, ok := walk(dict, strings.Split(key, "."))
	if !ok {
		return "", false
	}
	return translate(leaf, lang)
}

func walk(dict Dictionary, path []string) (any, bool) {
	var node any = map[string]any(dict)
	for _, seg := range path {
		m, ok := asMap(node)
		if !ok {
			return nil, false
		}
		node, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

func translate(leaf any, lang string) (string, bool) {
	switch v := leaf.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return "", false
		}
		return v, true
	case map[string]string:
		return pick(func(l string) (string, bool) { s, ok := v[l]; return s, ok }, lang)
	default:
		m, ok := asMap(leaf)
		if !ok {
			s, ok := scalarText(leaf)
			return s, ok && s != ""
		}
		return pick(func(l string) (string, bool) { return scalarText(m[l]) }, lang)
	}
}

// scalarText renders a non-container leaf. Numbers, booleans and dates are
// valid translations ("10", "2024-03-01").
func scalarText(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case int:
		return strconv.Itoa(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	case uint64:
		return strconv.FormatUint(s, 10), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(s), true
	case time.Time:
		if s.Equal(s.Truncate(24 * time.Hour)) {
			return s.Format(time.DateOnly), true
		}
		return s.Format(time.RFC3339), true
	}
	return "", false
}

func pick(get func(string) (string, bool), lang string) (string, bool) {
	for _, l := range []string{lang, DefaultLanguage} {
		if s, ok := get(l); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

func asMap(node any) (map[string]any, bool) {
	switch m := node.(type) {
	case map[string]any:
		return m, true
	case Dictionary:
		return m, true
	}
	return nil, false
}

// NormalizeLanguage lowercases a language tag and drops its region,
// so "en-GB" and "EN_us" both become "en". Empty input yields DefaultLanguage.
func NormalizeLanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i >= 0 {
		code = code[:i]
	}
	if code == "" {
		return DefaultLanguage
	}
	return code
}

// Supported reports whether lang is one of Languages.
func Supported(lang string) bool {
	lang = NormalizeLanguage(lang)
	for _, l := range Languages {
		if l == lang {
			return true
		}
	}
	return false
}
