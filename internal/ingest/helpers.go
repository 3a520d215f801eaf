package ingest

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/david/support-finder/internal/models"
)

// record is a flattened view of one raw entity, whatever shape it came in.
type record map[string]any

// first returns the value of the first key present in r.
func (r record) first(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (r record) str(keys ...string) string {
	v, _ := r.first(keys...)
	return asString(v)
}

func (r record) flag(keys ...string) bool {
	v, _ := r.first(keys...)
	return asBool(v)
}

func (r record) list(keys ...string) []string {
	var out []string
	for _, k := range keys {
		if v, ok := r[k]; ok {
			out = mergeUniqueFold(out, asStringList(v))
		}
	}
	return out
}

func (r record) text(keys ...string) models.LocalizedText {
	v, _ := r.first(keys...)
	return asLocalized(v)
}

// asRecord accepts the mapping types a dataset can hold.
func asRecord(v any) (record, bool) {
	switch m := v.(type) {
	case Object:
		return record(m.Map()), true
	case map[string]any:
		return record(m), true
	case record:
		return m, true
	}
	return nil, false
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return cleanText(s)
	case int:
		return strconv.Itoa(s)
	case int32:
		return strconv.FormatInt(int64(s), 10)
	case int64:
		return strconv.FormatInt(s, 10)
	case uint:
		return strconv.FormatUint(uint64(s), 10)
	case uint64:
		return strconv.FormatUint(s, 10)
	case json.Number:
		return s.String()
	case float64:
		if s == math.Trunc(s) && math.Abs(s) < 1e15 {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	case fmt.Stringer:
		return cleanText(s.String())
	}
	return ""
}

func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes", "ja", "1":
			return true
		}
	case int:
		return b != 0
	case float64:
		return b != 0
	}
	return false
}

// asStringList accepts a single string, a comma separated string or a list.
func asStringList(v any) []string {
	switch l := v.(type) {
	case nil:
		return nil
	case string:
		if strings.Contains(l, ",") {
			return mergeUniqueFold(nil, strings.Split(l, ","))
		}
		return mergeUniqueFold(nil, []string{l})
	case []string:
		return mergeUniqueFold(nil, l)
	case []any:
		items := make([]string, 0, len(l))
		for _, item := range l {
			items = append(items, asString(item))
		}
		return mergeUniqueFold(nil, items)
	}
	if s := asString(v); s != "" {
		return []string{s}
	}
	return nil
}

// asLocalized turns a language map into LocalizedText. A bare string is
// stored under the default language.
func asLocalized(v any) models.LocalizedText {
	if s, ok := v.(string); ok {
		if s = cleanMarkup(s); s != "" {
			return models.LocalizedText{models.DefaultLanguage: s}
		}
		return nil
	}
	var m map[string]any
	switch t := v.(type) {
	case Object:
		m = t.Map()
	case map[string]any:
		m = t
	case map[string]string:
		m = make(map[string]any, len(t))
		for k, s := range t {
			m[k] = s
		}
	case models.LocalizedText:
		m = make(map[string]any, len(t))
		for k, s := range t {
			m[k] = s
		}
	default:
		return nil
	}

	out := make(models.LocalizedText, len(m))
	for lang, raw := range m {
		if s := cleanMarkup(asString(raw)); s != "" {
			out[strings.ToLower(lang)] = s
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// cleanMarkup strips HTML from strings that look like they carry some.
func cleanMarkup(s string) string {
	if strings.ContainsAny(s, "<>&") {
		return HTMLToText(s)
	}
	return cleanText(s)
}

// normalizeSpace collapses multiple spaces into one and trims the string.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cleanText normalizes whitespace (alias for normalizeSpace)
func cleanText(s string) string {
	return normalizeSpace(s)
}

func mergeUniqueFold(dst []string, items []string) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, v := range dst {
		k := strings.ToLower(strings.TrimSpace(v))
		if k != "" {
			seen[k] = struct{}{}
		}
	}

	for _, v := range items {
		v = cleanText(v)
		if v == "" {
			continue
		}
		k := strings.ToLower(v)
		if _, ok := seen[k]; ok {
			continue
		}
		dst = append(dst, v)
		seen[k] = struct{}{}
	}

	return dst
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
