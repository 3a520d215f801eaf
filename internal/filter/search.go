package filter

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/david/support-finder/internal/models"
)

// Search keeps entities whose title, subtitle or specializations contain
// every word of query, ignoring case and accents. The requested language is
// searched first, then every other translation. An empty query keeps all.
func Search(entities []models.Entity, query, lang string) []models.Entity {
	terms := strings.Fields(fold(query))
	out := make([]models.Entity, 0, len(entities))
	for _, e := range entities {
		if len(terms) == 0 || containsAll(haystack(e, lang), terms) {
			out = append(out, e)
		}
	}
	return out
}

func haystack(e models.Entity, lang string) string {
	var b strings.Builder
	b.WriteString(e.Title.Text(lang))
	b.WriteByte(' ')
	b.WriteString(e.Subtitle.Text(lang))
	for _, t := range []models.LocalizedText{e.Title, e.Subtitle} {
		for _, v := range t {
			b.WriteByte(' ')
			b.WriteString(v)
		}
	}
	for _, s := range e.Specializations {
		b.WriteByte(' ')
		b.WriteString(s)
	}
	return fold(b.String())
}

func containsAll(text string, terms []string) bool {
	for _, t := range terms {
		if !strings.Contains(text, t) {
			return false
		}
	}
	return true
}

// fold lowercases and strips combining marks (Ö -> o, é -> e).
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}
