package locale

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDictionary() Dictionary {
	return Dictionary{
		"greeting": map[string]any{"de": "Hallo", "en": "Hello", "ar": ""},
		"quiz": map[string]any{
			"urgency": map[string]any{
				"question": map[string]any{"de": "Wie dringend?", "uk": "Наскільки терміново?"},
			},
		},
		"filters.all": map[string]any{"de": "Alle (flach)"},
		"filters": map[string]any{
			"all":  map[string]any{"de": "Alle", "en": "All"},
			"none": map[string]any{"en": "None"},
		},
		"brand": "Support Finder",
	}
}

func TestResolve(t *testing.T) {
	dict := testDictionary()

	tests := []struct {
		name string
		key  string
		lang string
		want string
	}{
		{name: "exact language", key: "greeting", lang: "en", want: "Hello"},
		{name: "falls back to german", key: "greeting", lang: "fa", want: "Hallo"},
		{name: "empty translation falls back", key: "greeting", lang: "ar", want: "Hallo"},
		{name: "nested path", key: "quiz.urgency.question", lang: "uk", want: "Наскільки терміново?"},
		{name: "nested path german fallback", key: "quiz.urgency.question", lang: "en", want: "Wie dringend?"},
		{name: "flat dotted key wins", key: "filters.all", lang: "en", want: "Alle (flach)"},
		{name: "no german and no match returns key", key: "filters.none", lang: "tr", want: "filters.none"},
		{name: "missing key returns key", key: "does.not.exist", lang: "en", want: "does.not.exist"},
		{name: "path into leaf returns key", key: "greeting.de.extra", lang: "de", want: "greeting.de.extra"},
		{name: "plain string leaf", key: "brand", lang: "uk", want: "Support Finder"},
		{name: "region subtag stripped", key: "greeting", lang: "en-GB", want: "Hello"},
		{name: "empty language means german", key: "greeting", lang: "", want: "Hallo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(dict, tt.key, tt.lang))
		})
	}
}

func TestResolve_IsTotal(t *testing.T) {
	keys := []string{"greeting", "quiz", "quiz.urgency", "x", "a.b.c", ".", "..", "filters."}
	langs := []string{"", "de", "en", "xx", "ZH-hant"}
	for _, dict := range []Dictionary{nil, {}, testDictionary()} {
		for _, key := range keys {
			for _, lang := range langs {
				got := Resolve(dict, key, lang)
				assert.NotEmpty(t, got, "key=%q lang=%q", key, lang)
			}
		}
	}
}

func TestMissing(t *testing.T) {
	dict := testDictionary()
	assert.False(t, Missing(dict, "greeting", "en"))
	assert.True(t, Missing(dict, "greeting.nope", "en"))
	assert.True(t, Missing(nil, "greeting", "en"))
}

func TestNormalizeLanguage(t *testing.T) {
	assert.Equal(t, "en", NormalizeLanguage("EN_us"))
	assert.Equal(t, "de", NormalizeLanguage("  "))
	assert.Equal(t, "uk", NormalizeLanguage("uk"))
	assert.True(t, Supported("fa-IR"))
	assert.False(t, Supported("xx"))
}

func TestLoadRegistry(t *testing.T) {
	fsys := fstest.MapFS{
		"dict/common.yaml": {Data: []byte("buttons:\n  skip:\n    de: Überspringen\n    en: Skip\n")},
		"dict/legal.json":  {Data: []byte(`{"title": {"de": "<b>Recht</b> & Beratung", "en": "Legal"}}`)},
		"dict/README.md":   {Data: []byte("ignored")},
	}

	reg, err := LoadRegistry(fsys, "dict")
	require.NoError(t, err)
	assert.Equal(t, []string{"common", "legal"}, reg.Namespaces())

	assert.Equal(t, "Recht & Beratung", reg.Resolve("legal", "title", "de"))
	assert.Equal(t, "title", reg.Resolve("unknown", "title", "de"))

	legal := reg.Namespace("legal")
	assert.Equal(t, "Legal", legal("title", "en"))
	assert.Equal(t, "Skip", legal("buttons.skip", "en"), "falls back to the common namespace")
	assert.Equal(t, "quiz.missing", legal("quiz.missing", "en"))
}

func TestLoadRegistry_ScalarLeaves(t *testing.T) {
	fsys := fstest.MapFS{
		"dict/stats.yaml":   {Data: []byte("count:\n  de: 10\n  en: ten\nratio: 0.5\nopen: true\n")},
		"dict/escaped.json": {Data: []byte(`{"link": {"de": "https:\/\/beratung.at", "en": 3}}`)},
	}

	reg, err := LoadRegistry(fsys, "dict")
	require.NoError(t, err)

	tests := []struct {
		ns, key, lang, want string
	}{
		{"stats", "count", "fr", "10"},
		{"stats", "count", "en", "ten"},
		{"stats", "ratio", "de", "0.5"},
		{"stats", "open", "uk", "true"},
		{"escaped", "link", "de", "https://beratung.at"},
		{"escaped", "link", "en", "3"},
	}
	for _, tt := range tests {
		t.Run(tt.ns+"."+tt.key+"/"+tt.lang, func(t *testing.T) {
			assert.Equal(t, tt.want, reg.Resolve(tt.ns, tt.key, tt.lang))
		})
	}
}

func TestResolve_NumericLeafWithoutLoading(t *testing.T) {
	reg := NewRegistry()
	reg.Register("stats", Dictionary{"count": map[string]any{"de": 10, "en": "ten"}, "year": 2024})

	assert.Equal(t, "10", reg.Resolve("stats", "count", "fr"))
	assert.Equal(t, "2024", reg.Resolve("stats", "year", "en"))
}

func TestEmbedded(t *testing.T) {
	reg, err := Embedded()
	require.NoError(t, err)

	assert.Contains(t, reg.Namespaces(), CommonNamespace)
	assert.Equal(t, "Hilfe in Österreich", reg.Resolve(CommonNamespace, "app.title", "fa"))
	assert.Equal(t, "Wobei brauchst du Hilfe?", reg.Namespace("legal")("quiz.supportType.question", "tr"))
}
