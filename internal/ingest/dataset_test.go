package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDataset_KeepsMapOrder(t *testing.T) {
	raw, err := DecodeDataset([]byte(`{
		"zeta":  {"title": {"de": "Z"}, "online": true},
		"alpha": {"title": {"de": "A"}, "level": ["A1", "A2"]},
		"mid":   {"id": 7}
	}`))
	require.NoError(t, err)

	entities, rep := NormalizeWithReport(raw)
	assert.Equal(t, ShapeIDMap, rep.Shape)
	require.Len(t, entities, 3)
	assert.Equal(t, "zeta", entities[0].ID)
	assert.True(t, entities[0].Online)
	assert.Equal(t, "alpha", entities[1].ID)
	assert.Equal(t, []string{"A1", "A2"}, entities[1].Level)
	assert.Equal(t, "7", entities[2].ID)
}

func TestDecodeDataset_YAMLEnvelope(t *testing.T) {
	raw, err := DecodeDataset([]byte(`
entities:
  - id: one
    title:
      de: Eins
      en: One
    supportTypes: [legal]
  - title: no id here
`))
	require.NoError(t, err)

	entities, rep := NormalizeWithReport(raw)
	assert.Equal(t, ShapeEnvelope, rep.Shape)
	assert.Equal(t, 1, rep.MissingID)
	require.Len(t, entities, 1)
	assert.Equal(t, "One", entities[0].Title.Text("en"))
	assert.Equal(t, "legal", entities[0].Category)
}

func TestDecodeDataset_JSONOnlySyntax(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantID  string
		wantURL string
	}{
		{
			name:    "escaped solidus",
			input:   `[{"id": "a", "website": "https:\/\/x.at"}]`,
			wantID:  "a",
			wantURL: "https://x.at",
		},
		{
			name:    "tab indentation",
			input:   "{\n\t\"entities\": [\n\t\t{\"id\": \"b\", \"url\": \"https://b.at\"}\n\t]\n}",
			wantID:  "b",
			wantURL: "https://b.at",
		},
		{
			name:   "unicode escape",
			input:  `[{"id": "caf\u00e9"}]`,
			wantID: "café",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := DecodeDataset([]byte(tt.input))
			require.NoError(t, err)

			entities := Normalize(raw)
			require.Len(t, entities, 1)
			assert.Equal(t, tt.wantID, entities[0].ID)
			assert.Equal(t, tt.wantURL, entities[0].Contact.Website)
		})
	}
}

func TestDecodeDataset_LargeNumericIDs(t *testing.T) {
	inputs := map[string]string{
		"json": `[{"id": 12345678901234567890}]`,
		"yaml": "- id: 12345678901234567890\n",
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			raw, err := DecodeDataset([]byte(input))
			require.NoError(t, err)

			entities, rep := NormalizeWithReport(raw)
			assert.Equal(t, 1, rep.Kept)
			assert.Zero(t, rep.MissingID)
			require.Len(t, entities, 1)
			assert.Equal(t, "12345678901234567890", entities[0].ID)
		})
	}
}

func TestDecodeDataset_Errors(t *testing.T) {
	_, err := DecodeDataset([]byte(""))
	assert.Error(t, err)

	_, err = DecodeDataset([]byte("{unclosed"))
	assert.Error(t, err)
}

func TestObject(t *testing.T) {
	o := Object{{Key: "a", Value: 1}, {Key: "b", Value: 2}, {Key: "a", Value: 3}}
	v, ok := o.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, map[string]any{"a": 3, "b": 2}, o.Map())
}
