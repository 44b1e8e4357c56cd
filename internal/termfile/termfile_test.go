package termfile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFile = `# Weather widget terminology.
version: 3
labels:
  - name: "temperature"
    context: "shown on the main dial"
    translations:
      - en: "temperature"
      - fr: "température"
      - de: "Temperatur"
  - name: "humidity"
    translations:
      - en: "humidity"
      - fr: "humidité"
`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(sampleFile))
	require.NoError(t, err)

	labels := doc.Labels()
	require.Len(t, labels, 2)
	assert.Equal(t, "temperature", labels[0].Name)
	assert.Equal(t, "humidity", labels[1].Name)

	entries := labels[0].Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, LanguageEntry{Language: "en", Term: "temperature"}, entries[0])
	assert.Equal(t, LanguageEntry{Language: "fr", Term: "température"}, entries[1])
	assert.Equal(t, LanguageEntry{Language: "de", Term: "Temperatur"}, entries[2])
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "empty"},
		{"scalar top level", "just a string\n", "mapping at the top level"},
		{"sequence top level", "- a\n- b\n", "mapping at the top level"},
		{"no labels key", "version: 1\n", "no labels list"},
		{"labels not a sequence", "labels: oops\n", "must be a sequence"},
		{"broken yaml", "labels: [\n", "parse terminology file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseSkipsMalformedLabels(t *testing.T) {
	in := `labels:
  - "not a mapping"
  - translations:
      - en: "orphan"
  - name: "valid"
    translations:
      - en: "valid"
`
	doc, err := Parse([]byte(in))
	require.NoError(t, err)
	require.Len(t, doc.Labels(), 1)
	assert.Equal(t, "valid", doc.Labels()[0].Name)
}

func TestLabelByName(t *testing.T) {
	doc, err := Parse([]byte(sampleFile))
	require.NoError(t, err)

	label, ok := doc.LabelByName("humidity")
	require.True(t, ok)
	assert.Equal(t, "humidity", label.Name)

	_, ok = doc.LabelByName("pressure")
	assert.False(t, ok)
}

func TestLabelByNameFirstWins(t *testing.T) {
	in := `labels:
  - name: "dup"
    translations:
      - en: "first"
  - name: "dup"
    translations:
      - en: "second"
`
	doc, err := Parse([]byte(in))
	require.NoError(t, err)

	label, ok := doc.LabelByName("dup")
	require.True(t, ok)
	term, ok := label.Term("en")
	require.True(t, ok)
	assert.Equal(t, "first", term)
}

func TestTerm(t *testing.T) {
	doc, err := Parse([]byte(sampleFile))
	require.NoError(t, err)
	label, ok := doc.LabelByName("temperature")
	require.True(t, ok)

	term, ok := label.Term("fr")
	require.True(t, ok)
	assert.Equal(t, "température", term)

	_, ok = label.Term("es")
	assert.False(t, ok)
}

func TestSetTerm(t *testing.T) {
	doc, err := Parse([]byte(sampleFile))
	require.NoError(t, err)
	label, ok := doc.LabelByName("temperature")
	require.True(t, ok)

	require.True(t, label.SetTerm("fr", "chaleur"))
	term, ok := label.Term("fr")
	require.True(t, ok)
	assert.Equal(t, "chaleur", term)

	// Languages without an existing slot are refused, not invented.
	assert.False(t, label.SetTerm("es", "temperatura"))
	_, ok = label.Term("es")
	assert.False(t, ok)
}

func TestSerializePreservesUnknownContent(t *testing.T) {
	doc, err := Parse([]byte(sampleFile))
	require.NoError(t, err)

	label, ok := doc.LabelByName("temperature")
	require.True(t, ok)
	require.True(t, label.SetTerm("fr", "chaleur"))

	out, err := doc.Serialize()
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, "# Weather widget terminology.")
	assert.Contains(t, text, "version: 3")
	assert.Contains(t, text, `context: "shown on the main dial"`)
	assert.Contains(t, text, `"chaleur"`)
	assert.NotContains(t, text, "température")
	// Untouched labels survive verbatim.
	assert.Contains(t, text, `"humidité"`)
}

func TestSerializeStableAcrossRoundTrips(t *testing.T) {
	doc, err := Parse([]byte(sampleFile))
	require.NoError(t, err)
	first, err := doc.Serialize()
	require.NoError(t, err)

	doc2, err := Parse(first)
	require.NoError(t, err)
	second, err := doc2.Serialize()
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestSerializeQuotesValuesNotKeys(t *testing.T) {
	doc, err := Parse([]byte(sampleFile))
	require.NoError(t, err)
	out, err := doc.Serialize()
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, `name: "temperature"`)
	assert.Contains(t, text, `en: "temperature"`)
	assert.False(t, strings.Contains(text, `"name":`), "keys must stay plain")
}
