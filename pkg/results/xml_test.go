package results

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestFormatXML_SubjectPredicateObject(t *testing.T) {
	r, err := Parse([]byte(spoJSON))
	require.NoError(t, err)

	out := r.FormatXML()
	assert.Equal(t, 1, strings.Count(string(out), "<result>"))
	assert.Equal(t, 3, strings.Count(string(out), "<uri>"))

	newGoldie(t).Assert(t, "spo", out)
}

func TestFormatXML_MixedKinds(t *testing.T) {
	r, err := New([]string{"name", "age", "node", "missing"}, []Binding{
		{
			"name": NewLangLiteral(`Tom & "Jerry" <'cat'>`, "en"),
			"age":  NewTypedLiteral("7", XSDInteger),
			"node": NewBNode("b0"),
		},
		{
			"name": NewLiteral("plain"),
		},
	})
	require.NoError(t, err)

	newGoldie(t).Assert(t, "mixed", r.FormatXML())
}

func TestFormatXML_Ask(t *testing.T) {
	want := `<?xml version="1.0" encoding="UTF-8"?>
<sparql xmlns="http://www.w3.org/2005/sparql-results#">
  <head/>
  <boolean>false</boolean>
</sparql>
`
	assert.Equal(t, want, string(NewBoolean(false).FormatXML()))
}

func TestFormatXML_Deterministic(t *testing.T) {
	rows := make([]Binding, 0, 20)
	for i := 0; i < 20; i++ {
		rows = append(rows, Binding{
			"a": NewURI("http://ex/a"),
			"b": NewLiteral("b"),
			"c": NewBNode("c"),
			"d": NewTypedLiteral("1", XSDInteger),
		})
	}
	r, err := New([]string{"d", "c", "b", "a"}, rows)
	require.NoError(t, err)

	first := r.FormatXML()
	for i := 0; i < 10; i++ {
		assert.True(t, bytes.Equal(first, r.FormatXML()))
	}
	// declared order, not map order
	assert.Less(t, bytes.Index(first, []byte(`name="d"`)), bytes.Index(first, []byte(`name="a"`)))
}

func TestXMLRoundTrip(t *testing.T) {
	r, err := New([]string{"z", "y", "x"}, []Binding{
		{"z": NewURI("http://ex/z?a=1&b=2"), "x": NewLangLiteral("é <b>", "fr")},
		{"y": NewTypedLiteral("true", XSDBoolean)},
		{"x": NewBNode("node'1"), "y": NewLiteral("")},
		{"y": NewLiteral("line 1\r\nline 2\rline 3\n")},
		{},
	})
	require.NoError(t, err)

	back, err := ParseXML(bytes.NewReader(r.FormatXML()))
	require.NoError(t, err)

	assert.Equal(t, r.Variables(), back.Variables())
	require.Equal(t, r.Len(), back.Len())
	for i := 0; i < r.Len(); i++ {
		if diff := cmp.Diff(r.Row(i), back.Row(i)); diff != "" {
			t.Errorf("row %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestXMLRoundTrip_Ask(t *testing.T) {
	back, err := ParseXML(bytes.NewReader(NewBoolean(true).FormatXML()))
	require.NoError(t, err)

	value, ok := back.Boolean()
	assert.True(t, ok)
	assert.True(t, value)
}

func TestParseXML_Malformed(t *testing.T) {
	_, err := ParseXML(strings.NewReader("<sparql><head>"))
	assert.ErrorIs(t, err, ErrInvalidResultShape)

	_, err = ParseXML(strings.NewReader(`<sparql xmlns="http://www.w3.org/2005/sparql-results#"><head/></sparql>`))
	assert.ErrorIs(t, err, ErrInvalidResultShape)

	_, err = ParseXML(strings.NewReader(`<sparql><head><variable name="x"/></head><results><result><binding name="x"/></result></results></sparql>`))
	assert.ErrorIs(t, err, ErrInvalidResultShape)
}

func TestEscapeXML(t *testing.T) {
	assert.Equal(t, "&amp;&lt;&gt;&quot;&apos;", EscapeXML(`&<>"'`))
	assert.Equal(t, "&amp;amp;", EscapeXML("&amp;"))
	assert.Equal(t, "a&#xD;\nb", EscapeXML("a\r\nb"))
}
