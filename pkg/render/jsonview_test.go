package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/sparqlconsole/pkg/results"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestPrettyJSON_SubjectPredicateObject(t *testing.T) {
	pretty, err := PrettyJSON(spoResult(t).ToPlain())
	require.NoError(t, err)

	newGoldie(t).Assert(t, "spo_pretty", []byte(pretty))
}

func TestPrettyJSON_Idempotent(t *testing.T) {
	r, err := results.New([]string{"x", "label"}, []results.Binding{
		{
			"x":     results.NewTypedLiteral("3.14", results.XSDDecimal),
			"label": results.NewLangLiteral(`a "quoted" <b> & c`, "en"),
		},
		{},
	})
	require.NoError(t, err)

	first, err := PrettyJSON(r.ToPlain())
	require.NoError(t, err)

	reparsed, err := ReparseJSON(first)
	require.NoError(t, err)

	second, err := PrettyJSON(reparsed)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPrettyJSON_Layout(t *testing.T) {
	pretty, err := PrettyJSON(map[string]any{
		"b": []any{},
		"a": map[string]any{},
		"c": []any{1, "x<y"},
	})
	require.NoError(t, err)

	want := `{
  "a": {},
  "b": [],
  "c": [
    1,
    "x<y"
  ]
}`
	assert.Equal(t, want, pretty)
}

func TestHighlight_Classes(t *testing.T) {
	src := `{"k": "v", "n": -1.5e3, "t": true, "f": false, "z": null}`

	var got []Segment
	for _, s := range Highlight(src) {
		if s.Class != ClassNone {
			got = append(got, s)
		}
	}

	want := []Segment{
		{ClassPunct, "{"},
		{ClassKey, `"k"`}, {ClassPunct, ":"}, {ClassString, `"v"`}, {ClassPunct, ","},
		{ClassKey, `"n"`}, {ClassPunct, ":"}, {ClassNumber, "-1.5e3"}, {ClassPunct, ","},
		{ClassKey, `"t"`}, {ClassPunct, ":"}, {ClassBoolean, "true"}, {ClassPunct, ","},
		{ClassKey, `"f"`}, {ClassPunct, ":"}, {ClassBoolean, "false"}, {ClassPunct, ","},
		{ClassKey, `"z"`}, {ClassPunct, ":"}, {ClassNull, "null"},
		{ClassPunct, "}"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}
}

func TestHighlight_StringsAreOpaque(t *testing.T) {
	src := `{"a \"key\": true": "value, {with} [punct]: null \\"}`

	segs := Highlight(src)
	require.Len(t, segs, 6)
	assert.Equal(t, ClassKey, segs[1].Class)
	assert.Equal(t, `"a \"key\": true"`, segs[1].Text)
	assert.Equal(t, ClassString, segs[4].Class)
	assert.Equal(t, `"value, {with} [punct]: null \\"`, segs[4].Text)
}

func TestHighlightHTML_StripTagsRoundTrip(t *testing.T) {
	inputs := []string{
		`{}`,
		`{"x": "<b>&amp;</b>"}`,
		`[1, "a \"q\"", null, true]`,
		`{"nested": {"list": ["&lt;", "'"]}}`,
	}

	pretty, err := PrettyJSON(spoResult(t).ToPlain())
	require.NoError(t, err)
	inputs = append(inputs, pretty)

	for _, src := range inputs {
		assert.Equal(t, src, Join(Highlight(src)))

		out := HighlightHTML(src)
		assert.NotContains(t, out, "<b>")
		assert.Equal(t, src, StripTags(out))
	}
}

func TestHighlightHTML_Spans(t *testing.T) {
	out := HighlightHTML(`{"k": 1}`)
	assert.Equal(t,
		`<span class="json-punct">{</span><span class="json-key">&#34;k&#34;</span><span class="json-punct">:</span> <span class="json-number">1</span><span class="json-punct">}</span>`,
		out)
}
