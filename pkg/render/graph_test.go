package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/sparqlconsole/pkg/results"
)

var ignoreIndex = cmpopts.IgnoreUnexported(GraphModel{})

func TestExtractGraph_SubjectPredicateObject(t *testing.T) {
	g := ExtractGraph(spoResult(t), DefaultMaxBindings)

	want := &GraphModel{
		Nodes: []GraphNode{
			{ID: "http://ex/1", Label: "1", Role: RoleSubject},
			{ID: "http://ex/2", Label: "2", Role: RoleObject},
		},
		Edges: []GraphEdge{
			{Source: "http://ex/1", Target: "http://ex/2", Label: "knows"},
		},
		ProcessedBindings: 1,
	}
	if diff := cmp.Diff(want, g, ignoreIndex); diff != "" {
		t.Errorf("graph mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractGraph_LimitReached(t *testing.T) {
	rows := make([]results.Binding, 101)
	for i := range rows {
		rows[i] = results.Binding{
			"subject": results.NewURI(fmt.Sprintf("http://ex/s%d", i)),
			"object":  results.NewURI(fmt.Sprintf("http://ex/o%d", i)),
		}
	}
	r, err := results.New([]string{"subject", "object"}, rows)
	require.NoError(t, err)

	g := ExtractGraph(r, 100)
	assert.True(t, g.LimitReached)
	assert.Len(t, g.Edges, 100)
	assert.Equal(t, 100, g.ProcessedBindings)
	assert.Len(t, g.Nodes, 200)
}

func TestExtractGraph_ExactlyAtLimit(t *testing.T) {
	rows := make([]results.Binding, 3)
	for i := range rows {
		rows[i] = results.Binding{
			"s": results.NewURI(fmt.Sprintf("http://ex/s%d", i)),
			"o": results.NewLiteral(fmt.Sprint(i)),
		}
	}
	r, err := results.New([]string{"s", "o"}, rows)
	require.NoError(t, err)

	g := ExtractGraph(r, 3)
	assert.False(t, g.LimitReached)
	assert.Len(t, g.Edges, 3)
}

func TestExtractGraph_NameMatching(t *testing.T) {
	r, err := results.New([]string{"theSubject", "PREDICATE", "objectValue"}, []results.Binding{{
		"theSubject":  results.NewURI("http://ex/a"),
		"PREDICATE":   results.NewURI("http://ex/vocab#likes"),
		"objectValue": results.NewLangLiteral("pizza", "en"),
	}})
	require.NoError(t, err)

	g := ExtractGraph(r, DefaultMaxBindings)
	require.Len(t, g.Edges, 1)
	assert.Equal(t, "likes", g.Edges[0].Label)

	obj, ok := g.Node("pizza")
	require.True(t, ok)
	assert.True(t, obj.IsLiteral)
	assert.Equal(t, RoleObject, obj.Role)
}

func TestExtractGraph_FallbackPair(t *testing.T) {
	r, err := results.New([]string{"book", "label", "author", "extra"}, []results.Binding{{
		"book":   results.NewURI("http://ex/book/1"),
		"label":  results.NewLiteral("A Book"),
		"author": results.NewURI("http://ex/person/2"),
		"extra":  results.NewURI("http://ex/thing/3"),
	}})
	require.NoError(t, err)

	g := ExtractGraph(r, DefaultMaxBindings)

	require.Len(t, g.Edges, 1)
	assert.Equal(t, GraphEdge{Source: "http://ex/book/1", Target: "http://ex/person/2"}, g.Edges[0])
	require.Len(t, g.Nodes, 3)

	book, _ := g.Node("http://ex/book/1")
	author, _ := g.Node("http://ex/person/2")
	extra, _ := g.Node("http://ex/thing/3")
	assert.Equal(t, RoleSubject, book.Role)
	assert.Equal(t, RoleObject, author.Role)
	assert.Equal(t, RoleGeneric, extra.Role)
}

func TestExtractGraph_NamedWithoutPairAddsNoEdge(t *testing.T) {
	r, err := results.New([]string{"s", "a", "b"}, []results.Binding{{
		"s": results.NewURI("http://ex/s"),
		"a": results.NewURI("http://ex/a"),
		"b": results.NewURI("http://ex/b"),
	}})
	require.NoError(t, err)

	g := ExtractGraph(r, DefaultMaxBindings)
	assert.Empty(t, g.Edges)
	assert.Len(t, g.Nodes, 2)
}

func TestExtractGraph_RolesNeverDemoted(t *testing.T) {
	r, err := results.New([]string{"s", "o", "other"}, []results.Binding{
		{
			"s": results.NewURI("http://ex/a"),
			"o": results.NewURI("http://ex/b"),
		},
		{
			"other": results.NewURI("http://ex/a"),
		},
		{
			"s": results.NewURI("http://ex/b"),
			"o": results.NewURI("http://ex/c"),
		},
	})
	require.NoError(t, err)

	g := ExtractGraph(r, DefaultMaxBindings)

	a, _ := g.Node("http://ex/a")
	b, _ := g.Node("http://ex/b")
	assert.Equal(t, RoleSubject, a.Role)
	assert.Equal(t, RoleObject, b.Role)
}

func TestExtractGraph_NodesUniqueAndEdgesResolve(t *testing.T) {
	rows := make([]results.Binding, 50)
	for i := range rows {
		rows[i] = results.Binding{
			"s": results.NewURI(fmt.Sprintf("http://ex/%d", i%7)),
			"p": results.NewURI("http://ex/p"),
			"o": results.NewURI(fmt.Sprintf("http://ex/%d", (i*3)%11)),
		}
	}
	r, err := results.New([]string{"s", "p", "o"}, rows)
	require.NoError(t, err)

	g := ExtractGraph(r, 30)

	seen := make(map[string]bool)
	for _, n := range g.Nodes {
		assert.False(t, seen[n.ID], "duplicate node %s", n.ID)
		seen[n.ID] = true
	}
	for _, e := range g.Edges {
		assert.True(t, seen[e.Source])
		assert.True(t, seen[e.Target])
	}

	distinct := make(map[string]bool)
	for i := 0; i < 30; i++ {
		distinct[fmt.Sprintf("http://ex/%d", i%7)] = true
		distinct[fmt.Sprintf("http://ex/%d", (i*3)%11)] = true
	}
	assert.Len(t, g.Nodes, len(distinct))
}

func TestExtractGraph_Empty(t *testing.T) {
	r, err := results.New(nil, nil)
	require.NoError(t, err)

	g := ExtractGraph(r, 0)
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)
	assert.False(t, g.LimitReached)

	out, err := renderString(func(w io.Writer) error { return WriteGraphHTML(w, g, "/results/x") })
	require.NoError(t, err)
	assert.Contains(t, out, "No data to visualize")
}

func TestFormatLabel(t *testing.T) {
	tests := []struct {
		value     string
		isLiteral bool
		want      string
	}{
		{"http://xmlns.com/foaf/0.1/name", false, "name"},
		{"http://www.w3.org/1999/02/22-rdf-syntax-ns#type", false, "type"},
		{"http://example.org/path/", false, "path"},
		{"urn:isbn:123", false, "urn:isbn:123"},
		{"http://ex/" + strings.Repeat("a", 30), false, strings.Repeat("a", 25) + "..."},
		{strings.Repeat("b", 30), true, strings.Repeat("b", 30)},
		{strings.Repeat("b", 31), true, strings.Repeat("b", 30) + "..."},
		{"http://ex/with/slash", true, "http://ex/with/slash"},
		{strings.Repeat("é", 26), true, strings.Repeat("é", 26)},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatLabel(tt.value, tt.isLiteral))
		})
	}
}

func TestWriteGraphML(t *testing.T) {
	g := ExtractGraph(spoResult(t), DefaultMaxBindings)

	var buf bytes.Buffer
	require.NoError(t, WriteGraphML(&buf, g))
	newGoldie(t).Assert(t, "spo_graphml", buf.Bytes())
}

func TestWriteGraphML_DanglingEdge(t *testing.T) {
	g := &GraphModel{Edges: []GraphEdge{{Source: "a", Target: "b"}}}
	err := WriteGraphML(&bytes.Buffer{}, g)
	assert.Error(t, err)
}
