package console

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/sparqlconsole/pkg/render"
	"github.com/aleksaelezovic/sparqlconsole/pkg/results"
)

func TestDispatcher_RendersEachFormat(t *testing.T) {
	d := NewDispatcher()
	base := executed(t, 12)

	tests := []struct {
		format   render.Format
		contains string
		check    func(t *testing.T, v *View)
	}{
		{render.FormatTable, "Found 12 results", func(t *testing.T, v *View) {
			require.NotNil(t, v.Table)
			assert.Len(t, v.Table.Rows, 10)
		}},
		{render.FormatJSON, "JSON View", func(t *testing.T, v *View) {
			assert.Contains(t, v.JSON, `"bindings": [`)
		}},
		{render.FormatXML, "XML View", func(t *testing.T, v *View) {
			assert.Contains(t, v.XML, "<results>")
		}},
		{render.FormatGraph, "Graph View", func(t *testing.T, v *View) {
			require.NotNil(t, v.Graph)
			assert.Len(t, v.Graph.Edges, 12)
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			s, _ := OnFormatChange(base, tt.format)
			v, err := d.Render(s, "/results/abc")
			require.NoError(t, err)
			assert.Equal(t, tt.format, v.Format)
			assert.Contains(t, string(v.HTML), tt.contains)
			tt.check(t, v)
		})
	}
}

func TestDispatcher_NoResult(t *testing.T) {
	v, err := NewDispatcher().Render(NewState(render.DefaultOptions()), "/")
	require.NoError(t, err)
	assert.Empty(t, v.HTML)
	assert.Equal(t, StatusReady, v.Status)
}

func TestDispatcher_ErrorPanel(t *testing.T) {
	s := executed(t, 2)
	s.ErrorPanel = "Error querying endpoint: boom"

	v, err := NewDispatcher().Render(s, "/")
	require.NoError(t, err)
	assert.Equal(t, "Error querying endpoint: boom", v.Error)
	assert.Nil(t, v.Table)
}

func TestDispatcher_InvalidShapeAbortsOneFormat(t *testing.T) {
	d := NewDispatcher()
	d.Register(render.FormatXML, func(State, string, *View) error {
		return fmt.Errorf("%w: broken", results.ErrInvalidResultShape)
	})

	s, _ := OnFormatChange(executed(t, 2), render.FormatXML)
	v, err := d.Render(s, "/")
	require.NoError(t, err)
	assert.Equal(t, "Invalid results format", v.Error)
	assert.Equal(t, StatusFormatError, v.Status)

	s, _ = OnFormatChange(s, render.FormatTable)
	v, err = d.Render(s, "/")
	require.NoError(t, err)
	assert.Empty(t, v.Error)
	assert.NotNil(t, v.Table)
}

func TestDispatcher_UnknownFormat(t *testing.T) {
	s := executed(t, 1)
	s.Format = render.FormatCSV
	_, err := NewDispatcher().Render(s, "/")
	assert.Error(t, err)
}
