package endpoint

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/sparqlconsole/pkg/console"
	"github.com/aleksaelezovic/sparqlconsole/pkg/results"
)

const spoJSON = `{
  "head": {"vars": ["s", "p", "o"]},
  "results": {"bindings": [
    {
      "s": {"type": "uri", "value": "http://ex/1"},
      "p": {"type": "uri", "value": "http://ex/knows"},
      "o": {"type": "uri", "value": "http://ex/2"}
    }
  ]}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		URL:          srv.URL,
		QueryPath:    "/{dataset}/sparql",
		DatasetsPath: "/$/datasets",
		Timeout:      5 * time.Second,
	})
}

func TestRunQuery(t *testing.T) {
	var gotPath, gotQuery, gotAccept string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("query")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/sparql-results+json")
		_, _ = w.Write([]byte(spoJSON))
	})

	query := "SELECT * WHERE { ?s ?p ?o } LIMIT 1"
	r, err := c.RunQuery(context.Background(), query, "b3kat")
	require.NoError(t, err)

	assert.Equal(t, "/b3kat/sparql", gotPath)
	assert.Equal(t, query, gotQuery)
	assert.Equal(t, "application/sparql-results+json", gotAccept)
	assert.Equal(t, []string{"s", "p", "o"}, r.Variables())
	assert.Equal(t, 1, r.Len())
}

func TestRunQuery_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})

	_, err := c.RunQuery(context.Background(), "SELECT 1", "")
	require.Error(t, err)

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, http.StatusServiceUnavailable, terr.StatusCode)
	assert.Equal(t, "Error querying endpoint: Server returned 503: Service Unavailable", err.Error())
}

func TestRunQuery_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := NewClient(Config{URL: srv.URL, QueryPath: "/sparql"})
	_, err := c.RunQuery(context.Background(), "SELECT 1", "")

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Zero(t, terr.StatusCode)
	assert.Contains(t, err.Error(), "Error querying endpoint: ")
}

func TestRunQuery_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"head": {}}`))
	})

	_, err := c.RunQuery(context.Background(), "SELECT 1", "")
	assert.True(t, errors.Is(err, results.ErrInvalidResultShape))
}

func TestRunTurtle(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := c.RunTurtle(context.Background(), "<a> <b> <c> .", "")
	assert.True(t, errors.Is(err, console.ErrUnsupportedOperation))
	assert.False(t, called)
}

func TestListDatasets(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/$/datasets", r.URL.Path)
		_, _ = w.Write([]byte(`{"datasets": [
			{"ds.name": "/b3kat"},
			{"ds": {"name": "/lobid"}},
			{"ds.name": "/b3kat"},
			{"ds.name": ""}
		]}`))
	})

	got := c.ListDatasets(context.Background())
	assert.Equal(t, []console.Dataset{
		{Label: "default", Name: "default"},
		{Label: "b3kat", Name: "b3kat"},
		{Label: "lobid", Name: "lobid"},
	}, got)
}

func TestListDatasets_Fallback(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"not json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>sparql endpoint</html>"))
		}},
		{"empty list", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"datasets": []}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			assert.Equal(t, FallbackDatasets, c.ListDatasets(context.Background()))
		})
	}
}
