package endpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/aleksaelezovic/sparqlconsole/internal/telemetry"
	"github.com/aleksaelezovic/sparqlconsole/pkg/console"
	"github.com/aleksaelezovic/sparqlconsole/pkg/results"
)

const (
	acceptResults = "application/sparql-results+json"
	acceptJSON    = "application/json"

	// DatasetPlaceholder in a path is replaced by the selected dataset
	DatasetPlaceholder = "{dataset}"

	maxErrorBody = 512
)

// FallbackDatasets is used whenever the dataset list cannot be fetched
var FallbackDatasets = []console.Dataset{
	{Label: "default", Name: "default"},
	{Label: "B3Kat", Name: "b3kat"},
}

// TransportError is a failed request to the SPARQL endpoint
type TransportError struct {
	StatusCode int
	Status     string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Error querying endpoint: %v", e.Err)
	}
	return fmt.Sprintf("Error querying endpoint: Server returned %d: %s", e.StatusCode, e.Status)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Config describes the remote endpoint
type Config struct {
	URL          string
	QueryPath    string
	DatasetsPath string
	Timeout      time.Duration
}

// Client talks the SPARQL 1.1 protocol to one endpoint. It implements
// console.Runner and console.DatasetLister.
type Client struct {
	config Config
	http   *http.Client
}

// NewClient creates a client. A zero timeout leaves requests bounded only
// by their context.
func NewClient(cfg Config) *Client {
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) endpointURL(path, dataset string) string {
	if dataset == "" {
		dataset = "default"
	}
	path = strings.ReplaceAll(path, DatasetPlaceholder, url.PathEscape(dataset))
	return strings.TrimRight(c.config.URL, "/") + path
}

// RunQuery executes a SPARQL query with an HTTP GET and parses the JSON
// results. Non-2xx responses and network failures return a *TransportError;
// a malformed body returns an error wrapping results.ErrInvalidResultShape.
func (c *Client) RunQuery(ctx context.Context, query, dataset string) (*results.QueryResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "sparql.query")
	defer span.End()
	span.SetAttributes(
		attribute.String("sparql.dataset", dataset),
		attribute.Int("sparql.query_length", len(query)),
	)

	u := c.endpointURL(c.config.QueryPath, dataset) + "?query=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", acceptResults)

	resp, err := c.http.Do(req)
	if err != nil {
		terr := &TransportError{Err: err}
		span.RecordError(terr)
		span.SetStatus(codes.Error, "transport failure")
		return nil, terr
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain a little of the body so the connection can be reused
		_, _ = io.CopyN(io.Discard, resp.Body, maxErrorBody)
		terr := &TransportError{StatusCode: resp.StatusCode, Status: reason(resp)}
		span.RecordError(terr)
		span.SetStatus(codes.Error, terr.Status)
		return nil, terr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	r, err := results.Parse(body)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("sparql.rows", r.Len()))
	return r, nil
}

func reason(resp *http.Response) string {
	if s := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprint(resp.StatusCode))); s != "" {
		return s
	}
	return http.StatusText(resp.StatusCode)
}

// RunTurtle always fails; Turtle execution is not supported
func (c *Client) RunTurtle(ctx context.Context, query, dataset string) (*results.QueryResult, error) {
	return nil, console.ErrUnsupportedOperation
}

type datasetList struct {
	Datasets []struct {
		Name string `json:"ds.name"`
		DS   *struct {
			Name string `json:"name"`
		} `json:"ds"`
	} `json:"datasets"`
}

// ListDatasets fetches the Fuseki dataset list. It never fails: on any
// error, or when the list is empty, FallbackDatasets is returned.
func (c *Client) ListDatasets(ctx context.Context) []console.Dataset {
	ctx, span := telemetry.Tracer().Start(ctx, "sparql.datasets")
	defer span.End()

	datasets, err := c.fetchDatasets(ctx)
	if err != nil {
		log.Printf("Error fetching datasets: %v", err)
		span.RecordError(err)
		return fallback()
	}
	if len(datasets) == 0 {
		log.Printf("No datasets found, using defaults")
		return fallback()
	}
	span.SetAttributes(attribute.Int("sparql.datasets", len(datasets)))
	return datasets
}

func (c *Client) fetchDatasets(ctx context.Context) ([]console.Dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpointURL(c.config.DatasetsPath, ""), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", acceptJSON)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, reason(resp))
	}

	var list datasetList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode dataset list: %w", err)
	}

	seen := make(map[string]bool)
	datasets := []console.Dataset{{Label: "default", Name: "default"}}
	seen["default"] = true
	for _, ds := range list.Datasets {
		name := ds.Name
		if name == "" && ds.DS != nil {
			name = ds.DS.Name
		}
		name = name[strings.LastIndex(name, "/")+1:]
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		datasets = append(datasets, console.Dataset{Label: name, Name: name})
	}
	if len(datasets) == 1 {
		return nil, nil
	}
	return datasets, nil
}

func fallback() []console.Dataset {
	out := make([]console.Dataset, len(FallbackDatasets))
	copy(out, FallbackDatasets)
	return out
}
