package console

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aleksaelezovic/sparqlconsole/pkg/render"
	"github.com/aleksaelezovic/sparqlconsole/pkg/results"
)

// ErrUnsupportedOperation is returned for query types the console cannot
// execute
var ErrUnsupportedOperation = errors.New("Turtle query execution not implemented yet")

// QueryType selects how the query text is executed
type QueryType string

const (
	QuerySPARQL QueryType = "sparql"
	QueryTurtle QueryType = "turtle"
)

// ParseQueryType parses a query type name; an empty name selects SPARQL
func ParseQueryType(s string) (QueryType, error) {
	switch QueryType(strings.ToLower(strings.TrimSpace(s))) {
	case "", QuerySPARQL:
		return QuerySPARQL, nil
	case QueryTurtle:
		return QueryTurtle, nil
	default:
		return "", fmt.Errorf("unknown query type %q", s)
	}
}

// Dataset is an entry of the dataset selector
type Dataset struct {
	Label string `json:"label"`
	Name  string `json:"name"`
}

// Runner executes a query against a dataset
type Runner interface {
	RunQuery(ctx context.Context, query, dataset string) (*results.QueryResult, error)
}

// DatasetLister lists the selectable datasets. Implementations fall back to
// a fixed default set and never fail.
type DatasetLister interface {
	ListDatasets(ctx context.Context) []Dataset
}

// Instruction tells the binding layer what to redraw after a transition
type Instruction string

const (
	InstructionRender     Instruction = "render"
	InstructionStatusOnly Instruction = "status-only"
	InstructionError      Instruction = "error"
)

// Status messages
const (
	StatusReady          = "Ready"
	StatusQueryEmpty     = "Error: Query is empty"
	StatusQueryCleared   = "Query cleared"
	StatusNoResults      = "Execute a query first to see results in this format"
	StatusFormatError    = "Error changing format: Could not parse results"
	MessageInvalidFormat = "Invalid results format"
)

// State is the whole console state. Transitions take a State by value and
// return the next one; the canonical result is shared and never modified.
type State struct {
	Query     string
	QueryType QueryType
	Dataset   string
	Format    render.Format
	Options   render.Options

	Result     *results.QueryResult
	Pagination render.Pagination
	Graph      *render.GraphModel

	Status     string
	ErrorPanel string
	QueryTime  time.Duration
}

// NewState returns the initial state: table format, no result
func NewState(opts render.Options) State {
	if opts.PageSize <= 0 {
		opts.PageSize = render.DefaultPageSize
	}
	if opts.MaxGraphBindings <= 0 {
		opts.MaxGraphBindings = render.DefaultMaxBindings
	}
	return State{
		QueryType: QuerySPARQL,
		Dataset:   "default",
		Format:    render.FormatTable,
		Options:   opts,
		Status:    StatusReady,
	}
}

// ExecuteAction is a request to run the query in the editor
type ExecuteAction struct {
	Query     string
	QueryType QueryType
	Dataset   string
}

// OnExecute runs the query and replaces the result. Empty queries and Turtle
// queries never reach the runner. On failure the previous result is kept and
// the error panel is set.
func OnExecute(ctx context.Context, s State, a ExecuteAction, runner Runner) (State, Instruction) {
	s.Query = a.Query
	if a.QueryType != "" {
		s.QueryType = a.QueryType
	}
	if a.Dataset != "" {
		s.Dataset = a.Dataset
	}

	if strings.TrimSpace(a.Query) == "" {
		s.Status = StatusQueryEmpty
		return s, InstructionStatusOnly
	}

	if s.QueryType == QueryTurtle {
		return failed(s, ErrUnsupportedOperation), InstructionError
	}

	start := time.Now()
	result, err := runner.RunQuery(ctx, a.Query, s.Dataset)
	elapsed := time.Since(start)
	if err != nil {
		return failed(s, err), InstructionError
	}

	s.Result = result
	s.Pagination = render.ComputePagination(result.Len(), s.Options.PageSize)
	s.Graph = nil
	if s.Format == render.FormatGraph {
		s.Graph = render.ExtractGraph(result, s.Options.MaxGraphBindings)
	}
	s.ErrorPanel = ""
	s.QueryTime = elapsed
	s.Status = fmt.Sprintf("Query executed successfully on %s", s.Dataset)
	return s, InstructionRender
}

func failed(s State, err error) State {
	msg := err.Error()
	if errors.Is(err, results.ErrInvalidResultShape) {
		msg = MessageInvalidFormat
	}
	s.ErrorPanel = msg
	s.Status = "Error: " + FirstSentence(msg)
	return s
}

// OnFormatChange switches the display format and re-renders the stored
// result. Pagination and graph state start fresh.
func OnFormatChange(s State, f render.Format) (State, Instruction) {
	s.Format = f
	if s.Result == nil {
		s.Status = StatusNoResults
		return s, InstructionStatusOnly
	}

	size := s.Pagination.PageSize
	if size <= 0 {
		size = s.Options.PageSize
	}
	s.Pagination = render.ComputePagination(s.Result.Len(), size)
	s.Graph = nil
	if f == render.FormatGraph {
		s.Graph = render.ExtractGraph(s.Result, s.Options.MaxGraphBindings)
	}
	s.ErrorPanel = ""
	s.Status = fmt.Sprintf("Display format changed to %s", f)
	return s, InstructionRender
}

// PageAction is a pagination control
type PageAction string

const (
	PageFirst PageAction = "first"
	PagePrev  PageAction = "prev"
	PageNext  PageAction = "next"
	PageLast  PageAction = "last"
	PageGoto  PageAction = "goto"
)

// OnPageChange moves the table to another page. Out-of-range moves clamp.
func OnPageChange(s State, action PageAction, page int) (State, Instruction) {
	if s.Result == nil || s.Format != render.FormatTable {
		return s, InstructionStatusOnly
	}

	p := s.Pagination
	switch action {
	case PageFirst:
		p = p.First()
	case PagePrev:
		p = p.Prev()
	case PageNext:
		p = p.Next()
	case PageLast:
		p = p.Last()
	case PageGoto:
		p = p.Goto(page)
	default:
		return s, InstructionStatusOnly
	}

	s.Pagination = p
	s.Status = pageStatus(p)
	return s, InstructionRender
}

// OnPageSizeChange changes the rows per page and returns to page 1
func OnPageSizeChange(s State, size int) (State, Instruction) {
	if s.Result == nil {
		return s, InstructionStatusOnly
	}

	p, err := s.Pagination.WithPageSize(size)
	if err != nil {
		s.Status = "Error: " + err.Error()
		return s, InstructionStatusOnly
	}

	s.Pagination = p
	s.Status = pageStatus(p)
	return s, InstructionRender
}

func pageStatus(p render.Pagination) string {
	return fmt.Sprintf("Page %d of %d", p.CurrentPage, p.TotalPages)
}

// OnClear empties the editor and drops the current result
func OnClear(s State) (State, Instruction) {
	s.Query = ""
	s.Result = nil
	s.Pagination = render.Pagination{}
	s.Graph = nil
	s.ErrorPanel = ""
	s.QueryTime = 0
	s.Status = StatusQueryCleared
	return s, InstructionRender
}

// FirstSentence returns msg up to the first sentence break. URLs and
// decimal numbers are not split.
func FirstSentence(msg string) string {
	if i := strings.Index(msg, ". "); i >= 0 {
		return msg[:i]
	}
	return strings.TrimSuffix(msg, ".")
}
