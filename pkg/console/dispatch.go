package console

import (
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/aleksaelezovic/sparqlconsole/pkg/render"
	"github.com/aleksaelezovic/sparqlconsole/pkg/results"
)

// View is everything the results panel shows for one state
type View struct {
	Format    render.Format `json:"format"`
	Status    string        `json:"status"`
	Error     string        `json:"error,omitempty"`
	QueryTime time.Duration `json:"queryTimeNs,omitempty"`

	Table *render.Table      `json:"table,omitempty"`
	Graph *render.GraphModel `json:"graph,omitempty"`
	JSON  string             `json:"json,omitempty"`
	XML   string             `json:"xml,omitempty"`

	HTML template.HTML `json:"-"`
}

// Renderer fills v for one display format. action is the base URL of the
// result, used for pagination and export links.
type Renderer func(s State, action string, v *View) error

// Dispatcher selects the renderer for the current display format. It never
// parses raw results; renderers only read the canonical model in State.
type Dispatcher struct {
	renderers map[render.Format]Renderer
}

// NewDispatcher returns a dispatcher with the table, JSON, XML and graph
// renderers registered
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{renderers: make(map[render.Format]Renderer)}
	d.Register(render.FormatTable, renderTable)
	d.Register(render.FormatJSON, renderJSON)
	d.Register(render.FormatXML, renderXML)
	d.Register(render.FormatGraph, renderGraph)
	return d
}

// Register sets the renderer of a format, replacing any previous one
func (d *Dispatcher) Register(f render.Format, r Renderer) {
	d.renderers[f] = r
}

// Render builds the view of s. A renderer failing with
// results.ErrInvalidResultShape aborts that format only: the view carries
// the error message and no error is returned.
func (d *Dispatcher) Render(s State, action string) (*View, error) {
	v := &View{
		Format:    s.Format,
		Status:    s.Status,
		Error:     s.ErrorPanel,
		QueryTime: s.QueryTime,
	}
	if s.ErrorPanel != "" || s.Result == nil {
		return v, nil
	}

	r, ok := d.renderers[s.Format]
	if !ok {
		return nil, fmt.Errorf("no renderer for format %q", s.Format)
	}

	if err := r(s, action, v); err != nil {
		if errors.Is(err, results.ErrInvalidResultShape) {
			return &View{
				Format: s.Format,
				Status: StatusFormatError,
				Error:  MessageInvalidFormat,
			}, nil
		}
		return nil, fmt.Errorf("failed to render %s view: %w", s.Format, err)
	}
	return v, nil
}

func renderTable(s State, action string, v *View) error {
	v.Table = render.RenderPage(s.Result, s.Pagination, s.Pagination.CurrentPage)
	var b strings.Builder
	if err := v.Table.WriteHTML(&b, action); err != nil {
		return err
	}
	v.HTML = template.HTML(b.String())
	return nil
}

func renderJSON(s State, action string, v *View) error {
	pretty, err := render.PrettyJSON(s.Result.ToPlain())
	if err != nil {
		return err
	}
	v.JSON = pretty

	var b strings.Builder
	if err := render.WriteJSONHTML(&b, s.Result, action); err != nil {
		return err
	}
	v.HTML = template.HTML(b.String())
	return nil
}

func renderXML(s State, action string, v *View) error {
	v.XML = string(s.Result.FormatXML())

	var b strings.Builder
	if err := render.WriteXMLHTML(&b, s.Result, action); err != nil {
		return err
	}
	v.HTML = template.HTML(b.String())
	return nil
}

func renderGraph(s State, action string, v *View) error {
	g := s.Graph
	if g == nil {
		g = render.ExtractGraph(s.Result, s.Options.MaxGraphBindings)
	}
	v.Graph = g

	var b strings.Builder
	if err := render.WriteGraphHTML(&b, g, action); err != nil {
		return err
	}
	v.HTML = template.HTML(b.String())
	return nil
}
