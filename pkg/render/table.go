package render

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/aleksaelezovic/sparqlconsole/pkg/results"
)

const (
	// DefaultPageSize is the number of rows shown per page unless overridden
	DefaultPageSize = 10

	maxPageButtons = 5
)

// PageSizes are the selectable rows-per-page values
var PageSizes = []int{10, 25, 50, 100}

// ErrInvalidPageSize is returned for a page size outside PageSizes
var ErrInvalidPageSize = errors.New("invalid page size")

// ValidPageSize reports whether n is one of PageSizes
func ValidPageSize(n int) bool {
	for _, s := range PageSizes {
		if s == n {
			return true
		}
	}
	return false
}

// Pagination is the paging state of one rendered table. TotalPages is at
// least 1 even for an empty result, and CurrentPage stays in [1, TotalPages].
type Pagination struct {
	PageSize    int `json:"pageSize"`
	CurrentPage int `json:"currentPage"`
	TotalRows   int `json:"totalRows"`
	TotalPages  int `json:"totalPages"`
}

// ComputePagination returns the state for page 1 of totalRows rows. A
// non-positive pageSize falls back to DefaultPageSize.
func ComputePagination(totalRows, pageSize int) Pagination {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if totalRows < 0 {
		totalRows = 0
	}
	totalPages := (totalRows + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	return Pagination{
		PageSize:    pageSize,
		CurrentPage: 1,
		TotalRows:   totalRows,
		TotalPages:  totalPages,
	}
}

// Goto moves to page n, clamped to [1, TotalPages]
func (p Pagination) Goto(n int) Pagination {
	if n < 1 {
		n = 1
	}
	if n > p.TotalPages {
		n = p.TotalPages
	}
	p.CurrentPage = n
	return p
}

func (p Pagination) First() Pagination { return p.Goto(1) }
func (p Pagination) Last() Pagination  { return p.Goto(p.TotalPages) }
func (p Pagination) Prev() Pagination  { return p.Goto(p.CurrentPage - 1) }
func (p Pagination) Next() Pagination  { return p.Goto(p.CurrentPage + 1) }

// WithPageSize recomputes the page count for a new page size and resets to
// page 1
func (p Pagination) WithPageSize(size int) (Pagination, error) {
	if !ValidPageSize(size) {
		return p, fmt.Errorf("%w: %d", ErrInvalidPageSize, size)
	}
	return ComputePagination(p.TotalRows, size), nil
}

// Bounds returns the half-open row range of the current page
func (p Pagination) Bounds() (start, end int) {
	start = (p.CurrentPage - 1) * p.PageSize
	end = start + p.PageSize
	if end > p.TotalRows {
		end = p.TotalRows
	}
	if start > end {
		start = end
	}
	return start, end
}

// Cell is one rendered table cell. Href is the raw URI of a linked cell.
type Cell struct {
	Kind  results.Kind
	Text  string
	Href  template.URL
	Link  bool
	Bound bool
}

// Schemes that run code in the browser. URIs using them are shown as text.
var scriptSchemes = []string{"javascript:", "vbscript:", "data:"}

// linkTarget returns the href for a URI cell, keeping schemes such as urn:
// and tag: that html/template would replace.
func linkTarget(iri string) (template.URL, bool) {
	scheme := strings.ToLower(strings.TrimLeft(iri, " \t\r\n\x00"))
	for _, unsafe := range scriptSchemes {
		if strings.HasPrefix(scheme, unsafe) {
			return "", false
		}
	}
	return template.URL(iri), true
}

// PageButton is a numbered page control
type PageButton struct {
	Number int
	Active bool
}

// Controls describes the pagination bar. It is only produced when the result
// spans more than one page.
type Controls struct {
	Info         string
	Pages        []PageButton
	Ellipsis     bool
	LastPage     *PageButton
	PrevDisabled bool
	NextDisabled bool
}

// PageSizeOption is an entry of the rows-per-page selector
type PageSizeOption struct {
	Value    int
	Selected bool
}

// Table is one rendered page of a result
type Table struct {
	Variables   []string
	Rows        [][]Cell
	Pagination  Pagination
	ResultCount int
	Empty       bool
	Boolean     *bool
	Controls    *Controls
	PageSizes   []PageSizeOption
}

// RenderPage renders page pageNum of r. The page number is clamped to the
// valid range; an out-of-range request never yields an empty page.
func RenderPage(r *results.QueryResult, state Pagination, pageNum int) *Table {
	state = state.Goto(pageNum)

	t := &Table{
		Variables:   r.Variables(),
		Pagination:  state,
		ResultCount: r.Len(),
	}

	if value, ok := r.Boolean(); ok {
		t.Boolean = &value
		return t
	}

	if r.Len() == 0 {
		t.Empty = true
		return t
	}

	start, end := state.Bounds()
	t.Rows = make([][]Cell, 0, end-start)
	for i := start; i < end; i++ {
		row := make([]Cell, len(t.Variables))
		for j, name := range t.Variables {
			v, ok := r.Value(i, name)
			if !ok {
				continue
			}
			cell := Cell{Kind: v.Kind, Text: v.Value, Bound: true}
			if v.Kind == results.KindURI {
				cell.Href, cell.Link = linkTarget(v.Value)
			}
			row[j] = cell
		}
		t.Rows = append(t.Rows, row)
	}

	for _, size := range PageSizes {
		t.PageSizes = append(t.PageSizes, PageSizeOption{Value: size, Selected: size == state.PageSize})
	}

	if state.TotalPages > 1 {
		t.Controls = buildControls(state)
	}

	return t
}

func buildControls(p Pagination) *Controls {
	c := &Controls{
		Info:         fmt.Sprintf("Page %d of %d", p.CurrentPage, p.TotalPages),
		PrevDisabled: p.CurrentPage == 1,
		NextDisabled: p.CurrentPage == p.TotalPages,
	}

	n := p.TotalPages
	if n > maxPageButtons {
		n = maxPageButtons
	}
	for i := 1; i <= n; i++ {
		c.Pages = append(c.Pages, PageButton{Number: i, Active: i == p.CurrentPage})
	}

	if p.TotalPages > maxPageButtons {
		c.Ellipsis = true
		c.LastPage = &PageButton{Number: p.TotalPages, Active: p.CurrentPage == p.TotalPages}
	}

	return c
}

const tableTemplateText = `<div class="table-container">
<h3>Table View</h3>
{{- if .Boolean}}
<p class="boolean-result">Result: {{if .BooleanValue}}true{{else}}false{{end}}</p>
{{- else if .Empty}}
<p>No results found</p>
{{- else}}
<div class="result-count">Found {{.ResultCount}} results</div>
<table>
<thead><tr>{{range .Variables}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr>{{range .}}<td>{{if .Link}}<a href="{{.Href}}" target="_blank">{{.Text}}</a>{{else}}{{.Text}}{{end}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
<form class="pagination" method="get" action="{{$.Action}}">
<input type="hidden" name="format" value="table">
<input type="hidden" name="page" value="{{.Pagination.CurrentPage}}">
{{- with .Controls}}
<div class="pagination-info">{{.Info}}</div>
<div class="pagination-buttons">
<button type="submit" name="action" value="first" title="First Page">&lt;&lt;</button>
<button type="submit" name="action" value="prev" title="Previous Page"{{if .PrevDisabled}} disabled{{end}}>&lt;</button>
{{- range .Pages}}
<button type="submit" name="goto" value="{{.Number}}"{{if .Active}} class="active"{{end}}>{{.Number}}</button>
{{- end}}
{{- if .Ellipsis}}
<span>...</span>
<button type="submit" name="goto" value="{{.LastPage.Number}}"{{if .LastPage.Active}} class="active"{{end}}>{{.LastPage.Number}}</button>
{{- end}}
<button type="submit" name="action" value="next" title="Next Page"{{if .NextDisabled}} disabled{{end}}>&gt;</button>
<button type="submit" name="action" value="last" title="Last Page">&gt;&gt;</button>
</div>
{{- end}}
<div class="rows-per-page"><label>Rows per page: <select name="size">
{{- range .PageSizes}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Value}}</option>{{end -}}
</select></label> <button type="submit" name="action" value="size">Apply</button></div>
</form>
{{- end}}
</div>
`

var tableTemplate = template.Must(template.New("table").Parse(tableTemplateText))

// BooleanValue returns the ASK answer of a boolean result
func (t *Table) BooleanValue() bool {
	return t.Boolean != nil && *t.Boolean
}

// WriteHTML renders the table as HTML. action is the URL the pagination form
// submits to.
func (t *Table) WriteHTML(w io.Writer, action string) error {
	return tableTemplate.Execute(w, struct {
		*Table
		Action string
	}{t, action})
}

// HTML renders the table as an HTML string
func (t *Table) HTML(action string) (string, error) {
	return renderString(func(w io.Writer) error { return t.WriteHTML(w, action) })
}
