package render

import (
	"html/template"
	"io"
	"strings"

	"github.com/aleksaelezovic/sparqlconsole/pkg/results"
)

const jsonTemplateText = `<div class="json-container">
<h3>JSON View</h3>
<div class="format-actions"><a href="{{.Action}}/download?format=json">Download Raw JSON</a> <a href="{{.Action}}/raw?format=json" target="_blank">Open Raw JSON</a></div>
<pre class="json-view">{{.Body}}</pre>
</div>
`

const xmlTemplateText = `<div class="xml-container">
<h3>XML View</h3>
<div class="format-actions"><a href="{{.Action}}/download?format=xml">Download Raw XML</a> <a href="{{.Action}}/raw?format=xml" target="_blank">Open Raw XML</a></div>
<pre class="xml-view">{{.Body}}</pre>
</div>
`

const graphTemplateText = `<div class="graph-container">
<h3>Graph View</h3>
{{- if not .Graph.Nodes}}
<p>No data to visualize</p>
{{- else}}
<div class="graph-stats">{{len .Graph.Nodes}} nodes, {{len .Graph.Edges}} edges</div>
{{- if .Graph.LimitReached}}
<p class="graph-limit">Showing the first {{.Graph.ProcessedBindings}} bindings only</p>
{{- end}}
<ul class="graph-nodes">
{{- range .Graph.Nodes}}
<li class="node node-{{.Role}}{{if .IsLiteral}} node-literal{{end}}" title="{{.ID}}">{{.Label}}</li>
{{- end}}
</ul>
<ul class="graph-edges">
{{- range .Graph.Edges}}
<li>{{$.Label .Source}} &rarr; {{if .Label}}<em>{{.Label}}</em> &rarr; {{end}}{{$.Label .Target}}</li>
{{- end}}
</ul>
<div class="format-actions"><a href="{{.Action}}/download?format=graphml">Download GraphML</a></div>
{{- end}}
</div>
`

var (
	jsonTemplate  = template.Must(template.New("json").Parse(jsonTemplateText))
	xmlTemplate   = template.Must(template.New("xml").Parse(xmlTemplateText))
	graphTemplate = template.Must(template.New("graph").Parse(graphTemplateText))
)

// WriteJSONHTML renders the highlighted pretty JSON panel. action is the
// base URL of the result, used for the download and raw links.
func WriteJSONHTML(w io.Writer, r *results.QueryResult, action string) error {
	pretty, err := PrettyJSON(r.ToPlain())
	if err != nil {
		return err
	}
	return jsonTemplate.Execute(w, struct {
		Body   template.HTML
		Action string
	}{template.HTML(HighlightHTML(pretty)), action})
}

// WriteXMLHTML renders the escaped XML panel
func WriteXMLHTML(w io.Writer, r *results.QueryResult, action string) error {
	return xmlTemplate.Execute(w, struct {
		Body   string
		Action string
	}{string(r.FormatXML()), action})
}

type graphView struct {
	Graph  *GraphModel
	Action string
}

// Label returns the display label of a node ID
func (v graphView) Label(id string) string {
	if n, ok := v.Graph.Node(id); ok {
		return n.Label
	}
	return id
}

// WriteGraphHTML renders the node and edge lists of g
func WriteGraphHTML(w io.Writer, g *GraphModel, action string) error {
	return graphTemplate.Execute(w, graphView{g, action})
}

func renderString(fn func(io.Writer) error) (string, error) {
	var b strings.Builder
	if err := fn(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}
