package server

import (
	"html/template"
	"io"
	"time"

	"github.com/aleksaelezovic/sparqlconsole/internal/history"
	"github.com/aleksaelezovic/sparqlconsole/pkg/console"
	"github.com/aleksaelezovic/sparqlconsole/pkg/render"
)

const consoleTemplateText = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>SPARQL Query Console</title>
    <style>
        body { margin: 0; font-family: Arial, sans-serif; }
        .header { background: #2c3e50; color: white; padding: 15px 20px; }
        .header h1 { margin: 0; font-size: 24px; font-weight: 500; }
        main { padding: 20px; }
        textarea { width: 100%; height: 180px; font-family: monospace; }
        .status-bar { margin: 10px 0; padding: 6px 10px; background: #ecf0f1; }
        .error-panel { margin: 10px 0; padding: 10px; background: #fdecea; color: #c0392b; }
        .format-tabs a { margin-right: 10px; }
        .format-tabs a.active { font-weight: bold; }
        table { border-collapse: collapse; }
        th, td { border: 1px solid #ddd; padding: 4px 8px; text-align: left; }
        .pagination button.active { font-weight: bold; }
        .json-key { color: #881391; }
        .json-string { color: #1a1aa6; }
        .json-number { color: #1c00cf; }
        .json-boolean, .json-null { color: #0d22aa; }
        .node-subject { color: #2980b9; }
        .node-object { color: #27ae60; }
        .node-literal { font-style: italic; }
    </style>
</head>
<body>
    <div class="header"><h1>SPARQL Query Console</h1></div>
    <main>
    <form method="post" action="/query">
        <textarea name="query" placeholder="SELECT * WHERE { ?s ?p ?o } LIMIT 10">{{.Query}}</textarea>
        <label>Type: <select name="queryType">
            <option value="sparql"{{if eq .QueryType "sparql"}} selected{{end}}>SPARQL</option>
            <option value="turtle"{{if eq .QueryType "turtle"}} selected{{end}}>Turtle</option>
        </select></label>
        <label>Dataset: <select name="dataset">
            {{- range .Datasets}}
            <option value="{{.Name}}"{{if eq .Name $.Dataset}} selected{{end}}>{{.Label}}</option>
            {{- end}}
        </select></label>
        <label>Format: <select name="format">
            {{- range .Formats}}
            <option value="{{.}}"{{if eq . $.Format}} selected{{end}}>{{.}}</option>
            {{- end}}
        </select></label>
        <button type="submit">Execute</button>
    </form>
    {{- if .Action}}
    <form method="post" action="{{.Action}}/clear"><button type="submit">Clear</button></form>
    {{- end}}
    {{- with .View}}
    <div class="status-bar">{{.Status}}{{if .QueryTime}} ({{$.Millis .QueryTime}} ms){{end}}</div>
    {{- if .Error}}
    <div class="error-panel">{{.Error}}</div>
    {{- end}}
    {{- if .HTML}}
    <div class="format-tabs">
        {{- range $.Formats}}
        <a href="{{$.Action}}?format={{.}}"{{if eq . $.Format}} class="active"{{end}}>{{.}}</a>
        {{- end}}
        <a href="{{$.Action}}/download?format=csv">CSV</a>
        <a href="{{$.Action}}/download?format=tsv">TSV</a>
    </div>
    <div class="results">{{.HTML}}</div>
    {{- end}}
    {{- else}}
    <div class="status-bar">{{.Status}}</div>
    {{- end}}
    {{- if .History}}
    <h3>Recent Queries</h3>
    <ul class="history">
        {{- range .History}}
        <li><code>{{.Query}}</code> on {{.Dataset}}, {{.Rows}} rows{{if gt .RunCount 1}}, run {{.RunCount}} times{{end}}{{if .Error}}, <span class="error">{{.Error}}</span>{{end}}</li>
        {{- end}}
    </ul>
    {{- end}}
    </main>
</body>
</html>
`

var consoleTemplate = template.Must(template.New("console").Parse(consoleTemplateText))

const historyOnPage = 10

type consolePage struct {
	Query     string
	QueryType console.QueryType
	Dataset   string
	Format    render.Format
	Status    string
	Datasets  []console.Dataset
	Formats   []render.Format
	Action    string
	View      *console.View
	History   []history.Entry
}

func (p consolePage) Millis(d time.Duration) int64 {
	return d.Milliseconds()
}

func newConsolePage(s console.State, datasets []console.Dataset) consolePage {
	return consolePage{
		Query:     s.Query,
		QueryType: s.QueryType,
		Dataset:   s.Dataset,
		Format:    s.Format,
		Status:    s.Status,
		Datasets:  datasets,
		Formats:   render.DisplayFormats,
	}
}

func (p consolePage) write(w io.Writer) error {
	return consoleTemplate.Execute(w, p)
}
