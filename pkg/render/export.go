package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/aleksaelezovic/sparqlconsole/pkg/results"
)

// Export is a serialised result ready to be saved or shown raw
type Export struct {
	Format   Format
	Content  []byte
	Filename string
	MIMEType string
}

// Download serialises r for the "download as file" action. The graph
// format is exported as GraphML.
func Download(format Format, r *results.QueryResult, maxBindings int) (*Export, error) {
	switch format {
	case FormatJSON:
		pretty, err := PrettyJSON(r.ToPlain())
		if err != nil {
			return nil, err
		}
		return &Export{format, []byte(pretty), "sparql-results.json", "application/json"}, nil

	case FormatXML:
		return &Export{format, r.FormatXML(), "sparql-results.xml", "application/xml"}, nil

	case FormatCSV:
		data, err := r.FormatCSV()
		if err != nil {
			return nil, fmt.Errorf("failed to write CSV: %w", err)
		}
		return &Export{format, data, "sparql-results.csv", "text/csv"}, nil

	case FormatTSV:
		return &Export{format, r.FormatTSV(), "sparql-results.tsv", "text/tab-separated-values"}, nil

	case FormatGraph, FormatGraphML:
		var buf bytes.Buffer
		if err := WriteGraphML(&buf, ExtractGraph(r, maxBindings)); err != nil {
			return nil, fmt.Errorf("failed to write GraphML: %w", err)
		}
		return &Export{FormatGraphML, buf.Bytes(), "sparql-results.graphml", "application/graphml+xml"}, nil

	default:
		return nil, fmt.Errorf("format %q cannot be exported", format)
	}
}

// RawDocument wraps an export in a minimal HTML page that shows the content
// verbatim, for the "open raw" action
func RawDocument(e *Export) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	fmt.Fprintf(&b, "<title>SPARQL %s Results (Raw)</title>\n", strings.ToUpper(string(e.Format)))
	b.WriteString("<meta charset=\"UTF-8\">\n")
	fmt.Fprintf(&b, "<meta http-equiv=\"Content-Type\" content=\"%s; charset=utf-8\">\n", e.MIMEType)
	b.WriteString("<style>\nbody, pre {\n    margin: 0;\n    padding: 0;\n    font-family: monospace;\n    white-space: pre;\n}\n</style>\n")
	b.WriteString("</head>\n<body><pre>")
	b.WriteString(html.EscapeString(string(e.Content)))
	b.WriteString("</pre></body>\n</html>")
	return b.String()
}
