package render

import (
	"encoding/xml"
	"fmt"
	"io"
)

// GraphML export of an extracted graph
// http://graphml.graphdrawing.org/

const graphMLHeader = `<?xml version="1.0" encoding="UTF-8"?>
<graphml xmlns="http://graphml.graphdrawing.org/xmlns"
	xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
	xsi:schemaLocation="http://graphml.graphdrawing.org/xmlns/1.0/graphml.xsd">
	<key id="d0" for="node" attr.name="label" attr.type="string"/>
	<key id="d1" for="node" attr.name="role" attr.type="string"/>
	<key id="d2" for="node" attr.name="literal" attr.type="boolean"/>
	<key id="d3" for="edge" attr.name="label" attr.type="string"/>
	<graph id="G" edgedefault="directed">
`

const graphMLFooter = "\t</graph>\n</graphml>\n"

// graphMLWriter keeps the first write error so the call sites stay linear
type graphMLWriter struct {
	w   io.Writer
	err error
}

func (w *graphMLWriter) printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format, args...)
}

func (w *graphMLWriter) text(s string) {
	if w.err != nil {
		return
	}
	w.err = xml.EscapeText(w.w, []byte(s))
}

// WriteGraphML writes g as a directed GraphML document. Nodes are numbered
// in model order and edges reference them by that number.
func WriteGraphML(out io.Writer, g *GraphModel) error {
	w := &graphMLWriter{w: out}
	w.printf("%s", graphMLHeader)

	ids := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[n.ID] = i
		w.printf("\t\t<node id=\"n%d\"><data key=\"d0\">", i)
		w.text(n.ID)
		w.printf("</data><data key=\"d1\">%s</data><data key=\"d2\">%t</data></node>\n", n.Role, n.IsLiteral)
	}

	for _, e := range g.Edges {
		s, ok := ids[e.Source]
		if !ok {
			return fmt.Errorf("edge source %q is not a node", e.Source)
		}
		o, ok := ids[e.Target]
		if !ok {
			return fmt.Errorf("edge target %q is not a node", e.Target)
		}
		w.printf("\t\t<edge source=\"n%d\" target=\"n%d\"><data key=\"d3\">", s, o)
		w.text(e.Label)
		w.printf("</data></edge>\n")
	}

	w.printf("%s", graphMLFooter)
	return w.err
}
