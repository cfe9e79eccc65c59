package results

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// SPARQL XML Results Format
// https://www.w3.org/TR/rdf-sparql-XMLres/

// Namespace is the SPARQL results XML namespace
const Namespace = "http://www.w3.org/2005/sparql-results#"

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&apos;",
	"\r", "&#xD;",
)

// EscapeXML escapes the five XML special characters. Carriage returns are
// written as character references so parsers do not normalise them away.
func EscapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// FormatXML serialises the result to SPARQL XML. Bindings are written in
// declared-variable order so the output is byte-stable.
func (r *QueryResult) FormatXML() []byte {
	var b strings.Builder

	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	b.WriteString("<sparql xmlns=\"" + Namespace + "\">\n")

	if value, ok := r.Boolean(); ok {
		b.WriteString("  <head/>\n")
		fmt.Fprintf(&b, "  <boolean>%t</boolean>\n", value)
		b.WriteString("</sparql>\n")
		return []byte(b.String())
	}

	b.WriteString("  <head>\n")
	for _, name := range r.variables {
		b.WriteString("    <variable name=\"" + EscapeXML(name) + "\"/>\n")
	}
	b.WriteString("  </head>\n")

	b.WriteString("  <results>\n")
	for _, row := range r.rows {
		b.WriteString("    <result>\n")
		for _, name := range r.variables {
			v, ok := row[name]
			if !ok {
				continue
			}
			b.WriteString("      <binding name=\"" + EscapeXML(name) + "\">\n")
			b.WriteString(valueToXML(v, "        "))
			b.WriteString("      </binding>\n")
		}
		b.WriteString("    </result>\n")
	}
	b.WriteString("  </results>\n")
	b.WriteString("</sparql>\n")

	return []byte(b.String())
}

func valueToXML(v Value, indent string) string {
	switch v.Kind {
	case KindURI:
		return indent + "<uri>" + EscapeXML(v.Value) + "</uri>\n"

	case KindBNode:
		return indent + "<bnode>" + EscapeXML(v.Value) + "</bnode>\n"

	default:
		if v.Language != "" {
			return indent + "<literal xml:lang=\"" + EscapeXML(v.Language) + "\">" + EscapeXML(v.Value) + "</literal>\n"
		} else if v.Datatype != "" {
			return indent + "<literal datatype=\"" + EscapeXML(v.Datatype) + "\">" + EscapeXML(v.Value) + "</literal>\n"
		}
		return indent + "<literal>" + EscapeXML(v.Value) + "</literal>\n"
	}
}

// xmlDocument mirrors the SPARQL XML results vocabulary for decoding
type xmlDocument struct {
	XMLName xml.Name    `xml:"sparql"`
	Head    xmlHead     `xml:"head"`
	Results *xmlResults `xml:"results"`
	Boolean *bool       `xml:"boolean"`
}

type xmlHead struct {
	Variables []xmlVariable `xml:"variable"`
}

type xmlVariable struct {
	Name string `xml:"name,attr"`
}

type xmlResults struct {
	Results []xmlResult `xml:"result"`
}

type xmlResult struct {
	Bindings []xmlBinding `xml:"binding"`
}

type xmlBinding struct {
	Name    string      `xml:"name,attr"`
	URI     *string     `xml:"uri"`
	Literal *xmlLiteral `xml:"literal"`
	BNode   *string     `xml:"bnode"`
}

type xmlLiteral struct {
	Value    string `xml:",chardata"`
	Lang     string `xml:"http://www.w3.org/XML/1998/namespace lang,attr,omitempty"`
	Datatype string `xml:"datatype,attr,omitempty"`
}

// ParseXML decodes a SPARQL XML results document
func ParseXML(r io.Reader) (*QueryResult, error) {
	var doc xmlDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse XML results: %w", ErrInvalidResultShape, err)
	}

	if doc.Boolean != nil && doc.Results == nil {
		return NewBoolean(*doc.Boolean), nil
	}
	if doc.Results == nil {
		return nil, invalidf("missing results element")
	}

	variables := make([]string, 0, len(doc.Head.Variables))
	for _, v := range doc.Head.Variables {
		variables = append(variables, v.Name)
	}

	rows := make([]Binding, 0, len(doc.Results.Results))
	for i, res := range doc.Results.Results {
		row := make(Binding, len(res.Bindings))
		for _, b := range res.Bindings {
			switch {
			case b.URI != nil:
				row[b.Name] = NewURI(*b.URI)
			case b.BNode != nil:
				row[b.Name] = NewBNode(*b.BNode)
			case b.Literal != nil:
				if b.Literal.Lang != "" && b.Literal.Datatype != "" {
					return nil, invalidf("result %d, binding %q: literal has both xml:lang and datatype", i, b.Name)
				}
				if b.Literal.Datatype != "" {
					row[b.Name] = NewTypedLiteral(b.Literal.Value, b.Literal.Datatype)
				} else {
					row[b.Name] = NewLangLiteral(b.Literal.Value, b.Literal.Lang)
				}
			default:
				return nil, invalidf("result %d, binding %q has no value", i, b.Name)
			}
		}
		rows = append(rows, row)
	}

	return New(variables, rows)
}
