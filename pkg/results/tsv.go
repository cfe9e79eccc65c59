package results

import (
	"strings"
)

// SPARQL TSV Results Format
// https://www.w3.org/TR/sparql11-results-csv-tsv/

// FormatTSV converts the result to SPARQL TSV format
func (r *QueryResult) FormatTSV() []byte {
	var builder strings.Builder

	if value, ok := r.Boolean(); ok {
		builder.WriteString("?result\n")
		if value {
			builder.WriteString("true\n")
		} else {
			builder.WriteString("false\n")
		}
		return []byte(builder.String())
	}

	for i, name := range r.variables {
		if i > 0 {
			builder.WriteString("\t")
		}
		builder.WriteString("?")
		builder.WriteString(name)
	}
	builder.WriteString("\n")

	for _, binding := range r.rows {
		for i, name := range r.variables {
			if i > 0 {
				builder.WriteString("\t")
			}
			if v, ok := binding[name]; ok {
				builder.WriteString(valueToTSV(v))
			}
		}
		builder.WriteString("\n")
	}

	return []byte(builder.String())
}

// valueToTSV follows the TSV term encoding: <iri>, _:label, "lexical"@lang,
// "lexical"^^<datatype>, with the numeric XSD types written bare
func valueToTSV(v Value) string {
	switch v.Kind {
	case KindURI:
		return "<" + v.Value + ">"

	case KindBNode:
		return "_:" + v.Value

	default:
		if v.Language != "" {
			return "\"" + escapeTSVString(v.Value) + "\"@" + v.Language
		} else if v.Datatype != "" {
			switch v.Datatype {
			case XSDInteger, XSDDecimal, XSDDouble:
				return v.Value
			}
			return "\"" + escapeTSVString(v.Value) + "\"^^<" + v.Datatype + ">"
		}
		return "\"" + escapeTSVString(v.Value) + "\""
	}
}

func escapeTSVString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\t", "\\t")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return s
}
