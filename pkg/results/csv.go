package results

import (
	"encoding/csv"
	"strings"
)

// SPARQL CSV Results Format
// https://www.w3.org/TR/sparql11-results-csv-tsv/

// FormatCSV converts the result to SPARQL CSV format
func (r *QueryResult) FormatCSV() ([]byte, error) {
	var builder strings.Builder
	w := csv.NewWriter(&builder)
	w.UseCRLF = true

	if value, ok := r.Boolean(); ok {
		if err := w.Write([]string{"result"}); err != nil {
			return nil, err
		}
		v := "false"
		if value {
			v = "true"
		}
		if err := w.Write([]string{v}); err != nil {
			return nil, err
		}
		w.Flush()
		return []byte(builder.String()), w.Error()
	}

	if err := w.Write(r.variables); err != nil {
		return nil, err
	}

	for _, binding := range r.rows {
		row := make([]string, len(r.variables))
		for i, name := range r.variables {
			if v, ok := binding[name]; ok {
				row[i] = valueToCSV(v)
			}
			// Unbound variables stay empty
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return []byte(builder.String()), nil
}

// valueToCSV writes IRIs bare, blank nodes as _:label and literals as their
// lexical form (language-tagged ones as value@lang)
func valueToCSV(v Value) string {
	switch v.Kind {
	case KindURI:
		return v.Value
	case KindBNode:
		return "_:" + v.Value
	default:
		if v.Language != "" {
			return v.Value + "@" + v.Language
		}
		return v.Value
	}
}
