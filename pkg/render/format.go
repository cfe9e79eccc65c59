package render

import (
	"fmt"
	"strings"
)

// Format names a result view or export format
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatXML   Format = "xml"
	FormatGraph Format = "graph"

	// export-only formats
	FormatCSV     Format = "csv"
	FormatTSV     Format = "tsv"
	FormatGraphML Format = "graphml"
)

// DisplayFormats are the formats the results panel can switch between
var DisplayFormats = []Format{FormatTable, FormatJSON, FormatXML, FormatGraph}

// ParseFormat parses a display format name; an empty name selects the table
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatTable, nil
	}
	for _, d := range DisplayFormats {
		if f == d {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown display format %q", s)
}

// Options carries renderer configuration that would otherwise be global
type Options struct {
	PageSize         int
	MaxGraphBindings int
}

// DefaultOptions returns the console defaults: 10 rows per page and a graph
// cap of 100 processed bindings
func DefaultOptions() Options {
	return Options{
		PageSize:         DefaultPageSize,
		MaxGraphBindings: DefaultMaxBindings,
	}
}
