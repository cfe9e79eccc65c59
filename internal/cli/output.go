package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/aleksaelezovic/sparqlconsole/pkg/render"
	"github.com/aleksaelezovic/sparqlconsole/pkg/results"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Query failed (endpoint error, unusable results)
	ExitCommandError = 2 // Command error (bad flags, config or input file)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormats are the values accepted by --output
var OutputFormats = []string{"table", "json", "xml", "csv", "tsv", "graph", "graphml"}

// resultOutput describes how a result is printed
type resultOutput struct {
	Format      string
	Page        int
	PageSize    int
	MaxBindings int
}

func (o resultOutput) validate() error {
	for _, f := range OutputFormats {
		if f == o.Format {
			return nil
		}
	}
	return NewExitError(ExitCommandError, fmt.Sprintf("invalid output %q: must be one of %v", o.Format, OutputFormats))
}

// writeResult prints r in the selected output format
func writeResult(w io.Writer, r *results.QueryResult, o resultOutput) error {
	switch o.Format {
	case "table":
		return writeTable(w, r, o.Page, o.PageSize)

	case "json":
		pretty, err := render.PrettyJSON(r.ToPlain())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, pretty)
		return err

	case "graph":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(render.ExtractGraph(r, o.MaxBindings))

	default:
		export, err := render.Download(render.Format(o.Format), r, o.MaxBindings)
		if err != nil {
			return err
		}
		_, err = w.Write(export.Content)
		return err
	}
}

var cellReplacer = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

// writeTable prints one page of r as aligned plain-text columns
func writeTable(w io.Writer, r *results.QueryResult, page, pageSize int) error {
	t := render.RenderPage(r, render.ComputePagination(r.Len(), pageSize), page)

	switch {
	case t.Boolean != nil:
		_, err := fmt.Fprintf(w, "Result: %t\n", t.BooleanValue())
		return err
	case t.Empty:
		_, err := fmt.Fprintln(w, "No results found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Variables, "\t"))
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = cellReplacer.Replace(c.Text)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Found %d results, page %d of %d\n", t.ResultCount, t.Pagination.CurrentPage, t.Pagination.TotalPages)
	return err
}
