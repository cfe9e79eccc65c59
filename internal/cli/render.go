package cli

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aleksaelezovic/sparqlconsole/pkg/results"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Output   string
	Page     int
	PageSize int
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <results-file>",
		Short: "Render a saved SPARQL results file",
		Long: `Render a SPARQL results document (JSON or XML) without contacting an
endpoint. XML is detected from a leading '<'.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "table", fmt.Sprintf("output format (%s)", strings.Join(OutputFormats, "|")))
	cmd.Flags().IntVar(&opts.Page, "page", 1, "table page to print")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "table rows per page (default from config)")

	return cmd
}

func runRender(cmd *cobra.Command, opts *RenderOptions, path string) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	out := resultOutput{
		Format:      opts.Output,
		Page:        opts.Page,
		PageSize:    opts.PageSize,
		MaxBindings: cfg.Render.MaxGraphBindings,
	}
	if out.PageSize == 0 {
		out.PageSize = cfg.Render.PageSize
	}
	if err := out.validate(); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read results file", err)
	}

	r, err := parseResults(data)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to parse results", err)
	}
	opts.verbosef(cmd.ErrOrStderr(), "Loaded %d results from %s", r.Len(), path)

	return writeResult(cmd.OutOrStdout(), r, out)
}

// parseResults decodes a SPARQL JSON or XML results document
func parseResults(data []byte) (*results.QueryResult, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(trimmed) > 0 && trimmed[0] == '<' {
		return results.ParseXML(bytes.NewReader(trimmed))
	}
	return results.Parse(trimmed)
}
