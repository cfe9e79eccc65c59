package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aleksaelezovic/sparqlconsole/internal/config"
	"github.com/aleksaelezovic/sparqlconsole/internal/endpoint"
	"github.com/aleksaelezovic/sparqlconsole/pkg/console"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	File      string
	Dataset   string
	QueryType string
	Output    string
	Page      int
	PageSize  int
	Endpoint  string
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query [query]",
		Short: "Run a query against the SPARQL endpoint",
		Long: `Run a SPARQL query against the configured endpoint and print the result.

The query is taken from the argument, from --file, or from stdin when
neither is given.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "read the query from a file")
	cmd.Flags().StringVarP(&opts.Dataset, "dataset", "d", "default", "dataset to query")
	cmd.Flags().StringVarP(&opts.QueryType, "type", "t", "sparql", "query type (sparql|turtle)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "table", fmt.Sprintf("output format (%s)", strings.Join(OutputFormats, "|")))
	cmd.Flags().IntVar(&opts.Page, "page", 1, "table page to print")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "table rows per page (default from config)")
	cmd.Flags().StringVar(&opts.Endpoint, "endpoint", "", "endpoint base URL (overrides config)")

	return cmd
}

func runQuery(cmd *cobra.Command, opts *QueryOptions, args []string) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if opts.Endpoint != "" {
		cfg.Endpoint.URL = opts.Endpoint
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

	query, err := readQuery(cmd, opts.File, args)
	if err != nil {
		return err
	}
	queryType, err := console.ParseQueryType(opts.QueryType)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid query type", err)
	}

	client := newClient(cfg)
	state := console.NewState(cfg.RenderOptions())
	state, instr := console.OnExecute(cmd.Context(), state, console.ExecuteAction{
		Query:     query,
		QueryType: queryType,
		Dataset:   opts.Dataset,
	}, client)

	switch instr {
	case console.InstructionStatusOnly:
		return NewExitError(ExitCommandError, state.Status)
	case console.InstructionError:
		return NewExitError(ExitFailure, state.ErrorPanel)
	}

	opts.verbosef(cmd.ErrOrStderr(), "%s (%d ms)", state.Status, state.QueryTime.Milliseconds())
	return writeResult(cmd.OutOrStdout(), state.Result, out)
}

// readQuery returns the query from the argument, the file or stdin
func readQuery(cmd *cobra.Command, file string, args []string) (string, error) {
	switch {
	case len(args) == 1 && file != "":
		return "", NewExitError(ExitCommandError, "give either a query argument or --file, not both")
	case len(args) == 1:
		return args[0], nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", WrapExitError(ExitCommandError, "failed to read query file", err)
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", WrapExitError(ExitCommandError, "failed to read query from stdin", err)
		}
		return string(data), nil
	}
}

func newClient(cfg *config.Config) *endpoint.Client {
	return endpoint.NewClient(endpoint.Config{
		URL:          cfg.Endpoint.URL,
		QueryPath:    cfg.Endpoint.QueryPath,
		DatasetsPath: cfg.Endpoint.DatasetsPath,
		Timeout:      cfg.Endpoint.Timeout,
	})
}
