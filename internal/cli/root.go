package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aleksaelezovic/sparqlconsole/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
}

// NewRootCommand creates the root command for the sparqlconsole CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sparqlconsole",
		Short: "SPARQL query console",
		Long: `A query console for remote SPARQL endpoints.

Runs queries against a SPARQL 1.1 endpoint and shows the results as a
paginated table, highlighted JSON, SPARQL XML or a node/edge graph, either
in the browser (serve) or on the command line (query, render).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewDatasetsCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// loadConfig loads the file named by --config on top of the defaults
func (o *RootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return cfg, nil
}

// verbosef writes a diagnostic line when --verbose is set
func (o *RootOptions) verbosef(w io.Writer, format string, args ...any) {
	if !o.Verbose {
		return
	}
	fmt.Fprintf(w, format+"\n", args...)
}
