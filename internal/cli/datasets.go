package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// DatasetsOptions holds flags for the datasets command.
type DatasetsOptions struct {
	*RootOptions
	JSON     bool
	Endpoint string
}

// NewDatasetsCommand creates the datasets command.
func NewDatasetsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DatasetsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List the datasets of the SPARQL endpoint",
		Long: `List the datasets offered by the endpoint. When the list cannot be
fetched the built-in default datasets are printed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDatasets(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print JSON")
	cmd.Flags().StringVar(&opts.Endpoint, "endpoint", "", "endpoint base URL (overrides config)")

	return cmd
}

func runDatasets(cmd *cobra.Command, opts *DatasetsOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if opts.Endpoint != "" {
		cfg.Endpoint.URL = opts.Endpoint
	}

	datasets := newClient(cfg).ListDatasets(cmd.Context())

	if opts.JSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(datasets)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LABEL\tNAME")
	for _, ds := range datasets {
		fmt.Fprintf(tw, "%s\t%s\n", ds.Label, ds.Name)
	}
	return tw.Flush()
}
