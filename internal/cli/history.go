package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/aleksaelezovic/sparqlconsole/internal/config"
	"github.com/aleksaelezovic/sparqlconsole/internal/history"
	"github.com/aleksaelezovic/sparqlconsole/internal/storage"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
	JSON  bool
	Prune bool
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently executed queries",
		Long: `Show the queries recorded by the console server, newest first.

The history database is locked while the server runs; stop it first.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "number of entries to show (0 for all)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print JSON")
	cmd.Flags().BoolVar(&opts.Prune, "prune", false, "remove entries older than the configured retention first")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return NewExitError(ExitCommandError, "query history is disabled in the config")
	}

	h, closeFn, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	if opts.Prune {
		n, err := h.Prune(time.Now().Add(-cfg.History.Retention))
		if err != nil {
			return WrapExitError(ExitFailure, "failed to prune history", err)
		}
		opts.verbosef(cmd.ErrOrStderr(), "Pruned %d entries", n)
	}

	entries, err := h.List(opts.Limit)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read history", err)
	}

	if opts.JSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tDATASET\tROWS\tRUNS\tQUERY")
	for _, e := range entries {
		query := cellReplacer.Replace(e.Query)
		if e.Error != "" {
			query += "  [" + e.Error + "]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", e.At.Local().Format(time.DateTime), e.Dataset, e.Rows, e.RunCount, query)
	}
	return tw.Flush()
}

// openHistory opens the history database named by the config
func openHistory(cfg *config.Config) (*history.History, func(), error) {
	st, err := storage.NewBadgerStorage(cfg.History.Path)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open history database", err)
	}
	return history.New(st), func() { _ = st.Close() }, nil
}
