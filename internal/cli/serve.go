package cli

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aleksaelezovic/sparqlconsole/internal/history"
	"github.com/aleksaelezovic/sparqlconsole/internal/telemetry"
	"github.com/aleksaelezovic/sparqlconsole/pkg/server"
)

const shutdownTimeout = 10 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Listen    string
	Endpoint  string
	NoHistory bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web query console",
		Long: `Start the HTTP query console.

Queries are sent to the configured SPARQL endpoint. Executed queries are
recorded in the history database and pruned on the configured schedule.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Listen, "listen", "l", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&opts.Endpoint, "endpoint", "", "endpoint base URL (overrides config)")
	cmd.Flags().BoolVar(&opts.NoHistory, "no-history", false, "do not record executed queries")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}
	if opts.Endpoint != "" {
		cfg.Endpoint.URL = opts.Endpoint
	}
	if opts.NoHistory {
		cfg.History.Enabled = false
	}

	shutdownTelemetry, err := telemetry.Setup(cfg.Telemetry.Endpoint, cfg.Telemetry.Service)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to set up telemetry", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			log.Printf("Failed to flush telemetry: %v", err)
		}
	}()

	var hist *history.History
	if cfg.History.Enabled {
		h, closeFn, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer closeFn()
		hist = h

		sched, err := history.NewScheduler(h, cfg.History.PruneSchedule, cfg.History.Retention)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to schedule history pruning", err)
		}
		sched.Start()
		defer sched.Stop()
		log.Printf("Recording query history in %s", cfg.History.Path)
	}

	client := newClient(cfg)
	srv := server.NewServer(client, client, hist, cfg.RenderOptions(), cfg.Server.Listen)
	log.Printf("Querying SPARQL endpoint %s", cfg.Endpoint.URL)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return WrapExitError(ExitFailure, "server failed", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "failed to shut down server", err)
	}
	return <-errCh
}
