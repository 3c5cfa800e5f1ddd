package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/meridian-data/funnelboard/internal/cli/config"
	"github.com/meridian-data/funnelboard/internal/dashboard"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the funnel analytics dashboard",
		Long: `Start the dashboard web server.

Query results are cached for the configured TTL; the Refresh button
(or POST /refresh) drops the cache and re-queries the warehouse.`,
		Example: `  # Serve against the configured warehouse
  funnelboard serve

  # Local development against a seeded DuckDB file
  funnelboard serve --source-type duckdb --database funnel.db --port 9000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())
			logger := config.GetLogger(cmd.Context())

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			setup, err := newPipelineSetup(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer setup.Close()

			srv := dashboard.NewServer(dashboard.Config{
				Pipeline: setup.Pipeline,
				Cache:    setup.Cache,
				Port:     cfg.Port,
				Logger:   logger,
			})
			return srv.Serve(ctx)
		},
	}
}
