package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meridian-data/funnelboard/internal/cli/config"
	"github.com/meridian-data/funnelboard/internal/seed"
	"github.com/meridian-data/funnelboard/internal/warehouse"
)

// SeedOptions holds options for the seed command.
type SeedOptions struct {
	Rows int
	Seed int64
}

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	opts := &SeedOptions{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create and populate a synthetic funnel table",
		Long: `Drop and recreate the funnel table, then fill it with synthetic
checkouts. Intended for local DuckDB development; the same --seed always
produces the same data.`,
		Example: `  # Seed a local DuckDB file with 5000 checkouts
  funnelboard seed --source-type duckdb --database funnel.db --rows 5000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())
			logger := config.GetLogger(cmd.Context())

			adapter, err := warehouse.Open(cmd.Context(), cfg.Source)
			if err != nil {
				return fmt.Errorf("connect to %s: %w", cfg.Source.Type, err)
			}
			defer func() { _ = adapter.Close() }()

			s := seed.New(adapter, logger)
			if err := s.Run(cmd.Context(), seed.Options{
				Table: cfg.Table,
				Rows:  opts.Rows,
				Seed:  opts.Seed,
			}); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d rows into %s\n", opts.Rows, cfg.Table)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Rows, "rows", 5000, "Number of synthetic checkouts")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 1, "Random seed for repeatable data")
	return cmd
}
