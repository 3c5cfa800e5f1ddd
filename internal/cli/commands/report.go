package commands

import (
	"github.com/spf13/cobra"

	"github.com/meridian-data/funnelboard/internal/cli/config"
)

// ReportOptions holds options for the report command.
type ReportOptions struct {
	Format string
}

// NewReportCommand creates the report command.
func NewReportCommand() *cobra.Command {
	opts := &ReportOptions{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the funnel report to the terminal",
		Long: `Run the funnel queries once and print the report without starting
the web server. Useful for cron jobs and quick checks.`,
		Example: `  # Print the report as terminal tables
  funnelboard report

  # Machine-readable output
  funnelboard report --format json
  funnelboard report --format csv > funnel.csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())
			logger := config.GetLogger(cmd.Context())

			format := opts.Format
			if format == "" {
				format = cfg.OutputFormat
			}

			setup, err := newPipelineSetup(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer setup.Close()

			page, err := setup.Pipeline.Render(cmd.Context())
			if err != nil {
				return err
			}
			return renderReport(cmd.OutOrStdout(), page, format)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: table, json, csv")
	return cmd
}
