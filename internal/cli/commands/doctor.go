package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/meridian-data/funnelboard/internal/catalog"
	"github.com/meridian-data/funnelboard/internal/cli/config"
	"github.com/meridian-data/funnelboard/internal/warehouse"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check warehouse connectivity and funnel table health",
		Long: `Verify that the dashboard can actually run: configuration is
complete, the warehouse accepts the credentials, and every funnel query
executes against the configured table.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())
			w := cmd.OutOrStdout()
			failures := 0

			check := func(name string, err error) {
				if err != nil {
					failures++
					_, _ = fmt.Fprintf(w, "  ✗ %s: %v\n", name, err)
					return
				}
				_, _ = fmt.Fprintf(w, "  ✓ %s\n", name)
			}

			_, _ = fmt.Fprintln(w, "Configuration")
			if f := config.GetConfigFileUsed(); f != "" {
				_, _ = fmt.Fprintf(w, "  ✓ config file: %s\n", f)
			} else {
				_, _ = fmt.Fprintln(w, "  - no config file (defaults, env, flags only)")
			}
			check("settings valid", cfg.Validate())
			check("private key file", cfg.ValidateKeyPair())

			_, _ = fmt.Fprintf(w, "\nWarehouse (%s)\n", cfg.Source.Type)
			adapter, err := warehouse.Open(cmd.Context(), cfg.Source)
			check("connect", err)
			if err != nil {
				return fmt.Errorf("%d check(s) failed", failures)
			}
			defer func() { _ = adapter.Close() }()
			check("ping", adapter.Ping(cmd.Context()))

			_, _ = fmt.Fprintf(w, "\nFunnel queries (%s)\n", cfg.Table)
			cat, err := catalog.New(cfg.Dialect(), cfg.Table)
			if err != nil {
				return err
			}
			runQueryChecks(cmd, adapter, cat, check)

			if failures > 0 {
				return fmt.Errorf("%d check(s) failed", failures)
			}
			_, _ = fmt.Fprintln(w, "\nAll checks passed.")
			return nil
		},
	}
}

func runQueryChecks(cmd *cobra.Command, adapter warehouse.Adapter, cat *catalog.Catalog, check func(string, error)) {
	for _, q := range cat.All() {
		start := time.Now()
		rs, err := adapter.Query(cmd.Context(), q.SQL)
		if err != nil {
			check(string(q.ID), err)
			continue
		}
		check(fmt.Sprintf("%s (%d rows, %s)", q.ID, rs.NumRows(), time.Since(start).Round(time.Millisecond)), nil)
	}
}
