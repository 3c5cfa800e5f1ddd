package commands

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/meridian-data/funnelboard/internal/cli/config"
)

// NewRefreshCommand creates the refresh command.
func NewRefreshCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Ask a running dashboard to drop its query cache",
		Long: `Send a refresh request to a running dashboard. The server drops its
cached results and re-queries the warehouse on the next render; connected
browsers update in place.`,
		Example: `  # Refresh the local dashboard
  funnelboard refresh

  # Refresh a dashboard on another host
  funnelboard refresh --addr http://reporting-box:8765`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())

			target := addr
			if target == "" {
				target = fmt.Sprintf("http://localhost:%d", cfg.Port)
			}

			client := &http.Client{Timeout: 10 * time.Second}
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, target+"/refresh", nil)
			if err != nil {
				return err
			}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("reach dashboard at %s: %w", target, err)
			}
			defer func() { _ = resp.Body.Close() }()

			if resp.StatusCode != http.StatusNoContent {
				return fmt.Errorf("dashboard at %s returned %s", target, resp.Status)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Refresh requested at %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Dashboard base URL (default http://localhost:<port>)")
	return cmd
}
