package cli

import (
	"time"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health and round-trip time",
		RunE: func(cmd *cobra.Command, args []string) error {
			result := HealthResult{Server: cfg.ServerURL}

			start := time.Now()
			if err := client.Get(cmd.Context(), "/api/health", &result); err != nil {
				return err
			}
			result.Latency = time.Since(start).Round(time.Microsecond).String()

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}
