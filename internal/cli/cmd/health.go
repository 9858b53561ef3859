package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/agonsep/21stCentury/internal/cli/output"
)

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the catalog API is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.FromCmd(cmd)
			if err != nil {
				return err
			}

			health, err := a.client().Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}

			return f.Output(health, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s: %s (server time %s)\n",
					a.cfg.Server.URL, health.Status, health.Timestamp.Format(time.RFC3339))
				return err
			})
		},
	}
}
