package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/app"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		cfg := app.LoadConfig()

		st, err := app.OpenStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeQuietly(ctx, st)

		fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", cfg.DatabaseDriver)
		return nil
	},
}
