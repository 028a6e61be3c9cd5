package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/imcoderdev/emergency-backend/internal/config"
	"github.com/imcoderdev/emergency-backend/pkg/postgres"
)

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s migrations applied from %s\n",
				color.New(color.FgGreen).Sprint("OK"), cfg.MigrationsPath)
			return nil
		},
	}
}
