package main

import (
	"fmt"

	"github.com/BradenHooton/tiktok-automation/internal/config"
	"github.com/BradenHooton/tiktok-automation/internal/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

func newMigrateSubcommand(direction, short string) *cobra.Command {
	return &cobra.Command{
		Use:   direction,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := newLogger(cfg.Server.LogLevel)

			db, err := database.NewConnection(cmd.Context(), &cfg.Database, logger)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			return db.Migrate(cmd.Context(), direction)
		},
	}
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(
		newMigrateSubcommand(database.MigrateUp, "Apply all up migrations"),
		newMigrateSubcommand(database.MigrateDown, "Roll back the latest migration"),
		newMigrateSubcommand(database.MigrateStatus, "Show migration status"),
	)
}
