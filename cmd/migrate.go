package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satkam/partsbot/db"
	"github.com/satkam/partsbot/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("validating config: %w", err)
		}

		logger := newLogger()
		if err := db.Migrate(cfg.PostgresURL(), logger); err != nil {
			return err
		}
		logger.Info("database is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
