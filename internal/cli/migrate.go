package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dailyink/dailyink/internal/database"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)

	migrateDownCmd.Flags().Int("steps", 1, "Number of migrations to revert")
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or revert database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := migrationsPath()
		if err != nil {
			return err
		}
		return database.RunMigrations(cfg.DB.DSN(), path)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert the most recent migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := migrationsPath()
		if err != nil {
			return err
		}
		steps, _ := cmd.Flags().GetInt("steps")
		return database.RollbackMigrations(cfg.DB.DSN(), path, steps)
	},
}

func migrationsPath() (string, error) {
	if cfg.DB.MigrationsPath == "" {
		return "", errors.New("DB_MIGRATIONS_PATH is not set")
	}
	return cfg.DB.MigrationsPath, nil
}
