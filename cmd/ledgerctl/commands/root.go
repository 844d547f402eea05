package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ledgerline/dashboard/internal/config"
	"github.com/ledgerline/dashboard/internal/database"
)

var dbURL string

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Administer the invoice dashboard database",
	Long: `ledgerctl runs one-off maintenance tasks against the dashboard database.

Configuration is read from the environment (and an optional .env file) the
same way the server reads it. --db overrides DATABASE_URL.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database connection URL (defaults to DATABASE_URL)")
}

// loadConfig reads the server configuration, letting --db stand in for a
// missing DATABASE_URL.
func loadConfig() (*config.Config, error) {
	if dbURL != "" {
		if err := os.Setenv("DATABASE_URL", dbURL); err != nil {
			return nil, err
		}
	}
	return config.Load()
}

func connect(ctx context.Context) (*database.DB, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	return db, cfg, nil
}
