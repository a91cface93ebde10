package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/solatis/automata/internal/core/config"
	"github.com/solatis/automata/internal/core/db"
	"github.com/solatis/automata/internal/core/logging"
)

const Version = "0.1.0"

var (
	configFile string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:           "automata",
	Short:         "Automata condition evaluation service",
	Long:          `Automata compiles JSON automation definitions into condition trees and evaluates them against trigger payloads.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().String("database.url", "", "database connection URL (sqlite://path or postgres://...)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "log format (json, text)")
}

func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves configuration for cmd, letting its flags override the
// file and environment.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	logger := newCLILogger(cmd)

	cfg, err := config.LoadConfig(configFile, cmd.Flags())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, logger, nil
}

// newCLILogger builds the process logger from the persistent flags. Logs go
// to stderr so command output stays parseable.
func newCLILogger(cmd *cobra.Command) *slog.Logger {
	logger := logging.NewWithWriter(logLevel, logFormat, cmd.ErrOrStderr())
	slog.SetDefault(logger)
	return logger
}

// openDatabase opens and migrates the configured database.
func openDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sqlx.DB, *db.Queries, error) {
	database, err := db.Open(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	applied, err := db.MigrateUp(ctx, database)
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	for _, id := range applied {
		logger.InfoContext(ctx, "applied migration", "migration_id", id)
	}

	queries, err := db.LoadQueries(database)
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to load queries: %w", err)
	}
	return database, queries, nil
}
