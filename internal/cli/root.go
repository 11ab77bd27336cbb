// Package cli wires configuration, storage and servers behind the
// clubgate-server commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/champions-academy/clubgate/internal/config"
	"github.com/champions-academy/clubgate/internal/logger"
)

type globalOptions struct {
	dbPath   string
	logLevel string
}

func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "clubgate-server",
		Short:         "Club access control server",
		Long:          `clubgate-server decides whether a scanned member card may enter and records the check-in.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path (overrides CLUBGATE_DB_PATH)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (overrides CLUBGATE_LOG_LEVEL)")

	cmd.AddCommand(
		newServeCommand(opts),
		newMigrateCommand(opts),
		newSeedCommand(opts),
	)

	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func (o *globalOptions) load() (config.Config, *slog.Logger, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	log, _, err := logger.New(logger.Options{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		SourceAll: cfg.Env == "dev" && cfg.LogLevel == "debug",
	})
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}
