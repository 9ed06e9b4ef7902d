// Package cmd implements the CLI commands for bookbatch.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inkwhale/bookbatch/internal/config"
	"github.com/inkwhale/bookbatch/internal/observability"
	"github.com/inkwhale/bookbatch/internal/version"
)

// cfgFile holds the config file path from the CLI flag.
var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "bookbatch",
	Short:   "Book metadata collection and series organization",
	Version: version.Short(),
	Long: `bookbatch collects newly registered books from the national library
registry and the major Korean bookstores, merges the per-site records per
ISBN, and organizes books into series by normalized-title similarity.

Collection and organization run as batch jobs, either on demand or on a
cron schedule.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	// Global flags. These are not bound to viper: loadConfig checks
	// Changed() and only then overrides config/env values, preserving the
	// priority CLI flag > env var > config > default.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ., ./configs, /etc/bookbatch, $HOME/.bookbatch)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "log format (text, json)")
}

// loadConfig reads the configuration and applies explicit CLI overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if rootCmd.PersistentFlags().Changed("log-level") {
		level, _ := rootCmd.PersistentFlags().GetString("log-level")
		cfg.Logging.Level = strings.ToLower(level)
	}
	if rootCmd.PersistentFlags().Changed("log-format") {
		format, _ := rootCmd.PersistentFlags().GetString("log-format")
		cfg.Logging.Format = strings.ToLower(format)
	}
	if cfg.Logging.Level == "warning" {
		cfg.Logging.Level = "warn"
	}
	return cfg, nil
}

// setupLogger builds the redacting logger and installs it as the default.
func setupLogger(cfg *config.Config) *slog.Logger {
	logger := observability.NewLoggerWithWriter(cfg.Logging, os.Stderr)
	observability.SetDefault(logger)
	return logger
}
