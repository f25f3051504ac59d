// Package cli provides the command-line interface for tenantdb.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/loomworks/tenantdb/internal/cli/commands"
	"github.com/loomworks/tenantdb/internal/cli/config"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tenantdb",
		Short: "tenantdb - tenant database schema reconciliation",
		Long: `tenantdb provisions and converges the schema of per-tenant PostgreSQL
databases. Every tenant owns a physically separate database with an
identical structure; tenantdb compares each one against the compiled-in
target model and applies only the missing differences.

There is no migration ledger and nothing to roll back: re-running is
always safe and is the recovery mechanism after a partial failure.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			logger := newLogger(cfg.LogLevel, cfg.LogFormat)
			commands.SetContext(cfg, logger)

			if cfg.LogLevel == "debug" {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", configFile)
				}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default tenantdb.yaml)")
	rootCmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", config.DefaultLogFormat, "Log format: text or json")
	rootCmd.PersistentFlags().Int("parallelism", config.DefaultParallelism, "Concurrent tenants during fleet reconciliation")

	rootCmd.AddCommand(commands.NewReconcileCommand())
	rootCmd.AddCommand(commands.NewVerifyCommand())
	rootCmd.AddCommand(commands.NewStatusCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(Version, BuildDate, GitCommit))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
