// Package cli implements the docmark operator commands: schema migrations and token minting.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"docmark/internal/config"
	"docmark/internal/logger"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "docmark",
		Short:         "Operator tooling for the docmark API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().String("log-level", "", "override APP_LOG_LEVEL")

	root.AddCommand(newMigrateCmd(), newTokenCmd())
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// env bundles what every subcommand needs from the environment.
type env struct {
	cfg *config.AppConfig
	log zerolog.Logger
}

func loadEnv(cmd *cobra.Command) env {
	cfg := config.Load()
	level := cfg.LogLevel
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		level = v
	}
	return env{cfg: cfg, log: logger.New(cmd.ErrOrStderr(), level, cfg.Location())}
}
