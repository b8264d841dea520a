package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"docmark/internal/database"
	"docmark/internal/database/migration"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the documents schema",
	}

	run := func(op func(ctx context.Context, db *sql.DB, e env) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			e := loadEnv(cmd)
			db, err := database.NewPostgres(cmd.Context(), e.cfg.Database)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer db.Close()
			return op(cmd.Context(), db, e)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, db *sql.DB, e env) error {
				return migration.EnsureMigrated(ctx, db, e.log, e.cfg.Database.Host)
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, db *sql.DB, e env) error {
				return migration.Down(ctx, db, e.log)
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show which migrations have been applied",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, db *sql.DB, e env) error {
				return migration.Status(ctx, db, e.log)
			}),
		},
	)
	return cmd
}
