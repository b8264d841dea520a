// Package migration applies the embedded goose migrations that define the documents schema.
package migration

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed sql/*.sql
var migrations embed.FS

const migrationsDir = "sql"

// gooseUp is a seam for testing goose.UpContext.
var gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
	return goose.UpContext(ctx, db, dir)
}

// gooseLogger routes goose's own progress lines through zerolog.
type gooseLogger struct {
	log zerolog.Logger
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.Error().Str("component", "database").Msgf(format, v...)
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.Info().Str("component", "database").Msgf(format, v...)
}

func setup(log zerolog.Logger) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{log: log})
	return goose.SetDialect("pgx")
}

// EnsureMigrated brings the schema up to the latest embedded version.
func EnsureMigrated(ctx context.Context, db *sql.DB, log zerolog.Logger, dbHost string) error {
	start := time.Now()
	log = log.With().Str("component", "database").Str("db_host", dbHost).Logger()

	log.Info().Str("event", "db_migration_start").Str("status", "in_progress").Msg("applying migrations")

	if err := setup(log); err != nil {
		return fmt.Errorf("goose setup: %w", err)
	}
	if err := gooseUp(ctx, db, migrationsDir); err != nil {
		log.Error().
			Str("event", "db_migration_failed").
			Str("status", "error").
			Err(err).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("migration failed")
		return fmt.Errorf("migrate up: %w", err)
	}

	log.Info().
		Str("event", "db_migration_success").
		Str("status", "success").
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("schema up to date")
	return nil
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, db *sql.DB, log zerolog.Logger) error {
	if err := setup(log); err != nil {
		return fmt.Errorf("goose setup: %w", err)
	}
	return goose.DownContext(ctx, db, migrationsDir)
}

// Status logs the applied state of every embedded migration.
func Status(ctx context.Context, db *sql.DB, log zerolog.Logger) error {
	if err := setup(log); err != nil {
		return fmt.Errorf("goose setup: %w", err)
	}
	return goose.StatusContext(ctx, db, migrationsDir)
}
