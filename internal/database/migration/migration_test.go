package migration

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrations, migrationsDir+"/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	body, err := fs.ReadFile(migrations, files[0])
	require.NoError(t, err)
	text := string(body)
	assert.True(t, strings.HasPrefix(text, "-- +goose Up"))
	assert.Contains(t, text, "highlights    JSONB")
	assert.Contains(t, text, "storage_key   TEXT        UNIQUE")
	assert.Contains(t, text, "-- +goose Down")
}

func TestEnsureMigrated(t *testing.T) {
	orig := gooseUp
	defer func() { gooseUp = orig }()

	t.Run("success", func(t *testing.T) {
		var dir string
		gooseUp = func(ctx context.Context, db *sql.DB, d string) error {
			dir = d
			return nil
		}

		var buf bytes.Buffer
		err := EnsureMigrated(context.Background(), nil, zerolog.New(&buf), "db.local")
		require.NoError(t, err)
		assert.Equal(t, migrationsDir, dir)
		assert.Contains(t, buf.String(), `"event":"db_migration_success"`)
		assert.Contains(t, buf.String(), `"db_host":"db.local"`)
	})

	t.Run("failure", func(t *testing.T) {
		gooseUp = func(ctx context.Context, db *sql.DB, d string) error {
			return errors.New("relation exists")
		}

		var buf bytes.Buffer
		err := EnsureMigrated(context.Background(), nil, zerolog.New(&buf), "db.local")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "migrate up: relation exists")
		assert.Contains(t, buf.String(), `"event":"db_migration_failed"`)
	})
}
