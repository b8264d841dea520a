package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("STORAGE_DRIVER", "S3")
	t.Setenv("UPLOAD_MAX_SIZE", "2MB")
	t.Setenv("UPSTREAM_TIMEOUT", "750ms")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Storage.MinIO.UseSSL)
	assert.Equal(t, "s3", cfg.Storage.Driver)
	assert.Equal(t, int64(2_000_000), cfg.Upload.MaxSize)
	assert.Equal(t, 750*time.Millisecond, cfg.UpstreamTimeout)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("UPLOAD_MAX_SIZE", "")
	t.Setenv("UPSTREAM_TIMEOUT", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("APP_TIMEZONE", "")

	cfg := Load()

	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxSize)
	assert.Equal(t, 5*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, "minio", cfg.Storage.Driver)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLocation(t *testing.T) {
	cfg := &AppConfig{Timezone: "Asia/Jakarta"}
	assert.Equal(t, "Asia/Jakarta", cfg.Location().String())

	cfg.Timezone = "Not/AZone"
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	t.Setenv(key, "value")

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	t.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	t.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	t.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	t.Setenv(key, "")
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	t.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	t.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	t.Setenv(key, "")
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_DURATION_VAR"

	t.Setenv(key, "3s")
	assert.Equal(t, 3*time.Second, getEnvDuration(key, time.Second))

	t.Setenv(key, "-3s")
	assert.Equal(t, time.Second, getEnvDuration(key, time.Second))

	t.Setenv(key, "soon")
	assert.Equal(t, time.Second, getEnvDuration(key, time.Second))
}

func TestGetEnvBytes(t *testing.T) {
	key := "TEST_BYTES_VAR"

	t.Setenv(key, "1KiB")
	assert.Equal(t, int64(1024), getEnvBytes(key, 1))

	t.Setenv(key, "lots")
	assert.Equal(t, int64(1), getEnvBytes(key, 1))

	t.Setenv(key, "0")
	assert.Equal(t, int64(1), getEnvBytes(key, 1))
}
