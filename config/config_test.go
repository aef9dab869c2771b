package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FromFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
postgres:
  dsn: postgres://file
nats:
  url: nats://file:4222
web_push:
  public_key: pub
  subject: mailto:admin@example.org
scheduler:
  interval: 30s
`), 0o600))

	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("METRICS_ENABLED", "true")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env", cfg.Postgres.DSN)
	assert.Equal(t, "nats://file:4222", cfg.NATS.URL)
	assert.Equal(t, "pub", cfg.WebPush.PublicKey)
	assert.Equal(t, 30*time.Second, cfg.Scheduler.Interval)
	assert.Equal(t, 5*time.Second, cfg.Scheduler.ErrorBackoff)
	assert.Equal(t, 86400, cfg.WebPush.TTL)
	assert.True(t, cfg.Observability.MetricsEnabled)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestLoadConfig_EnvOnly(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env-only")
	t.Setenv("SCHEDULER_INTERVAL", "1m")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "postgres://env-only", cfg.Postgres.DSN)
	assert.Equal(t, time.Minute, cfg.Scheduler.Interval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "https://www.thebluealliance.com/api/v3", cfg.TBA.BaseURL)
}

func TestLoadConfig_EnvOnlyRequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("SCHEDULER_INTERVAL", "soon")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
