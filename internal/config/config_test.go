package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "log", cfg.Notify.Driver)
	assert.Equal(t, 5.0, cfg.Reminder.DefaultMinutesBefore)
	assert.Equal(t, 12*time.Hour, cfg.Session.IdleTTL)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.IsDev())
}

func TestLoadFrom_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
  read_timeout: 3s
storage:
  driver: Redis
  redis_addr: "cache:6379"
reminder:
  default_minutes_before: 15
session:
  idle_ttl: 30m
`), 0o600))

	t.Setenv("GOTEO_SERVER_ADDR", ":7070")
	t.Setenv("GOTEO_APP_ID", "ward-3")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, "cache:6379", cfg.Storage.RedisAddr)
	assert.Equal(t, 15.0, cfg.Reminder.DefaultMinutesBefore)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTTL)
	assert.Equal(t, "ward-3", cfg.App.ID)
}

func TestLoad_UsesEnvPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFrom_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [::"), 0o600))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Storage.Driver = "postgres"
	assert.ErrorContains(t, cfg.Validate(), "postgres_dsn")

	cfg = Default()
	cfg.Notify.Driver = "pushover"
	assert.ErrorContains(t, cfg.Validate(), "pushover_token")

	cfg = Default()
	cfg.Storage.Driver = "sqlite"
	cfg.Notify.Driver = "sms"
	err := cfg.Validate()
	assert.ErrorContains(t, err, "storage.driver")
	assert.ErrorContains(t, err, "notify.driver")

	cfg = Default()
	cfg.Reminder.DefaultMinutesBefore = 0
	assert.ErrorContains(t, cfg.Validate(), "reminder.default_minutes_before")

	cfg = Default()
	cfg.Session.IdleTTL = -time.Minute
	assert.ErrorContains(t, cfg.Validate(), "session.idle_ttl")
}
