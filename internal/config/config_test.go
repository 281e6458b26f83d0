package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	return dir
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(Options{EnvFile: filepath.Join(dir, "missing.env")})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "sha256", cfg.Auth.Hasher)
	assert.Equal(t, 1200.0, cfg.Meals.HighCalorieThreshold)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "fitlog.db", filepath.Base(cfg.Database.Path))
	assert.Equal(t, filepath.Join(filepath.Dir(cfg.Database.Path), "session"), cfg.SessionPath())
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /tmp/from-file.db
auth:
  hasher: bcrypt
meals:
  high_calorie_threshold: 900
log:
  level: info
`), 0o644))
	t.Setenv("FITLOG_LOG_LEVEL", "debug")

	cfg, err := Load(Options{ConfigFile: path, EnvFile: filepath.Join(dir, "missing.env")})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-file.db", cfg.Database.Path)
	assert.Equal(t, "bcrypt", cfg.Auth.Hasher)
	assert.Equal(t, 900.0, cfg.Meals.HighCalorieThreshold)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("FITLOG_DATABASE_DRIVER=postgres\nFITLOG_DATABASE_DSN=postgres://u:p@localhost/fitlog\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("FITLOG_DATABASE_DRIVER")
		os.Unsetenv("FITLOG_DATABASE_DSN")
	})

	cfg, err := Load(Options{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://u:p@localhost/fitlog", cfg.Database.DSN)
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := isolate(t)
	missing := filepath.Join(dir, "missing.env")

	t.Setenv("FITLOG_DATABASE_DRIVER", "mysql")
	_, err := Load(Options{EnvFile: missing})
	assert.ErrorContains(t, err, "unsupported database.driver")

	t.Setenv("FITLOG_DATABASE_DRIVER", "postgres")
	_, err = Load(Options{EnvFile: missing})
	assert.ErrorContains(t, err, "database.dsn is required")

	_, err = Load(Options{ConfigFile: filepath.Join(dir, "nope.yaml"), EnvFile: missing})
	assert.Error(t, err)
}
