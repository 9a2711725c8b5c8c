package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"CONFIG_PATH", "PORT", "APP_ENV", "FRONTEND_URL", "DB_DRIVER", "DATABASE_URL", "MONGODB_URI",
	"MONGODB_DATABASE", "REDIS_ADDR", "REDIS_PASSWORD", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "ACTIVATION_SCHEDULE",
}

// isolate runs the test from an empty directory with a clean environment.
func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":4000", cfg.Server.Address)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "production", cfg.App.Env)
	assert.False(t, cfg.Development())
	assert.Equal(t, 20.0, cfg.RateLimit.RPS)
	assert.Equal(t, "@every 1m", cfg.Scheduler.Activation)
}

func TestShippedConfigIsProduction(t *testing.T) {
	sample, err := filepath.Abs(filepath.Join("..", "..", "config", "config.yaml"))
	require.NoError(t, err)
	isolate(t)
	t.Setenv("CONFIG_PATH", sample)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.App.Env)
	assert.False(t, cfg.Development())
}

func TestLoadConfigFileAndEnvOverrides(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  env: development
server:
  address: ":9000"
database:
  driver: mongo
  mongo_uri: mongodb://db:27017
rate_limit:
  burst: 5
`), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("PORT", "8081")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.Server.Address)
	assert.Equal(t, "mongo", cfg.Database.Driver)
	assert.Equal(t, "mongodb://db:27017", cfg.Database.MongoURI)
	assert.Equal(t, "outswap", cfg.Database.MongoDatabase)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.Equal(t, 5, cfg.RateLimit.Burst)
	assert.True(t, cfg.Development())
}

func TestLoadConfigErrors(t *testing.T) {
	dir := isolate(t)

	t.Setenv("CONFIG_PATH", filepath.Join(dir, "missing.yaml"))
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("CONFIG_PATH", "")
	t.Setenv("RATE_LIMIT_BURST", "many")
	_, err = LoadConfig()
	assert.Error(t, err)

	t.Setenv("RATE_LIMIT_BURST", "")
	t.Setenv("DB_DRIVER", "postgres")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestDotEnvIsLoaded(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("APP_ENV=development\n"), 0o600))
	os.Unsetenv("APP_ENV")
	t.Cleanup(func() { os.Unsetenv("APP_ENV") })

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Development())
}
