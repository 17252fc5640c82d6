package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, "pretty", cfg.LogFormat)
	assert.Equal(t, DefaultFetchTimeout, cfg.FetchTimeout)
	assert.Equal(t, DefaultFetchRetryAttempts, cfg.FetchRetryAttempts)
	assert.Empty(t, cfg.Storages)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_DIR", "/var/lib/byteserve")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("STORAGES", "storage0=file:///srv/s0, releases=s3://bucket?region=us-east-1")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("FETCH_TIMEOUT", "30s")
	t.Setenv("FETCH_RETRY_ATTEMPTS", "7")

	env, err := LoadFromEnv()
	require.NoError(t, err)
	cfg, err := env.ToAppConfig()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())
	assert.Equal(t, "/var/lib/byteserve", cfg.DataDir())
	assert.Equal(t, "sqlite:///"+filepath.Join("/var/lib/byteserve", DefaultDatabaseFile), cfg.DBURL())
	assert.Equal(t, LogFormatJSON, cfg.LogFormat())
	assert.Equal(t, map[string]string{
		"storage0": "file:///srv/s0",
		"releases": "s3://bucket?region=us-east-1",
	}, cfg.Storages())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins())
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout())
	assert.Equal(t, 7, cfg.FetchRetryAttempts())
}

func TestToAppConfig_EnvStoragesOverrideFile(t *testing.T) {
	clearEnvVars(t)
	path := filepath.Join(t.TempDir(), "storages.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storages:\n  storage0: file:///from/file\n  storage1: mem://\n"), 0o600))

	t.Setenv("STORAGES_FILE", path)
	t.Setenv("STORAGES", "storage0=file:///from/env")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"storage0": "file:///from/env",
		"storage1": "mem://",
	}, cfg.Storages())
}

func TestToAppConfig_InvalidStorages(t *testing.T) {
	_, err := EnvConfig{Storages: "storage0"}.ToAppConfig()
	assert.Error(t, err)

	_, err = EnvConfig{StoragesFile: filepath.Join(t.TempDir(), "nope.yaml")}.ToAppConfig()
	assert.Error(t, err)
}

func TestParseStorage(t *testing.T) {
	id, u, err := ParseStorage(" storage0 = file:///srv/a=b ")
	require.NoError(t, err)
	assert.Equal(t, "storage0", id)
	assert.Equal(t, "file:///srv/a=b", u)

	for _, bad := range []string{"", "=mem://", "storage0=", "storage0"} {
		_, _, err := ParseStorage(bad)
		assert.Error(t, err, bad)
	}
}

func TestLoadConfig_FromDotEnv(t *testing.T) {
	clearEnvVars(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=7070\nLOG_LEVEL=DEBUG\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Port())
	assert.Equal(t, "DEBUG", cfg.LogLevel())
}

func TestLoadDotEnv_MissingFileIsNotAnError(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}

// clearEnvVars unsets every variable EnvConfig reads, restoring them when
// the test ends.
func clearEnvVars(t *testing.T) {
	t.Helper()

	vars := []string{
		"HOST",
		"PORT",
		"DATA_DIR",
		"DB_URL",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"STORAGES",
		"STORAGES_FILE",
		"CORS_ALLOWED_ORIGINS",
		"FETCH_TIMEOUT",
		"FETCH_RETRY_ATTEMPTS",
	}

	for _, v := range vars {
		t.Setenv(v, "")
		_ = os.Unsetenv(v)
	}
}
