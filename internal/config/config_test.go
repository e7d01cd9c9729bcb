package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreyshath-a11y/aeo-app/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8070", cfg.Server.Address)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, 55*time.Second, cfg.Scanner.ScanTimeout)
	assert.Equal(t, 8, cfg.Scanner.MaxRedirects)
	assert.Equal(t, int64(5*1024*1024), cfg.Scanner.MaxBodyBytes)
	assert.Contains(t, cfg.Scanner.UserAgent, "Mozilla/5.0")
	assert.Equal(t, 24*time.Hour, cfg.Scanner.CacheTTL)

	// Nominatim requires at least a second between requests.
	assert.GreaterOrEqual(t, cfg.Clients.GeocodeInterval, time.Second)
	assert.Empty(t, cfg.Clients.CruxAPIKey)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "aeoscanner", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Encoding)
	assert.False(t, cfg.Logging.Development)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("AEO_SERVER_ADDRESS", ":9090")
	t.Setenv("AEO_DATABASE_PASSWORD", "hunter2")
	t.Setenv("AEO_CLIENTS_CRUX_API_KEY", "crux-key")
	t.Setenv("AEO_LOGGING_LEVEL", "debug")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "hunter2", cfg.Database.Password)
	assert.Equal(t, "crux-key", cfg.Clients.CruxAPIKey)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
server:
  address: ":8200"
scanner:
  scan_timeout: 30s
database:
  host: db.internal
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8200", cfg.Server.Address)
	assert.Equal(t, 30*time.Second, cfg.Scanner.ScanTimeout)
	assert.Equal(t, "db.internal", cfg.Database.Host)

	// Keys absent from the file keep their defaults.
	assert.Equal(t, 5432, cfg.Database.Port)
}

func TestLoad_MalformedConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{not yaml"), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)
}
