package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "https://auth.tidal.com/v1/oauth2", cfg.Tidal.AuthBaseURL)
	assert.Equal(t, "https://api.tidal.com", cfg.Tidal.APIBaseURL)
	assert.Equal(t, "r_usr w_usr w_sub", cfg.Tidal.Scopes)
	assert.Equal(t, "claude-sonnet-4-6", cfg.Anthropic.Model)
	assert.Equal(t, "./crescendo.db", cfg.Database.Path)
	assert.Equal(t, "127.0.0.1:3000", cfg.Addr())
	assert.Equal(t, 4, cfg.Discovery.FanoutWorkers)
	assert.Equal(t, 5*time.Minute, cfg.Discovery.Timeout())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[tidal]
client_id = "id-1"
client_secret = "secret-1"

[anthropic]
api_key = "key-1"

[server]
host = "0.0.0.0"
port = 8080

[discovery]
timeout_seconds = 0
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "id-1", cfg.Tidal.ClientID)
	assert.Equal(t, "key-1", cfg.Anthropic.APIKey)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	// Zero disables the discovery deadline.
	assert.Equal(t, time.Duration(0), cfg.Discovery.Timeout())
	// Unset timeout falls back to a sane default.
	assert.Equal(t, 30*time.Second, cfg.Tidal.HTTPTimeout())
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TIDAL_CLIENT_ID", "env-id")
	t.Setenv("TIDAL_CLIENT_SECRET", "env-secret")
	t.Setenv("ANTHROPIC_API_KEY", "env-key")

	cfg := Default()
	assert.Equal(t, "env-id", cfg.Tidal.ClientID)
	assert.Equal(t, "env-secret", cfg.Tidal.ClientSecret)
	assert.Equal(t, "env-key", cfg.Anthropic.APIKey)
}
