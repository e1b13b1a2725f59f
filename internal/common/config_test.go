package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()
	assert.Equal(t, "LKR", config.Currency)
	assert.Equal(t, 40000.0, config.InitialCash)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "gemini-2.0-flash", config.Clients.Gemini.Model)
	assert.False(t, config.IsProduction())
}

func TestLoadConfigMergesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cense.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
currency = "usd"
initial_cash = 1000.0

[server]
port = 9090
`), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "usd", config.Currency)
	assert.Equal(t, 1000.0, config.InitialCash)
	assert.Equal(t, 9090, config.Server.Port)
	// Untouched values keep their defaults
	assert.Equal(t, "0.0.0.0", config.Server.Host)
}

func TestLoadConfigSkipsMissingFile(t *testing.T) {
	config, err := LoadConfig("/nonexistent/cense.toml")
	require.NoError(t, err)
	assert.Equal(t, "LKR", config.Currency)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CENSE_PORT", "7070")
	t.Setenv("CENSE_CURRENCY", "usd")
	t.Setenv("CENSE_DATA_PATH", "/var/cense")

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, "USD", config.Currency)
	assert.Equal(t, filepath.Join("/var/cense", "ledger"), config.Storage.Ledger.Path)
}

func TestGeminiTimeout(t *testing.T) {
	g := GeminiConfig{Timeout: "30s"}
	assert.Equal(t, 30*time.Second, g.GetTimeout())

	g.Timeout = "bogus"
	assert.Equal(t, 60*time.Second, g.GetTimeout())
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("CENSE_GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	_, err := ResolveAPIKey("")
	assert.Error(t, err)

	key, err := ResolveAPIKey("from-config")
	require.NoError(t, err)
	assert.Equal(t, "from-config", key)

	t.Setenv("GEMINI_API_KEY", "from-env")
	key, err = ResolveAPIKey("from-config")
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)
}
