package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := load(filepath.Join(dir, "config.toml"), "")
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, 4096, cfg.MaxTokens)
	assert.Equal(t, 10, cfg.HistorySize)
	assert.Equal(t, DefaultMaxToolIterations, cfg.MaxToolIterations)
	assert.InDelta(t, 0.2, cfg.Temperature, 1e-9)
}

func TestLoadGlobalFile(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "config.toml")
	writeFile(t, global, "model = \"claude-opus-4-20250514\"\nmax_tokens = 2048\n")

	cfg, err := load(global, "")
	require.NoError(t, err)

	assert.Equal(t, "claude-opus-4-20250514", cfg.Model)
	assert.Equal(t, 2048, cfg.MaxTokens)
	assert.Equal(t, "anthropic", cfg.Provider)
}

func TestLocalOverridesGlobal(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "config.toml")
	local := filepath.Join(dir, LocalFileName)
	writeFile(t, global, "max_tokens = 2048\ntemperature = 0.7\n")
	writeFile(t, local, "max_tokens = 512\nglobal_contexts = [\"style\"]\n")

	cfg, err := load(global, local)
	require.NoError(t, err)

	assert.Equal(t, 512, cfg.MaxTokens)
	assert.InDelta(t, 0.7, cfg.Temperature, 1e-9)
	assert.Equal(t, []string{"style"}, cfg.GlobalContexts)
}

func TestEnvironmentOverridesFiles(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "config.toml")
	writeFile(t, global, "model = \"from-file\"\n")
	t.Setenv("TAI_MODEL", "from-env")

	cfg, err := load(global, "")
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Model)
}

func TestEnvironmentSuppliesUndefaultedKeys(t *testing.T) {
	// base_url, anthropic_api_key, and global_contexts carry no default, so
	// they only round-trip through decoding when explicitly bound.
	dir := t.TempDir()
	t.Setenv("TAI_BASE_URL", "https://proxy.example.com")
	t.Setenv("TAI_ANTHROPIC_API_KEY", "env-only-key")
	t.Setenv("TAI_GLOBAL_CONTEXTS", "style,deploy")

	cfg, err := load(filepath.Join(dir, "config.toml"), "")
	require.NoError(t, err)

	assert.Equal(t, "https://proxy.example.com", cfg.BaseURL)
	assert.Equal(t, "env-only-key", cfg.AnthropicAPIKey)
	assert.Equal(t, []string{"style", "deploy"}, cfg.GlobalContexts)
}

func TestMalformedConfigRejected(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "config.toml")
	writeFile(t, global, "model = [unterminated\n")

	_, err := load(global, "")
	assert.Error(t, err)
}

func TestEffectiveAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-key")

	cfg := &Config{AnthropicAPIKey: "file-key"}
	assert.Equal(t, "file-key", cfg.EffectiveAPIKey())

	cfg.AnthropicAPIKey = ""
	assert.Equal(t, "env-key", cfg.EffectiveAPIKey())
}

func TestSetPreservesExistingKeys(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(home, ".config", "tai", "config.toml")
	writeFile(t, path, "model = \"keep-me\"\n")

	require.NoError(t, Set("max_tokens", "1234", true))

	cfg, err := load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "keep-me", cfg.Model)
	assert.Equal(t, 1234, cfg.MaxTokens)
}
