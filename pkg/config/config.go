// Package config loads and merges tai settings from the global config file,
// an optional per-project file, and the environment, and locates context
// files to inject into the system prompt.
package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// LocalFileName is the per-project config file, searched in the working
	// directory and then the git root.
	LocalFileName = ".tai.toml"

	globalFileName = "config.toml"
	envPrefix      = "TAI"

	// DefaultMaxToolIterations bounds the tool loop within one turn.
	DefaultMaxToolIterations = 25
)

// configKeys lists every key the Config struct decodes. Each one is bound to
// its TAI_* variable explicitly: viper only feeds env values into Unmarshal
// for keys it already knows about, so env-only keys without a default would
// otherwise be dropped.
var configKeys = []string{
	"provider",
	"model",
	"temperature",
	"max_tokens",
	"anthropic_api_key",
	"base_url",
	"history_size",
	"max_tool_iterations",
	"global_contexts",
}

// Config holds the merged settings for a session.
type Config struct {
	Provider          string   `mapstructure:"provider"`
	Model             string   `mapstructure:"model"`
	Temperature       float64  `mapstructure:"temperature"`
	MaxTokens         int      `mapstructure:"max_tokens"`
	AnthropicAPIKey   string   `mapstructure:"anthropic_api_key"`
	BaseURL           string   `mapstructure:"base_url"`
	HistorySize       int      `mapstructure:"history_size"`
	MaxToolIterations int      `mapstructure:"max_tool_iterations"`
	GlobalContexts    []string `mapstructure:"global_contexts"`
}

// GlobalConfigDir returns (and creates) the per-user config directory.
func GlobalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	dir := filepath.Join(home, ".config", "tai")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}
	return dir, nil
}

// GlobalConfigPath returns the global config file location.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, globalFileName), nil
}

// Load reads the global config, merges the local project file over it, and
// lets TAI_* environment variables override both. Missing files are fine;
// malformed files are not.
func Load() (*Config, error) {
	globalPath, err := GlobalConfigPath()
	if err != nil {
		return nil, err
	}
	return load(globalPath, findLocalConfig())
}

func load(globalPath, localPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetDefault("provider", "anthropic")
	v.SetDefault("model", "claude-sonnet-4-20250514")
	v.SetDefault("temperature", 0.2)
	v.SetDefault("max_tokens", 4096)
	v.SetDefault("history_size", 10)
	v.SetDefault("max_tool_iterations", DefaultMaxToolIterations)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", globalPath, err)
		}
	}
	if localPath != "" {
		v.SetConfigFile(localPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", localPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// EffectiveAPIKey prefers the configured key and falls back to the
// provider's conventional environment variable.
func (c *Config) EffectiveAPIKey() string {
	if c.AnthropicAPIKey != "" {
		return c.AnthropicAPIKey
	}
	return os.Getenv("ANTHROPIC_API_KEY")
}

// Set writes one key into the chosen config file (global or local),
// preserving other keys already present.
func Set(key, value string, global bool) error {
	var path string
	if global {
		p, err := GlobalConfigPath()
		if err != nil {
			return err
		}
		path = p
	} else {
		path = findLocalConfig()
		if path == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			if root := gitRoot(); root != "" {
				path = filepath.Join(root, LocalFileName)
			} else {
				path = filepath.Join(cwd, LocalFileName)
			}
		}
	}

	v := viper.New()
	v.SetConfigType("toml")
	if fileExists(path) {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
	}
	v.Set(key, value)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// findLocalConfig looks for the project config in the working directory and
// then the git root.
func findLocalConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	local := filepath.Join(cwd, LocalFileName)
	if fileExists(local) {
		return local
	}
	if root := gitRoot(); root != "" {
		fromRoot := filepath.Join(root, LocalFileName)
		if fileExists(fromRoot) {
			return fromRoot
		}
	}
	return ""
}

func gitRoot() string {
	out, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
