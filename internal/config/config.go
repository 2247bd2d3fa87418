// Package config loads the process-wide starter configuration: which hosts
// exist, where build artifacts go, and which build strategy is active.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// HostConfig describes one configured plugin host.
type HostConfig struct {
	Dir      string   `json:"dir"`
	Args     []string `json:"args"`
	Strategy string   `json:"strategy"`
}

// Config is the starter configuration. It is loaded once per session and
// threaded explicitly through constructors; nothing reads it from ambient
// global state after that.
type Config struct {
	LogLevel    string `json:"log_level"`
	ArtifactDir string `json:"artifact_dir"`
	Strategy    string `json:"strategy"`
	Debug       bool   `json:"debug"`

	// Host configuration keyed by plugin host name
	Hosts map[string]HostConfig `json:"hosts"`
}

// Load reads configuration from configPath, falling back to
// PLUGFORGE_CONFIG_PATH and then plugforge.json. A missing file yields the
// defaults; a malformed file is an error.
func Load(configPath string) (*Config, error) {
	cfg := &Config{
		LogLevel:    "info",
		ArtifactDir: "~/.plugforge/bin",
		Strategy:    os.Getenv("PLUGFORGE_STRATEGY"),
		Hosts:       make(map[string]HostConfig),
	}

	if configPath == "" {
		configPath = os.Getenv("PLUGFORGE_CONFIG_PATH")
		if configPath == "" {
			configPath = "plugforge.json"
		}
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if cfg.Strategy == "" {
		cfg.Strategy = "go"
	}

	return cfg, nil
}

// Host returns the configuration for a named host, if present.
func (c *Config) Host(name string) (HostConfig, bool) {
	hc, ok := c.Hosts[name]
	return hc, ok
}

// StrategyFor resolves the build strategy for a named host: the per-host
// override if set, otherwise the session default.
func (c *Config) StrategyFor(name string) string {
	if hc, ok := c.Hosts[name]; ok && hc.Strategy != "" {
		return hc.Strategy
	}
	return c.Strategy
}

// ExpandPath expands ~ to the user home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
