package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "~/.plugforge/bin", cfg.ArtifactDir)
	assert.Equal(t, "go", cfg.Strategy)
	assert.Empty(t, cfg.Hosts)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plugforge.json")
	contents := `{
		"log_level": "debug",
		"artifact_dir": "/tmp/artifacts",
		"strategy": "prebuilt",
		"hosts": {
			"greeter": {"dir": "./hosts/greeter", "args": ["--verbose"], "strategy": "go"}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/artifacts", cfg.ArtifactDir)
	assert.Equal(t, "prebuilt", cfg.Strategy)

	hc, ok := cfg.Host("greeter")
	require.True(t, ok)
	assert.Equal(t, "./hosts/greeter", hc.Dir)
	assert.Equal(t, []string{"--verbose"}, hc.Args)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plugforge.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestStrategyFor(t *testing.T) {
	cfg := &Config{
		Strategy: "go",
		Hosts: map[string]HostConfig{
			"custom":  {Strategy: "prebuilt"},
			"default": {},
		},
	}

	assert.Equal(t, "prebuilt", cfg.StrategyFor("custom"))
	assert.Equal(t, "go", cfg.StrategyFor("default"))
	assert.Equal(t, "go", cfg.StrategyFor("unknown"))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".plugforge"), ExpandPath("~/.plugforge"))
	assert.Equal(t, "/absolute/path", ExpandPath("/absolute/path"))
	assert.Equal(t, "relative/path", ExpandPath("relative/path"))
}
