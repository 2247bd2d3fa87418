package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plugforge.dev/cli/internal/config"
)

func statusConfig(t *testing.T, hosts map[string]config.HostConfig) *config.Config {
	t.Helper()
	return &config.Config{
		ArtifactDir: t.TempDir(),
		Strategy:    "go",
		Hosts:       hosts,
	}
}

func TestCollectStatuses_SortsByName(t *testing.T) {
	cfg := statusConfig(t, map[string]config.HostConfig{
		"zeta":  {Dir: t.TempDir()},
		"alpha": {Dir: t.TempDir()},
	})

	statuses := collectStatuses(cfg)
	require.Len(t, statuses, 2)
	assert.Equal(t, "alpha", statuses[0].Name)
	assert.Equal(t, "zeta", statuses[1].Name)
}

func TestCollectStatuses_UnversionedSource(t *testing.T) {
	hostDir := t.TempDir()
	cfg := statusConfig(t, map[string]config.HostConfig{
		"alpha": {Dir: hostDir},
	})

	statuses := collectStatuses(cfg)
	require.Len(t, statuses, 1)
	assert.Equal(t, "missing", statuses[0].Artifact)
	assert.Equal(t, "dirty or unversioned", statuses[0].Source)
	assert.True(t, statuses[0].Stale)
}

func TestCollectStatuses_BuiltArtifact(t *testing.T) {
	cfg := statusConfig(t, map[string]config.HostConfig{
		"alpha": {Dir: t.TempDir()},
	})
	path := filepath.Join(cfg.ArtifactDir, "alpha")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0755))

	statuses := collectStatuses(cfg)
	require.Len(t, statuses, 1)
	assert.Equal(t, "built", statuses[0].Artifact)
}

func TestCollectStatuses_PerHostStrategyOverride(t *testing.T) {
	cfg := statusConfig(t, map[string]config.HostConfig{
		"alpha": {Dir: t.TempDir(), Strategy: "prebuilt"},
		"beta":  {Dir: t.TempDir()},
	})

	statuses := collectStatuses(cfg)
	require.Len(t, statuses, 2)
	assert.Equal(t, "prebuilt", statuses[0].Strategy)
	assert.Equal(t, "go", statuses[1].Strategy)
}

func TestRenderStatusTable_EmptyConfig(t *testing.T) {
	out := renderStatusTable(nil)
	assert.Contains(t, out, "No hosts configured")
}

func TestRenderStatusTable_ContainsHostRows(t *testing.T) {
	out := renderStatusTable([]hostStatus{
		{Name: "alpha", Strategy: "go", Artifact: "built", Source: "fresh @ abcd1234", Dir: "/src/alpha"},
	})
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "fresh @ abcd1234")
	assert.Contains(t, out, "/src/alpha")
}

func TestShortCommit(t *testing.T) {
	assert.Equal(t, "deadbeef", shortCommit("deadbeefcafe0123"))
	assert.Equal(t, "abc", shortCommit("abc"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a-very-...", truncate("a-very-long-name", 10))
}
