package build

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plugforge.dev/cli/internal/host"
)

func initCommittedRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if err := cmd.Run(); err != nil {
			t.Skipf("git unavailable: %v", err)
		}
	}

	run("init")
	run("config", "user.email", "test@test.com")
	run("config", "user.name", "Test User")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0644))
	run("add", ".")
	run("commit", "-m", "initial")

	return dir
}

func writeFakeBinary(t *testing.T, artifactDir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(ArtifactPath(artifactDir, name), []byte("#!/bin/sh\n"), 0755))
}

func TestWriteAndReadStamp(t *testing.T) {
	artifactDir := t.TempDir()
	sourceDir := initCommittedRepo(t)
	id := host.New("greeter", sourceDir, nil)

	require.NoError(t, WriteStamp(artifactDir, id))

	stamp, ok := ReadStamp(artifactDir, "greeter")
	require.True(t, ok)
	assert.Equal(t, "greeter", stamp.Name)
	assert.NotEmpty(t, stamp.Commit)
	assert.Equal(t, sourceDir, stamp.Dir)
	assert.False(t, stamp.BuiltAt.IsZero())
}

func TestReadStamp_Missing(t *testing.T) {
	_, ok := ReadStamp(t.TempDir(), "nope")
	assert.False(t, ok)
}

func TestCachedCommand_CleanMatchingStamp(t *testing.T) {
	artifactDir := t.TempDir()
	sourceDir := initCommittedRepo(t)
	id := host.New("greeter", sourceDir, []string{"--flag"})

	writeFakeBinary(t, artifactDir, "greeter")
	require.NoError(t, WriteStamp(artifactDir, id))

	cmd, ok := CachedCommand(artifactDir, id, hclog.NewNullLogger())
	require.True(t, ok)
	assert.Equal(t, ArtifactPath(artifactDir, "greeter"), cmd.Executable())
	assert.Equal(t, []string{"--flag"}, cmd.Args())
}

func TestCachedCommand_DirtyTreeForcesRebuild(t *testing.T) {
	artifactDir := t.TempDir()
	sourceDir := initCommittedRepo(t)
	id := host.New("greeter", sourceDir, nil)

	writeFakeBinary(t, artifactDir, "greeter")
	require.NoError(t, WriteStamp(artifactDir, id))

	// Dirty the tree after stamping.
	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, "extra.go"), []byte("package main\n"), 0644))

	_, ok := CachedCommand(artifactDir, id, hclog.NewNullLogger())
	assert.False(t, ok)
}

func TestCachedCommand_StaleStampForcesRebuild(t *testing.T) {
	artifactDir := t.TempDir()
	sourceDir := initCommittedRepo(t)
	id := host.New("greeter", sourceDir, nil)

	writeFakeBinary(t, artifactDir, "greeter")
	require.NoError(t, WriteStamp(artifactDir, id))

	// Advance the repository past the stamped commit.
	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, "extra.go"), []byte("package main\n"), 0644))
	for _, args := range [][]string{{"add", "."}, {"commit", "-m", "second"}} {
		cmd := exec.Command("git", args...)
		cmd.Dir = sourceDir
		require.NoError(t, cmd.Run())
	}

	_, ok := CachedCommand(artifactDir, id, hclog.NewNullLogger())
	assert.False(t, ok)
}

func TestCachedCommand_MissingBinary(t *testing.T) {
	artifactDir := t.TempDir()
	sourceDir := initCommittedRepo(t)
	id := host.New("greeter", sourceDir, nil)

	require.NoError(t, WriteStamp(artifactDir, id))

	_, ok := CachedCommand(artifactDir, id, hclog.NewNullLogger())
	assert.False(t, ok)
}
