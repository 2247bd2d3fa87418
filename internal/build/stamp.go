package build

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"

	"plugforge.dev/cli/internal/gitstate"
	"plugforge.dev/cli/internal/host"
	"plugforge.dev/cli/internal/process"
)

// Stamp records the source state a host binary was built from. It is written
// as a JSON sidecar next to the binary and consulted to short-circuit the
// build step on a later start.
type Stamp struct {
	Name    string    `json:"name"`
	Commit  string    `json:"commit"`
	Dir     string    `json:"dir"`
	BuiltAt time.Time `json:"built_at"`
}

func stampPath(artifactDir, name string) string {
	return filepath.Join(artifactDir, fmt.Sprintf("%s.stamp.json", name))
}

// WriteStamp records the current commit identity of the host's source tree
// next to its built binary.
func WriteStamp(artifactDir string, id host.Identity) error {
	stamp := Stamp{
		Name:    id.Name,
		Commit:  gitstate.CommitIdentity(id.Dir),
		Dir:     id.Dir,
		BuiltAt: time.Now(),
	}

	data, err := json.MarshalIndent(stamp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stamp: %w", err)
	}

	if err := os.WriteFile(stampPath(artifactDir, id.Name), data, 0644); err != nil {
		return fmt.Errorf("failed to write stamp file: %w", err)
	}
	return nil
}

// ReadStamp loads the stamp for a named host, if one exists.
func ReadStamp(artifactDir, name string) (*Stamp, bool) {
	data, err := os.ReadFile(stampPath(artifactDir, name))
	if err != nil {
		return nil, false
	}

	var stamp Stamp
	if err := json.Unmarshal(data, &stamp); err != nil {
		return nil, false
	}
	return &stamp, true
}

// CachedCommand short-circuits the build: if the host's binary exists and its
// stamp matches the current commit identity of a clean source tree, the
// binary is reused and no build job runs. A dirty tree or a mismatched stamp
// forces a rebuild; the mismatch is reported through the logger so stale
// artifacts are never reused silently.
func CachedCommand(artifactDir string, id host.Identity, log hclog.Logger) (process.Command, bool) {
	artifact := ArtifactPath(artifactDir, id.Name)
	if !isExecutable(artifact) {
		return process.Command{}, false
	}

	stamp, ok := ReadStamp(artifactDir, id.Name)
	if !ok {
		return process.Command{}, false
	}

	current := gitstate.CommitIdentity(id.Dir)
	if current == gitstate.DirtySentinel {
		log.Warn("source tree is dirty or unversioned, rebuilding", "host", id.Name, "dir", id.Dir)
		return process.Command{}, false
	}
	if stamp.Commit != current {
		log.Warn("cached binary is stale, rebuilding",
			"host", id.Name, "built_from", stamp.Commit, "current", current)
		return process.Command{}, false
	}

	cmd, err := process.NewCommandWithOptions(artifact, id.Args, id.Dir, nil)
	if err != nil {
		return process.Command{}, false
	}

	log.Debug("reusing cached host binary", "host", id.Name, "commit", current)
	return cmd, true
}
