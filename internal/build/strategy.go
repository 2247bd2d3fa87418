package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"plugforge.dev/cli/internal/process"
)

// Strategy supplies the concrete pipeline steps for a given project layout.
// Strategies are stateless; everything a run needs travels in the pipeline
// Context.
type Strategy interface {
	Name() string
	Steps() []Step
}

// StrategyByName resolves a strategy by its configured name.
func StrategyByName(name string) (Strategy, error) {
	switch name {
	case "go", "":
		return GoToolchainStrategy{}, nil
	case "prebuilt":
		return PrebuiltStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown build strategy %q", name)
	}
}

// GoToolchainStrategy builds a host binary from a Go module: a dependency
// step (go mod download) followed by a binary step (go build). The binary
// step honors ForceRebuild by passing -a, bypassing the toolchain's
// incremental cache.
type GoToolchainStrategy struct{}

func (GoToolchainStrategy) Name() string { return "go" }

func (GoToolchainStrategy) Steps() []Step {
	return []Step{
		&jobStep{
			name: "download dependencies",
			command: func(bc *Context) (process.Command, error) {
				return process.NewCommandWithOptions("go", []string{"mod", "download"}, bc.Identity.Dir, nil)
			},
		},
		&jobStep{
			name: "build host binary",
			command: func(bc *Context) (process.Command, error) {
				artifact := ArtifactPath(bc.ArtifactDir, bc.Identity.Name)
				args := []string{"build"}
				if bc.ForceRebuild {
					args = append(args, "-a")
				}
				args = append(args, "-o", artifact, ".")
				return process.NewCommandWithOptions("go", args, bc.Identity.Dir, nil)
			},
			onSuccess: func(bc *Context, rec *JobRecord) error {
				artifact := ArtifactPath(bc.ArtifactDir, bc.Identity.Name)
				// A failed stamp write only costs a rebuild next time.
				_ = WriteStamp(bc.ArtifactDir, bc.Identity)
				return resolveArtifact(bc, artifact)
			},
		},
	}
}

// PrebuiltStrategy never compiles; it locates an existing executable for the
// host, first in the artifact directory and then in the host's own source
// directory.
type PrebuiltStrategy struct{}

func (PrebuiltStrategy) Name() string { return "prebuilt" }

func (PrebuiltStrategy) Steps() []Step {
	return []Step{locateStep{}}
}

type locateStep struct{}

func (locateStep) Name() string { return "locate host binary" }

func (locateStep) Run(ctx context.Context, bc *Context) error {
	candidates := []string{
		ArtifactPath(bc.ArtifactDir, bc.Identity.Name),
		filepath.Join(bc.Identity.Dir, bc.Identity.Name),
	}

	for _, candidate := range candidates {
		if isExecutable(candidate) {
			return resolveArtifact(bc, candidate)
		}
	}

	return &StepError{
		Step:        "locate host binary",
		Dir:         bc.Identity.Dir,
		CommandLine: fmt.Sprintf("locate %s", bc.Identity.Name),
		ExitCode:    1,
		Output:      []string{fmt.Sprintf("no executable found for host %q in %v", bc.Identity.Name, candidates)},
	}
}

// ArtifactPath returns where a host's built binary lives.
func ArtifactPath(artifactDir, name string) string {
	return filepath.Join(artifactDir, name)
}

// HasArtifact reports whether a built, executable binary exists for name.
func HasArtifact(artifactDir, name string) bool {
	return isExecutable(ArtifactPath(artifactDir, name))
}

func resolveArtifact(bc *Context, artifact string) error {
	cmd, err := process.NewCommandWithOptions(artifact, bc.Identity.Args, bc.Identity.Dir, nil)
	if err != nil {
		return err
	}
	bc.Command = cmd
	bc.Resolved = true
	return nil
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode()&0111 != 0
}
