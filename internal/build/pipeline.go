// Package build turns a plugin host's source tree into a launchable command.
// A Pipeline runs an ordered chain of steps; the first failing step stops the
// chain and surfaces a diagnostic carrying the working directory, the command
// line, and the captured output.
package build

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"plugforge.dev/cli/internal/host"
	"plugforge.dev/cli/internal/process"
)

// Context carries the state threaded through a pipeline run. Steps read the
// identity and options and, on success, the final step deposits the resolved
// launch command.
type Context struct {
	Identity     host.Identity
	ArtifactDir  string
	ForceRebuild bool
	Executor     process.Executor

	// Command is the resolved launch command, set by the terminal step.
	Command  process.Command
	Resolved bool
}

// Step is one stage of the build chain. A step may launch an asynchronous
// job; Run returns only after the job has fully terminated.
type Step interface {
	Name() string
	Run(ctx context.Context, bc *Context) error
}

// StepError is the user-facing diagnostic for a failed build step.
type StepError struct {
	Step        string
	Dir         string
	CommandLine string
	ExitCode    int
	Output      []string
}

func (e *StepError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "build step %q failed (exit %d)\n", e.Step, e.ExitCode)
	fmt.Fprintf(&b, "  dir: %s\n", e.Dir)
	fmt.Fprintf(&b, "  cmd: %s\n", e.CommandLine)
	if len(e.Output) > 0 {
		b.WriteString("  output:\n")
		for _, line := range e.Output {
			fmt.Fprintf(&b, "    %s\n", line)
		}
	}
	return b.String()
}

// Pipeline is an ordered chain of build steps with short-circuit-on-failure
// semantics: once a step fails, no later step runs.
type Pipeline struct {
	steps []Step
	log   hclog.Logger
}

// NewPipeline creates a pipeline over the given steps.
func NewPipeline(log hclog.Logger, steps ...Step) *Pipeline {
	return &Pipeline{steps: steps, log: log}
}

// Run executes the steps in order and returns the resolved launch command.
// The first step error aborts the run; a pipeline whose steps all succeed
// without resolving a command is a strategy bug and reported as an error.
func (p *Pipeline) Run(ctx context.Context, bc *Context) (process.Command, error) {
	for _, step := range p.steps {
		p.log.Debug("running build step", "step", step.Name(), "host", bc.Identity.Name)
		if err := step.Run(ctx, bc); err != nil {
			p.log.Error("build step failed", "step", step.Name(), "host", bc.Identity.Name, "error", err)
			return process.Command{}, err
		}
	}

	if !bc.Resolved {
		return process.Command{}, fmt.Errorf("build pipeline for %q completed without resolving a launch command", bc.Identity.Name)
	}

	p.log.Info("build pipeline resolved launch command", "host", bc.Identity.Name, "cmd", bc.Command.String())
	return bc.Command, nil
}

// jobStep is a step backed by a single subprocess invocation.
type jobStep struct {
	name      string
	command   func(bc *Context) (process.Command, error)
	onSuccess func(bc *Context, rec *JobRecord) error
}

func (s *jobStep) Name() string { return s.name }

func (s *jobStep) Run(ctx context.Context, bc *Context) error {
	cmd, err := s.command(bc)
	if err != nil {
		return err
	}

	rec, err := runJob(ctx, bc.Executor, cmd)
	if err != nil {
		return fmt.Errorf("launching %s job: %w", s.name, err)
	}

	if rec.ExitCode != 0 {
		return &StepError{
			Step:        s.name,
			Dir:         rec.Dir,
			CommandLine: rec.Command.String(),
			ExitCode:    rec.ExitCode,
			Output:      rec.Output,
		}
	}

	if s.onSuccess != nil {
		return s.onSuccess(bc, rec)
	}
	return nil
}
