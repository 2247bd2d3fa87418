package process

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Command is a fully-resolved, ready-to-execute invocation for a plugin host
// binary or build tool. It is transient: produced for a single launch attempt
// and discarded afterwards.
type Command struct {
	executable string
	args       []string
	workingDir string
	env        map[string]string
}

// NewCommand creates a Command rooted in the current working directory.
func NewCommand(executable string, args []string) (Command, error) {
	if executable == "" {
		return Command{}, fmt.Errorf("executable cannot be empty")
	}

	workingDir, err := os.Getwd()
	if err != nil {
		workingDir = "."
	}

	return Command{
		executable: executable,
		args:       append([]string(nil), args...),
		workingDir: workingDir,
		env:        make(map[string]string),
	}, nil
}

// NewCommandWithOptions creates a command with an explicit working directory
// and environment.
func NewCommandWithOptions(executable string, args []string, workingDir string, env map[string]string) (Command, error) {
	if executable == "" {
		return Command{}, fmt.Errorf("executable cannot be empty")
	}

	if workingDir == "" {
		var err error
		workingDir, err = os.Getwd()
		if err != nil {
			workingDir = "."
		}
	}

	if !filepath.IsAbs(workingDir) {
		absDir, err := filepath.Abs(workingDir)
		if err == nil {
			workingDir = absDir
		}
	}

	envCopy := make(map[string]string)
	for k, v := range env {
		envCopy[k] = v
	}

	return Command{
		executable: executable,
		args:       append([]string(nil), args...),
		workingDir: workingDir,
		env:        envCopy,
	}, nil
}

// Executable returns the command executable.
func (c Command) Executable() string {
	return c.executable
}

// Args returns a copy of the command arguments.
func (c Command) Args() []string {
	return append([]string(nil), c.args...)
}

// WorkingDir returns the working directory for the command.
func (c Command) WorkingDir() string {
	return c.workingDir
}

// Env returns a copy of the environment variables.
func (c Command) Env() map[string]string {
	envCopy := make(map[string]string)
	for k, v := range c.env {
		envCopy[k] = v
	}
	return envCopy
}

// String returns the command line as a single string, suitable for
// diagnostics.
func (c Command) String() string {
	if len(c.args) == 0 {
		return c.executable
	}
	return fmt.Sprintf("%s %s", c.executable, strings.Join(c.args, " "))
}

// WithWorkingDir returns a new Command with a different working directory.
func (c Command) WithWorkingDir(workingDir string) Command {
	return Command{
		executable: c.executable,
		args:       append([]string(nil), c.args...),
		workingDir: workingDir,
		env:        c.Env(),
	}
}

// IsValid validates the command structure.
func (c Command) IsValid() error {
	if c.executable == "" {
		return fmt.Errorf("executable cannot be empty")
	}

	if filepath.IsAbs(c.workingDir) {
		if stat, err := os.Stat(c.workingDir); err != nil || !stat.IsDir() {
			return fmt.Errorf("working directory does not exist: %s", c.workingDir)
		}
	}

	return nil
}
