package process

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// Stream identifies which output stream a chunk came from.
type Stream string

const (
	StreamStdout Stream = "stdout"
	StreamStderr Stream = "stderr"
)

// Hooks receives the output and termination of a launched job. OnOutput is
// called with each chunk as it streams in; chunks are split on newlines, so a
// chunk that ended with a newline carries a trailing empty element. OnExit is
// called exactly once, after the last OnOutput call.
type Hooks struct {
	OnOutput func(stream Stream, chunk []string)
	OnExit   func(code int)
}

// Job is a handle to a launched asynchronous job.
type Job interface {
	// PID returns the process ID.
	PID() int

	// Wait blocks until the job terminates and returns its exit code.
	Wait() int
}

// Executor launches commands as asynchronous jobs.
type Executor interface {
	Launch(ctx context.Context, cmd Command, hooks Hooks) (Job, error)
}

// OSExecutor implements Executor on top of os/exec.
type OSExecutor struct {
	env []string
}

// NewExecutor creates an executor inheriting the current environment.
func NewExecutor() *OSExecutor {
	return &OSExecutor{env: os.Environ()}
}

// Launch starts cmd and streams its output through hooks. The returned Job
// can be used to wait for termination; the exit code is also delivered via
// hooks.OnExit.
func (e *OSExecutor) Launch(ctx context.Context, cmd Command, hooks Hooks) (Job, error) {
	execCmd := exec.CommandContext(ctx, cmd.Executable(), cmd.Args()...)
	execCmd.Dir = cmd.WorkingDir()
	execCmd.Env = e.buildEnvironment(cmd.Env())

	stdout, err := execCmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	stderr, err := execCmd.StderrPipe()
	if err != nil {
		stdout.Close()
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := execCmd.Start(); err != nil {
		stdout.Close()
		stderr.Close()
		return nil, fmt.Errorf("failed to start process: %w", err)
	}

	j := &job{cmd: execCmd, done: make(chan struct{})}

	var outputMu sync.Mutex
	emit := func(stream Stream, chunk []string) {
		if hooks.OnOutput == nil {
			return
		}
		outputMu.Lock()
		defer outputMu.Unlock()
		hooks.OnOutput(stream, chunk)
	}

	var streams sync.WaitGroup
	streams.Add(2)
	go func() {
		defer streams.Done()
		pumpStream(stdout, StreamStdout, emit)
	}()
	go func() {
		defer streams.Done()
		pumpStream(stderr, StreamStderr, emit)
	}()

	go func() {
		streams.Wait()
		err := execCmd.Wait()

		code := 0
		if exitError, ok := err.(*exec.ExitError); ok {
			code = exitError.ExitCode()
		} else if err != nil {
			code = -1
		}

		j.finish(code)
		if hooks.OnExit != nil {
			hooks.OnExit(code)
		}
	}()

	return j, nil
}

func (e *OSExecutor) buildEnvironment(cmdEnv map[string]string) []string {
	env := append([]string(nil), e.env...)
	for key, value := range cmdEnv {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}
	return env
}

// pumpStream reads raw chunks off r and emits each one split on newlines.
// A read that ended with a newline therefore produces a trailing empty
// element; the consumer is expected to normalize that artifact.
func pumpStream(r interface{ Read([]byte) (int, error) }, stream Stream, emit func(Stream, []string)) {
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			emit(stream, strings.Split(string(buf[:n]), "\n"))
		}
		if err != nil {
			return
		}
	}
}

type job struct {
	cmd  *exec.Cmd
	done chan struct{}

	mu   sync.RWMutex
	code int
}

func (j *job) PID() int {
	if j.cmd == nil || j.cmd.Process == nil {
		return -1
	}
	return j.cmd.Process.Pid
}

func (j *job) Wait() int {
	<-j.done
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.code
}

func (j *job) finish(code int) {
	j.mu.Lock()
	j.code = code
	j.mu.Unlock()
	close(j.done)
}
