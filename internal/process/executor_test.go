package process

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSExecutor_CapturesOutputAndExitCode(t *testing.T) {
	exec := NewExecutor()

	cmd, err := NewCommand("sh", []string{"-c", "echo one; echo two"})
	require.NoError(t, err)

	var mu sync.Mutex
	var lines []string
	exitCh := make(chan int, 1)

	job, err := exec.Launch(context.Background(), cmd, Hooks{
		OnOutput: func(stream Stream, chunk []string) {
			mu.Lock()
			defer mu.Unlock()
			lines = append(lines, chunk...)
		},
		OnExit: func(code int) { exitCh <- code },
	})
	require.NoError(t, err)
	assert.Greater(t, job.PID(), 0)

	assert.Equal(t, 0, job.Wait())

	select {
	case code := <-exitCh:
		assert.Equal(t, 0, code)
	case <-time.After(5 * time.Second):
		t.Fatal("OnExit was never called")
	}

	mu.Lock()
	joined := strings.Join(lines, "\n")
	mu.Unlock()
	assert.Contains(t, joined, "one")
	assert.Contains(t, joined, "two")
}

func TestOSExecutor_NonzeroExit(t *testing.T) {
	exec := NewExecutor()

	cmd, err := NewCommand("sh", []string{"-c", "exit 3"})
	require.NoError(t, err)

	exitCh := make(chan int, 1)
	job, err := exec.Launch(context.Background(), cmd, Hooks{
		OnExit: func(code int) { exitCh <- code },
	})
	require.NoError(t, err)

	assert.Equal(t, 3, job.Wait())

	select {
	case code := <-exitCh:
		assert.Equal(t, 3, code)
	case <-time.After(5 * time.Second):
		t.Fatal("OnExit was never called")
	}
}

func TestOSExecutor_MissingExecutable(t *testing.T) {
	exec := NewExecutor()

	cmd, err := NewCommand("definitely-not-a-real-binary-xyz", nil)
	require.NoError(t, err)

	_, err = exec.Launch(context.Background(), cmd, Hooks{})
	assert.Error(t, err)
}

func TestOSExecutor_ExitAfterAllOutput(t *testing.T) {
	exec := NewExecutor()

	cmd, err := NewCommand("sh", []string{"-c", "echo last"})
	require.NoError(t, err)

	var mu sync.Mutex
	var sawOutput, outputBeforeExit bool
	done := make(chan struct{})

	_, err = exec.Launch(context.Background(), cmd, Hooks{
		OnOutput: func(stream Stream, chunk []string) {
			mu.Lock()
			sawOutput = true
			mu.Unlock()
		},
		OnExit: func(code int) {
			mu.Lock()
			outputBeforeExit = sawOutput
			mu.Unlock()
			close(done)
		},
	})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("job never exited")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, outputBeforeExit, "OnExit ran before the output was delivered")
}
