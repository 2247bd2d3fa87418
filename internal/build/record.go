package build

import (
	"context"
	"sync"

	"plugforge.dev/cli/internal/process"
)

// JobRecord accumulates the observable results of one asynchronous build
// job: the streamed output lines and, once the process terminates, its exit
// code. It lives for the duration of a single step and is discarded after
// the pipeline consumes it.
type JobRecord struct {
	Dir      string
	Command  process.Command
	Output   []string
	ExitCode int
}

// runJob launches cmd through the executor, collects its output, and blocks
// until the job terminates.
func runJob(ctx context.Context, exec process.Executor, cmd process.Command) (*JobRecord, error) {
	rec := &JobRecord{
		Dir:     cmd.WorkingDir(),
		Command: cmd,
	}

	var mu sync.Mutex
	done := make(chan int, 1)

	_, err := exec.Launch(ctx, cmd, process.Hooks{
		OnOutput: func(stream process.Stream, chunk []string) {
			mu.Lock()
			defer mu.Unlock()
			rec.Output = AppendChunk(rec.Output, chunk)
		},
		OnExit: func(code int) {
			done <- code
		},
	})
	if err != nil {
		return nil, err
	}

	select {
	case code := <-done:
		rec.ExitCode = code
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return rec, nil
}
