// Package logging constructs the hclog loggers used across the CLI.
package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// New creates a named logger writing to stderr at the given level. Unknown
// level strings fall back to info.
func New(name, level string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   name,
		Level:  parseLevel(level),
		Output: os.Stderr,
	})
}

// NewHostLogger creates the logger handed to spawned host processes. Host
// output is noisy, so it stays silent unless debug is enabled.
func NewHostLogger(debug bool) hclog.Logger {
	level := hclog.Error
	output := io.Discard

	if debug {
		level = hclog.Debug
		output = os.Stderr
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   "plugforge-host",
		Level:  level,
		Output: output,
	})
}

func parseLevel(level string) hclog.Level {
	parsed := hclog.LevelFromString(level)
	if parsed == hclog.NoLevel {
		return hclog.Info
	}
	return parsed
}
