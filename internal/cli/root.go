// Package cli wires the cobra command tree for the plugforge binary.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"plugforge.dev/cli/internal/channel"
	"plugforge.dev/cli/internal/config"
	"plugforge.dev/cli/internal/launcher"
	"plugforge.dev/cli/internal/logging"
	"plugforge.dev/cli/internal/probe"
	"plugforge.dev/cli/internal/process"
	"plugforge.dev/cli/internal/registry"
)

var (
	Version   = "dev"     // Overridden by ldflags
	BuildTime = "unknown" // Overridden by ldflags
)

// Container holds the dependencies shared by CLI commands.
type Container struct {
	Config   *config.Config
	Logger   hclog.Logger
	Registry *registry.Registry
	Launcher *launcher.Launcher
}

// NewContainer loads configuration and builds the command dependencies.
func NewContainer(configPath string) (*Container, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logging.New("plugforge", cfg.LogLevel)
	reg := registry.New(log)
	prober := probe.New(reg, log)
	spawner := channel.Spawner(logging.NewHostLogger(cfg.Debug))

	return &Container{
		Config:   cfg,
		Logger:   log,
		Registry: reg,
		Launcher: launcher.New(reg, prober, process.NewExecutor(), cfg, launcher.ChannelSpawner(spawner), log),
	}, nil
}

// Shutdown closes every channel the registry still holds.
func (c *Container) Shutdown() {
	for _, name := range c.Registry.Names() {
		if err := c.Registry.Close(name); err != nil {
			c.Logger.Warn("closing channel during shutdown", "host", name, "error", err)
		}
	}
}

// NewRootCommand builds the base command and its subcommands.
func NewRootCommand(container *Container) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "plugforge",
		Short: "Plugforge - plugin host lifecycle manager",
		Long: `Plugforge builds, launches and supervises plugin host processes.

Starting a host is cheap when it is already running: a live channel answers a
probe and is reused. Only when the probe fails does plugforge rebuild the host
binary from its source tree and spawn a fresh process.`,
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} version {{.Version}}\nBuild time: %s\nGo version: %s\nPlatform: %s/%s\n",
		BuildTime, goVersion(), runtime.GOOS, runtime.GOARCH))

	rootCmd.AddCommand(NewStartCommand(container))
	rootCmd.AddCommand(NewRestartCommand(container))
	rootCmd.AddCommand(NewStopCommand(container))
	rootCmd.AddCommand(NewStatusCommand(container))

	return rootCmd
}

// Execute runs the root command and exits non-zero on error.
func Execute(container *Container) {
	if err := NewRootCommand(container).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}
