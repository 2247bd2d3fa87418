package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"plugforge.dev/cli/internal/host"
	"plugforge.dev/cli/internal/launcher"
	"plugforge.dev/cli/internal/registry"
)

// NewStartCommand creates the start subcommand.
func NewStartCommand(container *Container) *cobra.Command {
	var dir string
	var rebuild bool

	cmd := &cobra.Command{
		Use:   "start <host> [-- host-args...]",
		Short: "Build if needed and launch a plugin host",
		Long: `Start brings a plugin host up and supervises it in the foreground.

If a live channel for the host already exists it is reused without building
anything. Otherwise the host binary is built with the configured strategy and
a fresh process is spawned.

Example:
  plugforge start search-indexer
  plugforge start search-indexer --dir ./hosts/indexer -- --verbose`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := host.New(args[0], dir, args[1:])
			return runForeground(container, id.Name, func(ctx context.Context) (registry.Channel, error) {
				return container.Launcher.Start(ctx, id, launcher.Options{ForceRebuild: rebuild})
			})
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Host source directory (default from config)")
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "Rebuild the host binary even if caches are fresh")

	return cmd
}

// runForeground launches a host and supervises it until the process receives
// an interrupt or the host exits on its own.
func runForeground(container *Container, name string, launch func(ctx context.Context) (registry.Channel, error)) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ch, err := launch(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Host %q is up. Press Ctrl+C to stop.\n", name)

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			fmt.Println("\nShutting down...")
			container.Shutdown()
			return nil
		case <-ticker.C:
			if !ch.Running() {
				container.Shutdown()
				return fmt.Errorf("host %q exited unexpectedly", name)
			}
		}
	}
}
