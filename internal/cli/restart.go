package cli

import (
	"context"

	"github.com/spf13/cobra"

	"plugforge.dev/cli/internal/registry"
)

// NewRestartCommand creates the restart subcommand.
func NewRestartCommand(container *Container) *cobra.Command {
	var rebuild bool

	cmd := &cobra.Command{
		Use:   "restart <host>",
		Short: "Tear down a plugin host and launch it again",
		Long: `Restart closes the host's channel unconditionally, even if the host still
answers pings, and then runs the normal start path. With --rebuild the host
binary is recompiled from scratch, bypassing both the artifact stamp cache
and the toolchain's incremental cache.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return runForeground(container, name, func(ctx context.Context) (registry.Channel, error) {
				return container.Launcher.Restart(ctx, name, rebuild)
			})
		},
	}

	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "Recompile the host binary, ignoring build caches")

	return cmd
}
