package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStopCommand creates the stop subcommand.
func NewStopCommand(container *Container) *cobra.Command {
	return &cobra.Command{
		Use:   "stop <host>",
		Short: "Close a plugin host's channel and terminate its process",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := container.Launcher.Stop(name); err != nil {
				return fmt.Errorf("failed to stop %q: %w", name, err)
			}
			fmt.Printf("Host %q stopped.\n", name)
			return nil
		},
	}
}
