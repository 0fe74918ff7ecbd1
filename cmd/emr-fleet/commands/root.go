// Package commands defines the CLI command structure and flag bindings.
// Execution is delegated to the app package.
package commands

import (
	"github.com/spf13/cobra"
)

// Root returns the root command for the emr-fleet CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "emr-fleet",
		Short:         "Provision EMR instance-fleet clusters on spot capacity",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(Render())
	cmd.AddCommand(Create())
	cmd.AddCommand(Wait())
	cmd.AddCommand(Shutdown())
	cmd.AddCommand(Cost())

	return cmd
}
