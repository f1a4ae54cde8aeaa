// Package configcmd provides configuration inspection commands.
package configcmd

import (
	"github.com/spf13/cobra"
)

// NewCmdConfig creates the config command.
func NewCmdConfig() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect djlint configuration",
		Long:  `Inspect the resolved djlint configuration and where each value comes from.`,
	}

	cmd.AddCommand(NewCmdShow())

	return cmd
}
