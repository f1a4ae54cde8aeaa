package completion

import (
	"github.com/spf13/cobra"
)

// NewCmdFish creates the fish completion command.
func NewCmdFish() *cobra.Command {
	return &cobra.Command{
		Use:   "fish",
		Short: "Generate fish completion script",
		Long: `Generate fish completion script for djlint.

To load completions in your current shell session:

  djlint completion fish | source

To load completions for every new session:

  djlint completion fish > ~/.config/fish/completions/djlint.fish`,
		Example: `  # Load in current session
  djlint completion fish | source

  # Install permanently
  djlint completion fish > ~/.config/fish/completions/djlint.fish`,
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
		},
	}
}
