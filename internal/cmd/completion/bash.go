package completion

import (
	"github.com/spf13/cobra"
)

// NewCmdBash creates the bash completion command.
func NewCmdBash() *cobra.Command {
	return &cobra.Command{
		Use:   "bash",
		Short: "Generate bash completion script",
		Long: `Generate bash completion script for djlint.

To load completions in your current shell session:

  source <(djlint completion bash)

To load completions for every new session:

  # Linux
  djlint completion bash > /etc/bash_completion.d/djlint

  # macOS (requires bash-completion)
  djlint completion bash > $(brew --prefix)/etc/bash_completion.d/djlint`,
		Example: `  # Load in current session
  source <(djlint completion bash)

  # Install permanently (Linux)
  djlint completion bash | sudo tee /etc/bash_completion.d/djlint > /dev/null

  # Install permanently (macOS with Homebrew)
  djlint completion bash > $(brew --prefix)/etc/bash_completion.d/djlint`,
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
		},
	}
}
