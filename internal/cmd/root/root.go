// Package root provides the root command for the djlint CLI.
package root

import (
	"github.com/spf13/cobra"

	"github.com/brahmaduttau/djLint/internal/cmd/completion"
	"github.com/brahmaduttau/djLint/internal/cmd/configcmd"
	"github.com/brahmaduttau/djLint/internal/cmd/format"
	initcmd "github.com/brahmaduttau/djLint/internal/cmd/init"
	"github.com/brahmaduttau/djLint/internal/cmd/lint"
	"github.com/brahmaduttau/djLint/internal/cmd/rulescmd"
	"github.com/brahmaduttau/djLint/internal/version"
)

// NewCmdRoot creates the root command for djlint.
func NewCmdRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "djlint",
		Short: "Lint and reformat HTML templates",
		Long: `djlint lints and reformats HTML documents that embed template
dialects such as Django, Jinja, Nunjucks, Twig, Handlebars, Go
templates, and Angular interpolation.

Get started by running: djlint init`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}

	// Global flags
	cmd.PersistentFlags().StringP("config", "c", "", "config file (default: discovered .djlint.yaml)")
	cmd.PersistentFlags().StringP("output", "o", "text", "output format: text, json, plain")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging on stderr")

	// Set version template
	cmd.SetVersionTemplate("djlint version {{.Version}} (commit: " + version.Commit + ", built: " + version.Date + ")\n")

	// Subcommands
	cmd.AddCommand(initcmd.NewCmdInit())
	cmd.AddCommand(format.NewCmdFormat())
	cmd.AddCommand(lint.NewCmdLint())
	cmd.AddCommand(rulescmd.NewCmdRules())
	cmd.AddCommand(configcmd.NewCmdConfig())
	cmd.AddCommand(completion.NewCmdCompletion())

	return cmd
}
