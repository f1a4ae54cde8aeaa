// Package init provides the init command for djlint.
package init

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/brahmaduttau/djLint/internal/config"
	"github.com/brahmaduttau/djLint/pkg/djlint"
)

// NewCmdInit creates the init command.
func NewCmdInit() *cobra.Command {
	var (
		profile string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a .djlint.yaml configuration file",
		Long: `Create a .djlint.yaml in the current directory.

This command walks through the common settings interactively. Every
setting has a sensible default, so an empty answer keeps the default.`,
		Example: `  # Interactive setup
  djlint init

  # Pre-select the dialect profile
  djlint init --profile django`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(profile, force)
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "", "template dialect profile to pre-select")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")

	return cmd
}

func runInit(prefillProfile string, force bool) error {
	path := filepath.Join(".", config.FileName)

	if _, err := os.Stat(path); err == nil && !force {
		var overwrite bool
		err := huh.NewConfirm().
			Title("Configuration already exists").
			Description(fmt.Sprintf("Overwrite %s?", path)).
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Println("Initialization cancelled.")
			return nil
		}
	}

	cfg := config.Default()
	if prefillProfile != "" {
		cfg.Profile = prefillProfile
	}

	profileOptions := []huh.Option[string]{
		huh.NewOption("all dialects", "all"),
	}
	for _, d := range djlint.AllDialects {
		profileOptions = append(profileOptions, huh.NewOption(d.String(), d.String()))
	}

	indent := strconv.Itoa(cfg.Indent)
	lineLength := strconv.Itoa(cfg.MaxLineLength)
	ignore := ""

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Template dialect").
				Description("Which template language do your files use?").
				Options(profileOptions...).
				Value(&cfg.Profile),

			huh.NewInput().
				Title("Indent width").
				Description("Spaces per indentation level").
				Value(&indent).
				Validate(validatePositiveInt),

			huh.NewInput().
				Title("Max line length").
				Description("Lines longer than this are wrapped where possible").
				Value(&lineLength).
				Validate(validatePositiveInt),

			huh.NewInput().
				Title("Ignored rules (optional)").
				Description("Comma-separated rule codes, e.g. H014,T003").
				Placeholder("H014,T003").
				Value(&ignore),

			huh.NewSelect[string]().
				Title("Fail level").
				Description("Lowest severity that makes the lint exit non-zero").
				Options(
					huh.NewOption("info", "info"),
					huh.NewOption("warning", "warning"),
					huh.NewOption("error", "error"),
				).
				Value(&cfg.FailLevel),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Indent, _ = strconv.Atoi(indent)
	cfg.MaxLineLength, _ = strconv.Atoi(lineLength)
	for _, code := range strings.Split(ignore, ",") {
		if code = strings.TrimSpace(code); code != "" {
			cfg.IgnoreRules = append(cfg.IgnoreRules, strings.ToUpper(code))
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	fmt.Println("\nYou're all set! Try running:")
	fmt.Println("  djlint lint .")
	fmt.Println("  djlint format --check .")

	return nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}
