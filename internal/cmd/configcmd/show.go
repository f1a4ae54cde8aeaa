package configcmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/brahmaduttau/djLint/internal/config"
)

// NewCmdShow creates the config show command.
func NewCmdShow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display the resolved configuration",
		Long: `Display the configuration djlint would run with, including which
file it was discovered in and which values come from the environment.`,
		Example: `  # Show the resolved config
  djlint config show`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			noColor, _ := cmd.Flags().GetBool("no-color")
			return runShow(configPath, noColor)
		},
	}

	return cmd
}

func runShow(explicit string, noColor bool) error {
	if noColor {
		color.NoColor = true
	}

	path := explicit
	discovered := false
	if path == "" {
		path, discovered = config.Discover(".")
	}

	cfg, err := config.Resolve(explicit)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	printField := func(label, value string, envVars ...string) {
		_, _ = bold.Printf("%-22s", label+":")
		if value == "" {
			_, _ = dim.Println("-")
			return
		}
		fmt.Print(value)

		source := "config"
		if path == "" {
			source = "default"
		}
		for _, envVar := range envVars {
			if v := os.Getenv(envVar); v != "" && v == value {
				source = envVar
				break
			}
		}
		_, _ = dim.Printf("  (source: %s)\n", source)
	}

	blank := 1
	if cfg.MaxBlankLines != nil {
		blank = *cfg.MaxBlankLines
	}

	printField("Profile", cfg.Profile, "DJLINT_PROFILE")
	printField("Indent", strconv.Itoa(cfg.Indent), "DJLINT_INDENT")
	printField("Max line length", strconv.Itoa(cfg.MaxLineLength), "DJLINT_MAX_LINE_LENGTH")
	printField("Max attribute length", strconv.Itoa(cfg.MaxAttributeLength))
	printField("Max blank lines", strconv.Itoa(blank))
	printField("Fail level", cfg.FailLevel)
	printField("Ignored rules", strings.Join(cfg.IgnoreRules, ","))
	printField("Enabled rules", strings.Join(cfg.EnableRules, ","))
	printField("Exclude", strings.Join(cfg.Exclude, ","))
	printField("Custom rules", cfg.CustomRules)

	fmt.Println()
	switch {
	case explicit != "":
		_, _ = dim.Printf("Config file: %s\n", explicit)
	case discovered:
		_, _ = dim.Printf("Config file: %s (discovered)\n", path)
	default:
		_, _ = dim.Println("Config file: none (using defaults)")
	}

	return nil
}
