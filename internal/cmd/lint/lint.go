// Package lint provides the lint command for djlint.
package lint

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/brahmaduttau/djLint/internal/config"
	"github.com/brahmaduttau/djLint/internal/logging"
	"github.com/brahmaduttau/djLint/internal/rules"
	"github.com/brahmaduttau/djLint/internal/runner"
	"github.com/brahmaduttau/djLint/internal/view"
	"github.com/brahmaduttau/djLint/pkg/djlint"
)

type lintOptions struct {
	configPath string
	profile    string
	fix        bool
	workers    int
	output     string
	noColor    bool
	verbose    bool
}

// NewCmdLint creates the lint command.
func NewCmdLint() *cobra.Command {
	opts := &lintOptions{}

	cmd := &cobra.Command{
		Use:     "lint [files or directories]",
		Aliases: []string{"check"},
		Short:   "Lint HTML template files",
		Long: `Lint HTML template files against the rule catalog.

Directories are searched recursively for template files. Pass "-" to
lint stdin. The exit code is non-zero when any finding reaches the
configured fail level (warning by default).`,
		Example: `  # Lint the current directory
  djlint lint .

  # Apply automatic fixes first
  djlint lint --fix templates/

  # Machine-readable output
  djlint lint -o json templates/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.configPath, _ = cmd.Flags().GetString("config")
			opts.output, _ = cmd.Flags().GetString("output")
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.verbose, _ = cmd.Flags().GetBool("verbose")
			return runLint(opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.fix, "fix", false, "apply fixes for fixable rules before reporting")
	cmd.Flags().StringVar(&opts.profile, "profile", "", "template dialect profile (django, jinja, handlebars, ...)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "maximum parallel files (default: number of CPUs)")

	return cmd
}

func runLint(opts *lintOptions, args []string) error {
	cfg, err := config.Resolve(opts.configPath)
	if err != nil {
		return err
	}
	if opts.profile != "" {
		cfg.Profile = opts.profile
	}

	var catalog *djlint.Catalog
	if cfg.CustomRules != "" {
		catalog, err = rules.LoadWithCustom(cfg.CustomRules)
	} else {
		catalog, err = rules.Load()
	}
	if err != nil {
		return err
	}

	log := logging.New(opts.verbose)
	r, err := runner.New(cfg, catalog, log)
	if err != nil {
		return err
	}
	r.SetWorkers(opts.workers)

	renderer := view.NewRenderer(view.Format(opts.output), opts.noColor)

	if len(args) == 1 && args[0] == "-" {
		return lintStdin(r, cfg, catalog, renderer)
	}

	paths, err := r.CollectFiles(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		renderer.RenderText("No template files found.")
		return nil
	}

	results := r.LintFiles(context.Background(), paths, opts.fix)

	total := 0
	for _, res := range results {
		if res.Err != nil {
			renderer.Error(fmt.Sprintf("%s: %v", res.Path, res.Err))
			continue
		}
		if len(res.Diagnostics) > 0 {
			renderer.RenderDiagnostics(res.Path, res.Diagnostics)
			total += len(res.Diagnostics)
		}
	}

	if r.HasFailures(results) {
		return fmt.Errorf("found %d problems in %d files", total, len(results))
	}
	renderer.Success(fmt.Sprintf("%d files checked, no problems found", len(results)))
	return nil
}

func lintStdin(r *runner.Runner, cfg *config.Config, catalog *djlint.Catalog, renderer *view.Renderer) error {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}

	source := string(data)
	coreCfg := cfg.FormatConfig()
	engine := djlint.NewEngine(catalog, coreCfg)
	enabled, severities, err := cfg.Overrides(catalog)
	if err != nil {
		return err
	}
	engine.SetOverrides(enabled, severities)

	diags := engine.Lint(source, djlint.Tokenize(source, coreCfg.Dialects))
	if len(diags) > 0 {
		renderer.RenderDiagnostics("<stdin>", diags)
	}
	if r.HasFailures([]runner.Result{{Path: "<stdin>", Diagnostics: diags}}) {
		return fmt.Errorf("found %d problems", len(diags))
	}
	return nil
}
