// Package format provides the format command for djlint.
package format

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brahmaduttau/djLint/internal/config"
	"github.com/brahmaduttau/djLint/internal/logging"
	"github.com/brahmaduttau/djLint/internal/rules"
	"github.com/brahmaduttau/djLint/internal/runner"
	"github.com/brahmaduttau/djLint/internal/view"
	"github.com/brahmaduttau/djLint/internal/watch"
	"github.com/brahmaduttau/djLint/pkg/djlint"
)

type formatOptions struct {
	configPath string
	profile    string
	indent     int
	indentSet  bool
	check      bool
	diff       bool
	watchMode  bool
	workers    int
	output     string
	noColor    bool
	verbose    bool
}

// NewCmdFormat creates the format command.
func NewCmdFormat() *cobra.Command {
	opts := &formatOptions{}

	cmd := &cobra.Command{
		Use:     "format [files or directories]",
		Aliases: []string{"fmt", "reformat"},
		Short:   "Reformat HTML template files",
		Long: `Reformat HTML template files in place.

Directories are searched recursively for template files. Pass "-" to
format stdin to stdout. Files are rewritten only when the formatted
output differs from the original.`,
		Example: `  # Format the current directory
  djlint format .

  # See what would change without writing
  djlint format --check --diff templates/

  # Format stdin
  cat index.html | djlint format -

  # Keep formatting as files change
  djlint format --watch templates/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.configPath, _ = cmd.Flags().GetString("config")
			opts.output, _ = cmd.Flags().GetString("output")
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.verbose, _ = cmd.Flags().GetBool("verbose")
			opts.indentSet = cmd.Flags().Changed("indent")
			return runFormat(opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.check, "check", false, "report files that would change without writing them")
	cmd.Flags().BoolVar(&opts.diff, "diff", false, "print a unified diff of the changes")
	cmd.Flags().BoolVar(&opts.watchMode, "watch", false, "keep running and reformat files as they change")
	cmd.Flags().StringVar(&opts.profile, "profile", "", "template dialect profile (django, jinja, handlebars, ...)")
	cmd.Flags().IntVar(&opts.indent, "indent", 4, "spaces per indentation level")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "maximum parallel files (default: number of CPUs)")

	return cmd
}

func runFormat(opts *formatOptions, args []string) error {
	r, log, err := buildRunner(opts)
	if err != nil {
		return err
	}
	renderer := view.NewRenderer(view.Format(opts.output), opts.noColor)

	if len(args) == 1 && args[0] == "-" {
		return formatStdin(r, renderer)
	}

	paths, err := r.CollectFiles(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		renderer.RenderText("No template files found.")
		return nil
	}

	ctx := context.Background()
	results := r.FormatFiles(ctx, paths, runner.FormatOptions{Check: opts.check, Diff: opts.diff})

	changed := 0
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			renderer.Error(fmt.Sprintf("%s: %v", res.Path, res.Err))
			continue
		}
		if len(res.Diagnostics) > 0 {
			renderer.RenderDiagnostics(res.Path, res.Diagnostics)
		}
		if res.Diff != "" {
			renderer.RenderText(res.Diff)
		}
		if res.Changed {
			changed++
			if opts.check {
				renderer.RenderText(res.Path)
			}
		}
	}

	if opts.check {
		if changed > 0 || failed > 0 {
			return fmt.Errorf("%d of %d files would be reformatted", changed, len(results))
		}
		renderer.Success(fmt.Sprintf("%d files already formatted", len(results)))
		return nil
	}

	renderer.Success(fmt.Sprintf("reformatted %d of %d files", changed, len(results)))

	if opts.watchMode {
		return watchFiles(r, log, renderer, paths)
	}
	if failed > 0 {
		return fmt.Errorf("%d files failed", failed)
	}
	return nil
}

func buildRunner(opts *formatOptions) (*runner.Runner, *zap.SugaredLogger, error) {
	cfg, err := config.Resolve(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	if opts.profile != "" {
		cfg.Profile = opts.profile
	}
	if opts.indentSet {
		cfg.Indent = opts.indent
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return nil, nil, err
	}

	log := logging.New(opts.verbose)
	r, err := runner.New(cfg, catalog, log)
	if err != nil {
		return nil, nil, err
	}
	r.SetWorkers(opts.workers)
	return r, log, nil
}

func loadCatalog(cfg *config.Config) (*djlint.Catalog, error) {
	if cfg.CustomRules != "" {
		return rules.LoadWithCustom(cfg.CustomRules)
	}
	return rules.Load()
}

func formatStdin(r *runner.Runner, renderer *view.Renderer) error {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	formatted, diags := r.FormatText(string(data))
	if _, err := os.Stdout.WriteString(formatted); err != nil {
		return err
	}
	if len(diags) > 0 {
		renderer.SetWriter(os.Stderr)
		renderer.RenderDiagnostics("<stdin>", diags)
	}
	return nil
}

func watchFiles(r *runner.Runner, log *zap.SugaredLogger, renderer *view.Renderer, paths []string) error {
	w, err := watch.New(r, log, func(res runner.Result) {
		if res.Changed {
			renderer.RenderText(res.Path)
		}
	})
	if err != nil {
		return err
	}
	for _, p := range paths {
		if err := w.Add(p); err != nil {
			return fmt.Errorf("cannot watch %s: %w", p, err)
		}
	}
	renderer.RenderText(fmt.Sprintf("watching %d files, press Ctrl+C to stop", len(paths)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := w.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
