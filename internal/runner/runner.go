// Package runner applies the core pipeline to files. Files are independent
// pure functions of (file text, shared immutable config/catalog), so they
// run on a bounded worker pool with no locking.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/brahmaduttau/djLint/internal/config"
	"github.com/brahmaduttau/djLint/pkg/djlint"
)

// templateExtensions are the file types collected when a directory is given.
var templateExtensions = map[string]bool{
	".html":   true,
	".htm":    true,
	".django": true,
	".jinja":  true,
	".j2":     true,
	".twig":   true,
	".hbs":    true,
	".tmpl":   true,
	".gohtml": true,
}

// Result is the outcome of one file's pipeline.
type Result struct {
	Path        string
	Changed     bool
	Diff        string
	Diagnostics []djlint.Diagnostic
	Err         error
}

// FormatOptions control the format pipeline.
type FormatOptions struct {
	Check bool // report instead of writing
	Diff  bool // include a unified diff in results
}

// Runner holds the immutable shared state for a multi-file run.
type Runner struct {
	cfg        *config.Config
	catalog    *djlint.Catalog
	coreCfg    djlint.Config
	enabled    map[string]bool
	severities map[string]djlint.Severity
	failLevel  djlint.Severity
	log        *zap.SugaredLogger
	workers    int
}

// New validates the configuration against the catalog and builds a runner.
// Configuration errors (unknown rule codes, bad profile) are fatal here,
// before any file is touched.
func New(cfg *config.Config, catalog *djlint.Catalog, log *zap.SugaredLogger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	enabled, severities, err := cfg.Overrides(catalog)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	failLevel := djlint.SeverityWarning
	if cfg.FailLevel != "" {
		failLevel, _ = djlint.ParseSeverity(cfg.FailLevel)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Runner{
		cfg:        cfg,
		catalog:    catalog,
		coreCfg:    cfg.FormatConfig(),
		enabled:    enabled,
		severities: severities,
		failLevel:  failLevel,
		log:        log,
		workers:    runtime.NumCPU(),
	}, nil
}

// SetWorkers bounds the worker pool; values below one keep the default.
func (r *Runner) SetWorkers(n int) {
	if n > 0 {
		r.workers = n
	}
}

// CollectFiles expands arguments into the sorted list of template files,
// honoring the configured exclude globs.
func (r *Runner) CollectFiles(args []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(path string) {
		if r.excluded(path) || seen[path] {
			return
		}
		seen[path] = true
		files = append(files, path)
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if r.excluded(path) && path != arg {
					return filepath.SkipDir
				}
				return nil
			}
			if templateExtensions[strings.ToLower(filepath.Ext(path))] {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

func (r *Runner) excluded(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range r.cfg.Exclude {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, filepath.ToSlash(path)); ok {
			return true
		}
	}
	return false
}

// FormatFiles reformats the files on the worker pool. Per-file I/O errors
// land in that file's Result; they never abort the other files.
func (r *Runner) FormatFiles(ctx context.Context, paths []string, opts FormatOptions) []Result {
	return r.forEach(ctx, paths, func(path string) Result {
		return r.FormatOne(path, opts)
	})
}

// LintFiles lints the files on the worker pool. With fix set, fixable-rule
// corrections are written back before reporting.
func (r *Runner) LintFiles(ctx context.Context, paths []string, fix bool) []Result {
	return r.forEach(ctx, paths, func(path string) Result {
		return r.LintOne(path, fix)
	})
}

func (r *Runner) forEach(ctx context.Context, paths []string, fn func(string) Result) []Result {
	results := make([]Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-ctx.Done():
				results[i] = Result{Path: path, Err: ctx.Err()}
				return nil
			default:
			}
			results[i] = fn(path)
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results
}

// FormatOne runs the format pipeline on a single file. The file is written
// only after a fully successful reformat, so a failure never corrupts it.
func (r *Runner) FormatOne(path string, opts FormatOptions) Result {
	start := time.Now()
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path, Err: err}
	}

	source := string(data)
	formatted, diags := r.FormatText(source)

	res := Result{Path: path, Changed: formatted != source, Diagnostics: diags}
	if opts.Diff && res.Changed {
		res.Diff, _ = difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(source),
			B:        difflib.SplitLines(formatted),
			FromFile: path,
			ToFile:   path,
			Context:  3,
		})
	}

	if res.Changed && !opts.Check {
		if err := writeFilePreservingMode(path, []byte(formatted)); err != nil {
			res.Err = err
			return res
		}
	}

	r.log.Debugw("formatted", "path", path, "changed", res.Changed, "took", time.Since(start))
	return res
}

// FormatText reformats one document, preserving its CRLF line endings.
func (r *Runner) FormatText(source string) (string, []djlint.Diagnostic) {
	crlf := strings.Contains(source, "\r\n")
	normalized := source
	if crlf {
		normalized = strings.ReplaceAll(source, "\r\n", "\n")
	}

	formatted, diags := djlint.Reformat(normalized, r.coreCfg)
	if crlf {
		formatted = strings.ReplaceAll(formatted, "\n", "\r\n")
	}
	return formatted, diags
}

// LintOne runs the lint pipeline on a single file.
func (r *Runner) LintOne(path string, fix bool) Result {
	start := time.Now()
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path, Err: err}
	}

	source := string(data)
	engine := djlint.NewEngine(r.catalog, r.coreCfg)
	engine.SetOverrides(r.enabled, r.severities)

	res := Result{Path: path}
	if fix {
		tokens := djlint.Tokenize(source, r.coreCfg.Dialects)
		fixed, n := engine.ApplyFixes(source, tokens)
		if n > 0 {
			if err := writeFilePreservingMode(path, []byte(fixed)); err != nil {
				res.Err = err
				return res
			}
			source = fixed
			res.Changed = true
		}
	}

	res.Diagnostics = engine.Lint(source, djlint.Tokenize(source, r.coreCfg.Dialects))
	r.log.Debugw("linted", "path", path, "findings", len(res.Diagnostics), "took", time.Since(start))
	return res
}

// HasFailures reports whether any result carries an error or a diagnostic
// at or above the configured fail level. This drives the process exit code.
func (r *Runner) HasFailures(results []Result) bool {
	for _, res := range results {
		if res.Err != nil {
			return true
		}
		for _, d := range res.Diagnostics {
			if d.Severity >= r.failLevel {
				return true
			}
		}
	}
	return false
}

func writeFilePreservingMode(path string, data []byte) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	return os.WriteFile(path, data, mode)
}
