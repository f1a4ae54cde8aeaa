// Package rulescmd provides the rules command for djlint.
package rulescmd

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yuin/goldmark"

	"github.com/brahmaduttau/djLint/internal/config"
	"github.com/brahmaduttau/djLint/internal/rules"
	"github.com/brahmaduttau/djLint/internal/view"
	"github.com/brahmaduttau/djLint/pkg/djlint"
)

type rulesOptions struct {
	configPath string
	all        bool
	export     string
	output     string
	noColor    bool
}

// NewCmdRules creates the rules command.
func NewCmdRules() *cobra.Command {
	opts := &rulesOptions{}

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the active rule catalog",
		Long: `List the rules djlint checks, including custom rules from the
configuration, with their severity and whether they can fix findings.

Rule descriptions are written in markdown; --export html renders the
full catalog as a standalone reference page.`,
		Example: `  # List enabled rules
  djlint rules

  # Include disabled rules
  djlint rules --all

  # Render an HTML reference page
  djlint rules --export html > rules.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.configPath, _ = cmd.Flags().GetString("config")
			opts.output, _ = cmd.Flags().GetString("output")
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			return runRules(opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.all, "all", "a", false, "include rules disabled by default or by config")
	cmd.Flags().StringVar(&opts.export, "export", "", "export format: html")

	return cmd
}

func runRules(opts *rulesOptions) error {
	cfg, err := config.Resolve(opts.configPath)
	if err != nil {
		return err
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

	enabled, _, err := cfg.Overrides(catalog)
	if err != nil {
		return err
	}
	isEnabled := func(r *djlint.Rule) bool {
		if on, ok := enabled[r.Name]; ok {
			return on
		}
		return r.Default
	}

	listed := catalog.Rules()
	if !opts.all {
		var active []*djlint.Rule
		for _, r := range listed {
			if isEnabled(r) {
				active = append(active, r)
			}
		}
		listed = active
	}
	sort.Slice(listed, func(i, j int) bool { return listed[i].Name < listed[j].Name })

	switch opts.export {
	case "":
	case "html":
		return exportHTML(os.Stdout, listed, isEnabled)
	default:
		return fmt.Errorf("unknown export format %q (supported: html)", opts.export)
	}

	renderer := view.NewRenderer(view.Format(opts.output), opts.noColor)
	headers := []string{"RULE", "SEVERITY", "FIXABLE", "ENABLED", "MESSAGE"}
	var rows [][]string
	for _, r := range listed {
		rows = append(rows, []string{
			r.Name,
			r.Severity.String(),
			yesNo(r.Fixable()),
			yesNo(isEnabled(r)),
			view.Truncate(r.Message, 60),
		})
	}
	renderer.RenderTable(headers, rows)
	return nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// exportHTML renders the catalog as one HTML page. Each description is
// markdown, converted with goldmark.
func exportHTML(w *os.File, listed []*djlint.Rule, isEnabled func(*djlint.Rule) bool) error {
	md := goldmark.New()

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	page.WriteString("<meta charset=\"utf-8\">\n<title>djlint rules</title>\n")
	page.WriteString("</head>\n<body>\n<h1>djlint rules</h1>\n")

	for _, r := range listed {
		fmt.Fprintf(&page, "<h2 id=%q>%s</h2>\n", strings.ToLower(r.Name), r.Name)
		fmt.Fprintf(&page, "<p><strong>%s</strong> (%s", htmlEscape(r.Message), r.Severity)
		if r.Fixable() {
			page.WriteString(", fixable")
		}
		if !isEnabled(r) {
			page.WriteString(", disabled")
		}
		page.WriteString(")</p>\n")

		if r.Description != "" {
			if err := md.Convert([]byte(r.Description), &page); err != nil {
				return fmt.Errorf("rule %s: %w", r.Name, err)
			}
		}
	}

	page.WriteString("</body>\n</html>\n")
	_, err := w.Write(page.Bytes())
	return err
}

func htmlEscape(s string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return replacer.Replace(s)
}
