// Package view provides output formatting for djlint commands.
package view

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/brahmaduttau/djLint/pkg/djlint"
)

// Format represents an output format.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatPlain Format = "plain"
)

// Renderer renders diagnostics and summaries in a specific format.
type Renderer struct {
	format  Format
	writer  io.Writer
	noColor bool
}

// NewRenderer creates a new renderer with the specified format.
func NewRenderer(format Format, noColor bool) *Renderer {
	if noColor {
		color.NoColor = true
	}
	return &Renderer{
		format:  format,
		writer:  os.Stdout,
		noColor: noColor,
	}
}

// SetWriter sets the output writer.
func (r *Renderer) SetWriter(w io.Writer) {
	r.writer = w
}

func severityColor(s djlint.Severity) *color.Color {
	switch s {
	case djlint.SeverityError:
		return color.New(color.FgRed)
	case djlint.SeverityWarning:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgCyan)
	}
}

// RenderDiagnostics prints one path:line:col code message line per finding.
func (r *Renderer) RenderDiagnostics(path string, diags []djlint.Diagnostic) {
	if r.format == FormatJSON {
		r.renderDiagnosticsAsJSON(path, diags)
		return
	}
	for _, d := range diags {
		if r.format == FormatPlain {
			fmt.Fprintf(r.writer, "%s:%d:%d %s %s\n", path, d.Line, d.Col, d.Rule, d.Message)
			continue
		}
		fmt.Fprintf(r.writer, "%s:%d:%d ", path, d.Line, d.Col)
		severityColor(d.Severity).Fprint(r.writer, d.Rule)
		fmt.Fprintf(r.writer, " %s\n", d.Message)
	}
}

func (r *Renderer) renderDiagnosticsAsJSON(path string, diags []djlint.Diagnostic) {
	type finding struct {
		Path string `json:"path"`
		djlint.Diagnostic
	}
	out := make([]finding, 0, len(diags))
	for _, d := range diags {
		out = append(out, finding{Path: path, Diagnostic: d})
	}
	data, _ := json.MarshalIndent(out, "", "  ")
	fmt.Fprintln(r.writer, string(data))
}

// RenderTable renders data as a simple aligned table.
func (r *Renderer) RenderTable(headers []string, rows [][]string) {
	if r.format == FormatJSON {
		r.renderTableAsJSON(headers, rows)
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, val := range row {
			if i < len(widths) && len(val) > widths[i] {
				widths[i] = len(val)
			}
		}
	}

	printRow := func(cells []string) {
		for i, val := range cells {
			if i > 0 {
				fmt.Fprint(r.writer, "  ")
			}
			if i < len(cells)-1 {
				fmt.Fprintf(r.writer, "%-*s", widths[i], val)
			} else {
				fmt.Fprint(r.writer, val)
			}
		}
		fmt.Fprintln(r.writer)
	}

	if r.format != FormatPlain {
		printRow(headers)
	}
	for _, row := range rows {
		printRow(row)
	}
}

func (r *Renderer) renderTableAsJSON(headers []string, rows [][]string) {
	var result []map[string]string
	for _, row := range rows {
		item := make(map[string]string)
		for i, header := range headers {
			if i < len(row) {
				item[strings.ToLower(header)] = row[i]
			}
		}
		result = append(result, item)
	}
	data, _ := json.MarshalIndent(result, "", "  ")
	fmt.Fprintln(r.writer, string(data))
}

// RenderText renders plain text.
func (r *Renderer) RenderText(text string) {
	fmt.Fprintln(r.writer, text)
}

// Success prints a success message.
func (r *Renderer) Success(msg string) {
	green := color.New(color.FgGreen)
	green.Fprintln(r.writer, "✓ "+msg)
}

// Error prints an error message.
func (r *Renderer) Error(msg string) {
	red := color.New(color.FgRed)
	red.Fprintln(r.writer, "✗ "+msg)
}

// Truncate truncates a string to the specified length.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
