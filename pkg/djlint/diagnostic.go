// diagnostic.go defines lint findings and their ordering.
package djlint

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Severity ranks a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

var severityNames = map[Severity]string{
	SeverityInfo:    "info",
	SeverityWarning: "warning",
	SeverityError:   "error",
}

func (s Severity) String() string { return severityNames[s] }

// ParseSeverity resolves a severity name as used in catalogs and configs.
func ParseSeverity(name string) (Severity, error) {
	for s, n := range severityNames {
		if n == strings.ToLower(strings.TrimSpace(name)) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown severity %q", name)
}

// Diagnostic is one lint finding. Diagnostics are created once and never
// mutated afterwards.
type Diagnostic struct {
	Rule     string   `json:"rule"`
	Message  string   `json:"message"`
	Line     int      `json:"line"`
	Col      int      `json:"col"`
	Severity Severity `json:"severity"`
}

// String renders the conventional path-less form used in terminal output.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d %s %s", d.Line, d.Col, d.Rule, d.Message)
}

// truncateLabel shortens a token excerpt for a message, backing up so the
// cut never lands inside a multi-byte rune.
func truncateLabel(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// sortDiagnostics orders findings by (line, column, rule code) so output is
// byte-identical across runs.
func sortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Line != diags[j].Line {
			return diags[i].Line < diags[j].Line
		}
		if diags[i].Col != diags[j].Col {
			return diags[i].Col < diags[j].Col
		}
		return diags[i].Rule < diags[j].Rule
	})
}
