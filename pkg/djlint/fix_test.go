package djlint

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expressionSpacingRule() *Rule {
	return &Rule{
		Name:     "T001",
		Message:  "Variables should be wrapped in a single whitespace.",
		Severity: SeverityWarning,
		Default:  true,
		Kinds:    []Kind{KindTemplateExpression},
		Dialects: []Dialect{DialectDjango, DialectJinja, DialectNunjucks, DialectTwig},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`\{\{[-+]*[^\s{+-]`),
			regexp.MustCompile(`[^\s}+-][-+]*\}\}`),
		},
		Fix: &Fix{
			Pattern: regexp.MustCompile(`^\{\{([-+]*)\s*(.*?)\s*([-+]*)\}\}$`),
			Replace: "{{$1 $2 $3}}",
		},
	}
}

func blankLinesRule() *Rule {
	return &Rule{
		Name:     "H014",
		Message:  "Found more than 2 blank lines.",
		Severity: SeverityInfo,
		Default:  true,
		Scope:    ScopeDocument,
		Patterns: []*regexp.Regexp{regexp.MustCompile(`\n([ \t]*\n){3,}`)},
		Fix: &Fix{
			Pattern: regexp.MustCompile(`\n([ \t]*\n){3,}`),
			Replace: "\n\n\n",
		},
	}
}

func applyFixes(t *testing.T, source string, catalog *Catalog) (string, int) {
	t.Helper()
	e := NewEngine(catalog, DefaultConfig())
	return e.ApplyFixes(source, Tokenize(source, nil))
}

func TestApplyFixesExpressionSpacing(t *testing.T) {
	catalog := mustCatalog(t, expressionSpacingRule())

	testCases := []struct {
		name   string
		source string
		want   string
	}{
		{"tight braces", "<p>{{name}}</p>", "<p>{{ name }}</p>"},
		{"left tight", "<p>{{name }}</p>", "<p>{{ name }}</p>"},
		{"already spaced", "<p>{{ name }}</p>", "<p>{{ name }}</p>"},
		{"modifiers kept", "{{-name-}}", "{{- name -}}"},
		{"several expressions", "{{a}} and {{b}}", "{{ a }} and {{ b }}"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := applyFixes(t, tc.source, catalog)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestApplyFixesIdempotent(t *testing.T) {
	catalog := mustCatalog(t, expressionSpacingRule(), blankLinesRule())
	sources := []string{
		"<p>{{name}}</p>",
		"a\n\n\n\n\n\nb",
		"{{x}}\n\n\n\n{{y}}\n",
	}

	for _, source := range sources {
		once, n := applyFixes(t, source, catalog)
		require.Greater(t, n, 0, "source %q should need fixing", source)

		twice, n := applyFixes(t, once, catalog)
		assert.Equal(t, once, twice, "source %q", source)
		assert.Zero(t, n, "second pass over %q must be a no-op", source)

		// a fixed document lints clean for the fixed rules
		e := NewEngine(catalog, DefaultConfig())
		assert.Empty(t, e.Lint(once, Tokenize(once, nil)))
	}
}

func TestApplyFixesDocumentScope(t *testing.T) {
	catalog := mustCatalog(t, blankLinesRule())

	got, n := applyFixes(t, "a\n\n\n\n\nb", catalog)
	assert.Equal(t, "a\n\n\nb", got)
	assert.Equal(t, 1, n)
}

func TestApplyFixesPreservesUntouchedText(t *testing.T) {
	catalog := mustCatalog(t, expressionSpacingRule())
	source := "<div class='x'>\n  text {{name}} more\n</div>\n"

	got, _ := applyFixes(t, source, catalog)
	assert.Equal(t, "<div class='x'>\n  text {{ name }} more\n</div>\n", got)
}

func TestApplyFixesHonorsSuppression(t *testing.T) {
	catalog := mustCatalog(t, expressionSpacingRule())

	t.Run("off region", func(t *testing.T) {
		source := "<!-- djlint:off -->\n{{keep}}\n<!-- djlint:on -->\n{{fix}}\n"
		got, n := applyFixes(t, source, catalog)
		assert.Equal(t, "<!-- djlint:off -->\n{{keep}}\n<!-- djlint:on -->\n{{ fix }}\n", got)
		assert.Equal(t, 1, n)
	})

	t.Run("ignore marker", func(t *testing.T) {
		source := "{# djlint:ignore=T001 #}\n{{keep}}\n"
		got, n := applyFixes(t, source, catalog)
		assert.Equal(t, source, got)
		assert.Zero(t, n)
	})
}

func TestApplyFixesSkipsDisabledRules(t *testing.T) {
	catalog := mustCatalog(t, expressionSpacingRule())
	e := NewEngine(catalog, DefaultConfig())
	e.SetOverrides(map[string]bool{"T001": false}, nil)

	source := "{{name}}"
	got, n := e.ApplyFixes(source, Tokenize(source, nil))
	assert.Equal(t, source, got)
	assert.Zero(t, n)
}
