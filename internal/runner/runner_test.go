package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brahmaduttau/djLint/internal/config"
	"github.com/brahmaduttau/djLint/internal/rules"
	"github.com/brahmaduttau/djLint/pkg/djlint"
)

func testRunner(t *testing.T, cfg *config.Config) *Runner {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	catalog, err := rules.Load()
	require.NoError(t, err)
	r, err := New(cfg, catalog, nil)
	require.NoError(t, err)
	return r
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewRejectsBadConfig(t *testing.T) {
	catalog, err := rules.Load()
	require.NoError(t, err)

	cfg := config.Default()
	cfg.IgnoreRules = []string{"Z999"}
	_, err = New(cfg, catalog, nil)
	assert.Error(t, err)

	cfg = config.Default()
	cfg.Profile = "php"
	_, err = New(cfg, catalog, nil)
	assert.Error(t, err)
}

func TestFormatOneWritesFile(t *testing.T) {
	r := testRunner(t, nil)
	dir := t.TempDir()
	path := writeFile(t, dir, "page.html", "<div><p>hello</p></div>")

	res := r.FormatOne(path, FormatOptions{})
	require.NoError(t, res.Err)
	assert.True(t, res.Changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<div>\n    <p>\n        hello\n    </p>\n</div>\n", string(data))

	// a second run is a no-op
	res = r.FormatOne(path, FormatOptions{})
	require.NoError(t, res.Err)
	assert.False(t, res.Changed)
}

func TestFormatOneCheckModeLeavesFile(t *testing.T) {
	r := testRunner(t, nil)
	dir := t.TempDir()
	source := "<div><p>hello</p></div>"
	path := writeFile(t, dir, "page.html", source)

	res := r.FormatOne(path, FormatOptions{Check: true, Diff: true})
	require.NoError(t, res.Err)
	assert.True(t, res.Changed)
	assert.Contains(t, res.Diff, "-<div><p>hello</p></div>")
	assert.Contains(t, res.Diff, "+<div>")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, source, string(data), "check mode must not write")
}

func TestFormatTextPreservesCRLF(t *testing.T) {
	r := testRunner(t, nil)

	formatted, _ := r.FormatText("<div><p>x</p></div>\r\n")
	assert.Equal(t, "<div>\r\n    <p>\r\n        x\r\n    </p>\r\n</div>\r\n", formatted)
}

func TestLintOne(t *testing.T) {
	r := testRunner(t, nil)
	dir := t.TempDir()
	path := writeFile(t, dir, "page.html", "<DIV>x</DIV>\n")

	res := r.LintOne(path, false)
	require.NoError(t, res.Err)
	require.NotEmpty(t, res.Diagnostics)

	codes := make(map[string]bool)
	for _, d := range res.Diagnostics {
		codes[d.Rule] = true
	}
	assert.True(t, codes["H009"], "uppercase tag names")
}

func TestLintOneWithFix(t *testing.T) {
	r := testRunner(t, nil)
	dir := t.TempDir()
	path := writeFile(t, dir, "page.html", "<p>{{name}}</p>\n")

	res := r.LintOne(path, true)
	require.NoError(t, res.Err)
	assert.True(t, res.Changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<p>{{ name }}</p>\n", string(data))

	for _, d := range res.Diagnostics {
		assert.NotEqual(t, "T001", d.Rule, "fixed finding must not be reported")
	}
}

func TestCollectFiles(t *testing.T) {
	cfg := config.Default()
	cfg.Exclude = []string{"skip*"}
	r := testRunner(t, cfg)

	dir := t.TempDir()
	writeFile(t, dir, "a.html", "<p>x</p>\n")
	writeFile(t, dir, "b.jinja", "{{ x }}\n")
	writeFile(t, dir, "skip.html", "<p>x</p>\n")
	writeFile(t, dir, "notes.txt", "not a template")
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(sub, 0755))
	writeFile(t, sub, "c.twig", "{{ y }}\n")

	files, err := r.CollectFiles([]string{dir})
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		rel, err := filepath.Rel(dir, f)
		require.NoError(t, err)
		names = append(names, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{"a.html", "b.jinja", "nested/c.twig"}, names)
}

func TestFormatFilesParallel(t *testing.T) {
	r := testRunner(t, nil)
	dir := t.TempDir()

	var paths []string
	for _, name := range []string{"c.html", "a.html", "b.html"} {
		paths = append(paths, writeFile(t, dir, name, "<div><p>x</p></div>"))
	}
	paths = append(paths, filepath.Join(dir, "missing.html"))

	results := r.FormatFiles(context.Background(), paths, FormatOptions{})
	require.Len(t, results, 4)

	// results come back sorted by path regardless of completion order
	for i := 1; i < len(results); i++ {
		assert.Less(t, results[i-1].Path, results[i].Path)
	}

	errs := 0
	for _, res := range results {
		if res.Err != nil {
			errs++
			continue
		}
		assert.True(t, res.Changed)
	}
	assert.Equal(t, 1, errs, "the missing file fails alone")
}

func TestHasFailures(t *testing.T) {
	warnDiag := djlint.Diagnostic{Rule: "H009", Severity: djlint.SeverityWarning}
	infoDiag := djlint.Diagnostic{Rule: "H014", Severity: djlint.SeverityInfo}

	t.Run("default warning level", func(t *testing.T) {
		r := testRunner(t, nil)
		assert.True(t, r.HasFailures([]Result{{Diagnostics: []djlint.Diagnostic{warnDiag}}}))
		assert.False(t, r.HasFailures([]Result{{Diagnostics: []djlint.Diagnostic{infoDiag}}}))
		assert.True(t, r.HasFailures([]Result{{Err: os.ErrNotExist}}))
		assert.False(t, r.HasFailures([]Result{{}}))
	})

	t.Run("error level ignores warnings", func(t *testing.T) {
		cfg := config.Default()
		cfg.FailLevel = "error"
		r := testRunner(t, cfg)
		assert.False(t, r.HasFailures([]Result{{Diagnostics: []djlint.Diagnostic{warnDiag}}}))
	})
}
