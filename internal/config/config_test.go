package config

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brahmaduttau/djLint/pkg/djlint"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "all", cfg.Profile)
	assert.Equal(t, 4, cfg.Indent)
	assert.Equal(t, 120, cfg.MaxLineLength)
	assert.Equal(t, "warning", cfg.FailLevel)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"single dialect profile", func(c *Config) { c.Profile = "django" }, false},
		{"dialect list profile", func(c *Config) { c.Profile = "django,jinja" }, false},
		{"unknown profile", func(c *Config) { c.Profile = "php" }, true},
		{"negative indent", func(c *Config) { c.Indent = -1 }, true},
		{"bad fail level", func(c *Config) { c.FailLevel = "fatal" }, true},
		{"bad rule severity", func(c *Config) { c.RuleSeverities = map[string]string{"H009": "loud"} }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDialects(t *testing.T) {
	cfg := Default()
	dialects, err := cfg.Dialects()
	require.NoError(t, err)
	assert.Equal(t, djlint.AllDialects, dialects)

	cfg.Profile = "django,handlebars"
	dialects, err = cfg.Dialects()
	require.NoError(t, err)
	assert.Equal(t, []djlint.Dialect{djlint.DialectDjango, djlint.DialectHandlebars}, dialects)
}

func TestFormatConfig(t *testing.T) {
	cfg := Default()
	cfg.Indent = 2
	cfg.MaxLineLength = 80

	core := cfg.FormatConfig()
	assert.Equal(t, 2, core.IndentWidth)
	assert.Equal(t, 80, core.MaxLineLength)
	assert.Equal(t, 1, core.MaxBlankLines)
}

func TestOverrides(t *testing.T) {
	catalog := testCatalog(t)

	t.Run("resolves known codes", func(t *testing.T) {
		cfg := Default()
		cfg.IgnoreRules = []string{"H009"}
		cfg.EnableRules = []string{"H031"}
		cfg.RuleSeverities = map[string]string{"H009": "error"}

		enabled, severities, err := cfg.Overrides(catalog)
		require.NoError(t, err)
		assert.False(t, enabled["H009"])
		assert.True(t, enabled["H031"])
		assert.Equal(t, djlint.SeverityError, severities["H009"])
	})

	t.Run("unknown code is a config error", func(t *testing.T) {
		cfg := Default()
		cfg.IgnoreRules = []string{"Z999"}
		_, _, err := cfg.Overrides(catalog)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Z999")
	})
}

func TestSaveLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	cfg := Default()
	cfg.Profile = "jinja"
	cfg.Indent = 2
	cfg.IgnoreRules = []string{"H014"}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "jinja", loaded.Profile)
	assert.Equal(t, 2, loaded.Indent)
	assert.Equal(t, []string{"H014"}, loaded.IgnoreRules)
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, Default().Save(filepath.Join(root, FileName)))

	path, ok := Discover(nested)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, FileName), path)

	_, ok = Discover(filepath.Join(os.TempDir()))
	_ = ok // may or may not find one above the temp dir; just must not panic
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DJLINT_PROFILE", "twig")
	t.Setenv("DJLINT_INDENT", "8")
	t.Setenv("DJLINT_MAX_LINE_LENGTH", "not-a-number")

	cfg := Default()
	cfg.LoadFromEnv()

	assert.Equal(t, "twig", cfg.Profile)
	assert.Equal(t, 8, cfg.Indent)
	assert.Equal(t, 120, cfg.MaxLineLength, "unparsable env value keeps the old setting")
}

func testCatalog(t *testing.T) *djlint.Catalog {
	t.Helper()
	catalog, err := djlint.NewCatalog([]*djlint.Rule{
		{
			Name: "H009", Message: "lowercase", Default: true,
			Severity: djlint.SeverityWarning,
			Patterns: []*regexp.Regexp{regexp.MustCompile(`^</?[A-Z]`)},
		},
		{Name: "H031", Message: "keywords", Default: false, Severity: djlint.SeverityInfo},
	})
	require.NoError(t, err)
	return catalog
}
