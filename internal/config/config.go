// Package config provides configuration management for djlint.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/brahmaduttau/djLint/pkg/djlint"
)

// FileName is the project configuration file discovered upward from the
// working directory.
const FileName = ".djlint.yaml"

// Config holds the djlint configuration.
type Config struct {
	Profile            string            `yaml:"profile,omitempty"`
	Indent             int               `yaml:"indent,omitempty"`
	MaxLineLength      int               `yaml:"max_line_length,omitempty"`
	MaxAttributeLength int               `yaml:"max_attribute_length,omitempty"`
	MaxBlankLines      *int              `yaml:"max_blank_lines,omitempty"`
	Exclude            []string          `yaml:"exclude,omitempty"`
	IgnoreRules        []string          `yaml:"ignore_rules,omitempty"`
	EnableRules        []string          `yaml:"enable_rules,omitempty"`
	RuleSeverities     map[string]string `yaml:"rule_severities,omitempty"`
	CustomRules        string            `yaml:"custom_rules,omitempty"`
	FailLevel          string            `yaml:"fail_level,omitempty"`
}

// Default returns the stock configuration.
func Default() *Config {
	blank := 1
	return &Config{
		Profile:            "all",
		Indent:             4,
		MaxLineLength:      120,
		MaxAttributeLength: 70,
		MaxBlankLines:      &blank,
		FailLevel:          "warning",
	}
}

// Validate checks that all fields parse into core types.
func (c *Config) Validate() error {
	if _, err := c.Dialects(); err != nil {
		return err
	}
	if c.Indent < 0 {
		return errors.New("indent must not be negative")
	}
	if c.FailLevel != "" {
		if _, err := djlint.ParseSeverity(c.FailLevel); err != nil {
			return fmt.Errorf("fail_level: %w", err)
		}
	}
	for rule, sev := range c.RuleSeverities {
		if _, err := djlint.ParseSeverity(sev); err != nil {
			return fmt.Errorf("rule_severities[%s]: %w", rule, err)
		}
	}
	return nil
}

// Dialects resolves the configured profile into the active dialect set.
// An empty or "all"/"html" profile activates every dialect.
func (c *Config) Dialects() ([]djlint.Dialect, error) {
	profile := strings.ToLower(strings.TrimSpace(c.Profile))
	if profile == "" || profile == "all" || profile == "html" {
		return djlint.AllDialects, nil
	}
	var out []djlint.Dialect
	for _, name := range strings.Split(profile, ",") {
		d, err := djlint.ParseDialect(name)
		if err != nil {
			return nil, fmt.Errorf("profile: %w", err)
		}
		out = append(out, d)
	}
	return out, nil
}

// FormatConfig converts to the core formatting configuration. Call Validate
// first; an unparsable profile falls back to all dialects here.
func (c *Config) FormatConfig() djlint.Config {
	dialects, err := c.Dialects()
	if err != nil {
		dialects = djlint.AllDialects
	}
	cfg := djlint.Config{
		Dialects:           dialects,
		IndentWidth:        c.Indent,
		MaxLineLength:      c.MaxLineLength,
		MaxAttributeLength: c.MaxAttributeLength,
	}
	if c.MaxBlankLines != nil {
		cfg.MaxBlankLines = *c.MaxBlankLines
	} else {
		cfg.MaxBlankLines = 1
	}
	return cfg
}

// Overrides resolves enable/disable flags and severity overrides against
// the catalog. Referencing an unknown rule code is a configuration error,
// reported once at startup.
func (c *Config) Overrides(catalog *djlint.Catalog) (map[string]bool, map[string]djlint.Severity, error) {
	enabled := make(map[string]bool)
	for _, code := range c.IgnoreRules {
		if _, ok := catalog.Get(code); !ok {
			return nil, nil, fmt.Errorf("ignore_rules: unknown rule code %q", code)
		}
		enabled[code] = false
	}
	for _, code := range c.EnableRules {
		if _, ok := catalog.Get(code); !ok {
			return nil, nil, fmt.Errorf("enable_rules: unknown rule code %q", code)
		}
		enabled[code] = true
	}

	severities := make(map[string]djlint.Severity)
	for code, name := range c.RuleSeverities {
		if _, ok := catalog.Get(code); !ok {
			return nil, nil, fmt.Errorf("rule_severities: unknown rule code %q", code)
		}
		sev, err := djlint.ParseSeverity(name)
		if err != nil {
			return nil, nil, fmt.Errorf("rule_severities[%s]: %w", code, err)
		}
		severities[code] = sev
	}
	return enabled, severities, nil
}

// LoadFromEnv overrides configuration from environment variables. Only set,
// non-empty values win.
func (c *Config) LoadFromEnv() {
	if profile := os.Getenv("DJLINT_PROFILE"); profile != "" {
		c.Profile = profile
	}
	if indent := os.Getenv("DJLINT_INDENT"); indent != "" {
		if n, err := strconv.Atoi(indent); err == nil {
			c.Indent = n
		}
	}
	if length := os.Getenv("DJLINT_MAX_LINE_LENGTH"); length != "" {
		if n, err := strconv.Atoi(length); err == nil {
			c.MaxLineLength = n
		}
	}
}

// Discover walks upward from dir looking for the project config file.
func Discover(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Load reads the configuration from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Resolve loads configuration with the usual precedence: explicit path,
// else the discovered project file, else defaults; environment variables
// override file values either way.
func Resolve(explicit string) (*Config, error) {
	var cfg *Config
	switch {
	case explicit != "":
		loaded, err := Load(explicit)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	default:
		if path, ok := Discover("."); ok {
			loaded, err := Load(path)
			if err != nil {
				return nil, err
			}
			cfg = loaded
		} else {
			cfg = Default()
		}
	}
	cfg.LoadFromEnv()
	return cfg, nil
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
