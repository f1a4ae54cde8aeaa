// Package rules loads rule catalogs from YAML and hands the core a
// compiled, normalized table. The core never parses the file format itself.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/brahmaduttau/djLint/pkg/djlint"
)

//go:embed rules.yaml
var builtinYAML []byte

type catalogFile struct {
	Rules []ruleSpec `yaml:"rules"`
}

type ruleSpec struct {
	Name        string   `yaml:"name"`
	Message     string   `yaml:"message"`
	Description string   `yaml:"description,omitempty"`
	Severity    string   `yaml:"severity,omitempty"`
	Enabled     *bool    `yaml:"enabled,omitempty"`
	Scope       string   `yaml:"scope,omitempty"`
	Kinds       []string `yaml:"kinds,omitempty"`
	Dialects    []string `yaml:"dialects,omitempty"`
	Patterns    []string `yaml:"patterns,omitempty"`
	Excludes    []string `yaml:"excludes,omitempty"`
	Requires    []string `yaml:"requires,omitempty"`
	Fix         *fixSpec `yaml:"fix,omitempty"`
}

type fixSpec struct {
	Pattern string `yaml:"pattern"`
	Replace string `yaml:"replace"`
}

// Load builds the catalog from the embedded builtin rules.
func Load() (*djlint.Catalog, error) {
	return load(builtinYAML, nil)
}

// LoadWithCustom merges a user catalog file over the builtin rules. Custom
// rules with a known name replace the builtin definition.
func LoadWithCustom(path string) (*djlint.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule catalog: %w", err)
	}
	return load(builtinYAML, data)
}

func load(builtin, custom []byte) (*djlint.Catalog, error) {
	specs, err := parse(builtin)
	if err != nil {
		return nil, fmt.Errorf("builtin rule catalog: %w", err)
	}

	if custom != nil {
		customSpecs, err := parse(custom)
		if err != nil {
			return nil, fmt.Errorf("custom rule catalog: %w", err)
		}
		byName := make(map[string]int, len(specs))
		for i, s := range specs {
			byName[s.Name] = i
		}
		for _, s := range customSpecs {
			if i, ok := byName[s.Name]; ok {
				specs[i] = s
			} else {
				specs = append(specs, s)
			}
		}
	}

	compiled := make([]*djlint.Rule, 0, len(specs))
	for _, s := range specs {
		r, err := compile(s)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", s.Name, err)
		}
		compiled = append(compiled, r)
	}
	return djlint.NewCatalog(compiled)
}

func parse(data []byte) ([]ruleSpec, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rule catalog: %w", err)
	}
	return file.Rules, nil
}

func compile(s ruleSpec) (*djlint.Rule, error) {
	if s.Name == "" {
		return nil, fmt.Errorf("rule entry is missing a name")
	}
	if s.Message == "" {
		return nil, fmt.Errorf("missing message")
	}

	r := &djlint.Rule{
		Name:        s.Name,
		Message:     s.Message,
		Description: s.Description,
		Severity:    djlint.SeverityWarning,
		Default:     true,
		Requires:    s.Requires,
	}

	if s.Severity != "" {
		sev, err := djlint.ParseSeverity(s.Severity)
		if err != nil {
			return nil, err
		}
		r.Severity = sev
	}
	if s.Enabled != nil {
		r.Default = *s.Enabled
	}

	switch s.Scope {
	case "", "token":
		r.Scope = djlint.ScopeToken
	case "document":
		r.Scope = djlint.ScopeDocument
	default:
		return nil, fmt.Errorf("unknown scope %q", s.Scope)
	}

	for _, name := range s.Kinds {
		k, ok := djlint.ParseKind(name)
		if !ok {
			return nil, fmt.Errorf("unknown token kind %q", name)
		}
		r.Kinds = append(r.Kinds, k)
	}
	for _, name := range s.Dialects {
		d, err := djlint.ParseDialect(name)
		if err != nil {
			return nil, err
		}
		r.Dialects = append(r.Dialects, d)
	}

	for _, p := range s.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		r.Patterns = append(r.Patterns, re)
	}
	for _, p := range s.Excludes {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude %q: %w", p, err)
		}
		r.Excludes = append(r.Excludes, re)
	}

	if s.Fix != nil {
		re, err := regexp.Compile(s.Fix.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid fix pattern %q: %w", s.Fix.Pattern, err)
		}
		r.Fix = &djlint.Fix{Pattern: re, Replace: s.Fix.Replace}
	}

	return r, nil
}
