// dialect.go defines the static rule table for every supported template dialect.
package djlint

import (
	"fmt"
	"strings"
)

// Dialect identifies one supported templating syntax.
type Dialect int

const (
	DialectDjango Dialect = iota
	DialectJinja
	DialectNunjucks
	DialectTwig
	DialectHandlebars
	DialectGoTemplate
	DialectAngular
)

var dialectNames = map[Dialect]string{
	DialectDjango:     "django",
	DialectJinja:      "jinja",
	DialectNunjucks:   "nunjucks",
	DialectTwig:       "twig",
	DialectHandlebars: "handlebars",
	DialectGoTemplate: "golang",
	DialectAngular:    "angular",
}

// AllDialects lists every supported dialect in a stable order.
var AllDialects = []Dialect{
	DialectDjango,
	DialectJinja,
	DialectNunjucks,
	DialectTwig,
	DialectHandlebars,
	DialectGoTemplate,
	DialectAngular,
}

func (d Dialect) String() string {
	if name, ok := dialectNames[d]; ok {
		return name
	}
	return fmt.Sprintf("dialect(%d)", int(d))
}

// ParseDialect resolves a dialect name as used in config files and profiles.
func ParseDialect(name string) (Dialect, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for d, n := range dialectNames {
		if n == normalized {
			return d, nil
		}
	}
	// common aliases seen in project configs
	switch normalized {
	case "jinja2":
		return DialectJinja, nil
	case "go", "gotemplate":
		return DialectGoTemplate, nil
	case "mustache":
		return DialectHandlebars, nil
	}
	return 0, fmt.Errorf("unknown dialect %q", name)
}

// BlockRole classifies what a template statement does to nesting depth.
type BlockRole int

const (
	RoleNone     BlockRole = iota // plain statement, no depth change
	RoleOpen                      // opens a nestable block ({% if %})
	RoleClose                     // closes one ({% endif %})
	RoleContinue                  // stays at the parent depth ({% else %})
)

// Delims is one open/close delimiter pair.
type Delims struct {
	Open  string
	Close string
}

// DialectRules describes the delimiters and block keywords of one dialect.
// Entries are static data shared by every pipeline invocation.
type DialectRules struct {
	// Statement delimiters ({% ... %}); nil for dialects without statements.
	Statement *Delims
	// Expression delimiters ({{ ... }}).
	Expression Delims
	// Comment delimiter pairs, checked before statements and expressions.
	Comments []Delims

	// Keywords that open a nestable block.
	BlockKeywords map[string]struct{}
	// Keywords that continue a block without changing depth.
	ContinueKeywords map[string]struct{}
	// Keywords whose block body must not be tokenized.
	RawKeywords map[string]struct{}

	// Handlebars-style blocks: {{#kw}} opens and {{/kw}} closes.
	HashBlocks bool
	// Go-template-style blocks: block keywords inside expression delimiters,
	// closed by the single keyword "end".
	KeywordBlocks bool
}

func newSet(words ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

var dialectRules = map[Dialect]*DialectRules{
	DialectDjango: {
		Statement:  &Delims{"{%", "%}"},
		Expression: Delims{"{{", "}}"},
		Comments:   []Delims{{"{#", "#}"}},
		BlockKeywords: newSet(
			"if", "for", "block", "with", "filter", "spaceless", "autoescape",
			"ifchanged", "blocktrans", "blocktranslate", "comment", "verbatim",
			"cache", "localize", "timezone",
		),
		ContinueKeywords: newSet("else", "elif", "empty", "plural"),
		RawKeywords:      newSet("verbatim", "comment"),
	},
	DialectJinja: {
		Statement:  &Delims{"{%", "%}"},
		Expression: Delims{"{{", "}}"},
		Comments:   []Delims{{"{#", "#}"}},
		BlockKeywords: newSet(
			"if", "for", "block", "macro", "call", "filter", "with",
			"trans", "autoescape", "raw",
		),
		ContinueKeywords: newSet("else", "elif", "pluralize"),
		RawKeywords:      newSet("raw"),
	},
	DialectNunjucks: {
		Statement:  &Delims{"{%", "%}"},
		Expression: Delims{"{{", "}}"},
		Comments:   []Delims{{"{#", "#}"}},
		BlockKeywords: newSet(
			"if", "for", "asynceach", "asyncall", "block", "macro", "call",
			"filter", "set", "raw", "verbatim",
		),
		ContinueKeywords: newSet("else", "elif", "elseif"),
		RawKeywords:      newSet("raw", "verbatim"),
	},
	DialectTwig: {
		Statement:  &Delims{"{%", "%}"},
		Expression: Delims{"{{", "}}"},
		Comments:   []Delims{{"{#", "#}"}},
		BlockKeywords: newSet(
			"if", "for", "block", "embed", "macro", "filter", "apply",
			"autoescape", "cache", "sandbox", "verbatim", "with",
		),
		ContinueKeywords: newSet("else", "elseif"),
		RawKeywords:      newSet("verbatim"),
	},
	DialectHandlebars: {
		Expression: Delims{"{{", "}}"},
		Comments:   []Delims{{"{{!--", "--}}"}, {"{{!", "}}"}},
		HashBlocks: true,
		// with hash blocks any {{#name}} opens, so the keyword set only
		// matters for the continue case
		ContinueKeywords: newSet("else"),
	},
	DialectGoTemplate: {
		Expression:       Delims{"{{", "}}"},
		Comments:         []Delims{{"{{/*", "*/}}"}},
		BlockKeywords:    newSet("if", "range", "with", "block", "define"),
		ContinueKeywords: newSet("else"),
		KeywordBlocks:    true,
	},
	DialectAngular: {
		Expression: Delims{"{{", "}}"},
	},
}

// Rules returns the rule table entry for the dialect.
func (d Dialect) Rules() *DialectRules {
	return dialectRules[d]
}

// Classify maps a statement keyword to its block role. The keyword is the
// first word inside the statement delimiters, already lowercased and with
// whitespace-control modifiers stripped.
func (r *DialectRules) Classify(keyword string) BlockRole {
	if _, ok := r.ContinueKeywords[keyword]; ok {
		return RoleContinue
	}
	if r.KeywordBlocks && keyword == "end" {
		return RoleClose
	}
	if _, ok := r.BlockKeywords[keyword]; ok {
		return RoleOpen
	}
	if rest, ok := strings.CutPrefix(keyword, "end"); ok && !r.KeywordBlocks {
		if _, open := r.BlockKeywords[rest]; open {
			return RoleClose
		}
	}
	return RoleNone
}

// CloseMatches reports whether a closing keyword terminates a block opened by
// openKeyword in this dialect.
func (r *DialectRules) CloseMatches(openKeyword, closeKeyword string) bool {
	if r.KeywordBlocks {
		return closeKeyword == "end"
	}
	if r.HashBlocks {
		return openKeyword == closeKeyword
	}
	return closeKeyword == "end"+openKeyword
}

// IsRaw reports whether the keyword starts a block whose body is verbatim.
func (r *DialectRules) IsRaw(keyword string) bool {
	_, ok := r.RawKeywords[keyword]
	return ok
}
