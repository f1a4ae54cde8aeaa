// rules.go defines rule definitions and the immutable catalog handed to
// every lint invocation. There is no process-wide registry: callers build a
// catalog once and pass it by reference.
package djlint

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Scope says whether a rule runs once per token or once per document.
type Scope int

const (
	ScopeToken Scope = iota
	ScopeDocument
)

// Fix is an automated textual correction for a fixable rule. Applying it
// must be idempotent: the replacement must not re-match the rule.
type Fix struct {
	Pattern *regexp.Regexp
	Replace string
}

// checkFunc implements rules that need more than pattern matching, such as
// the orphan-tag stack matcher.
type checkFunc func(r *Rule, source string, tokens []Token) []Diagnostic

// Rule is one immutable lint rule definition.
type Rule struct {
	Name        string
	Message     string
	Description string // markdown, used by the rule reference export
	Severity    Severity
	Default     bool // enabled unless configuration says otherwise
	Scope       Scope

	// applicability filters; empty means "all"
	Kinds    []Kind
	Dialects []Dialect

	// Patterns match the token text (or the document for document scope);
	// any hit is a finding unless an Exclude also hits.
	Patterns []*regexp.Regexp
	Excludes []*regexp.Regexp
	// Requires lists attribute names that must all be present on a
	// pattern-matched tag token; a missing one is a finding.
	Requires []string

	Fix *Fix

	check checkFunc
}

// Fixable reports whether the rule carries an automated correction.
func (r *Rule) Fixable() bool { return r.Fix != nil }

func (r *Rule) appliesToKind(k Kind) bool {
	if len(r.Kinds) == 0 {
		return k != KindWhitespace
	}
	for _, want := range r.Kinds {
		if want == k {
			return true
		}
	}
	return false
}

func (r *Rule) appliesToDialects(active []Dialect) bool {
	if len(r.Dialects) == 0 {
		return true
	}
	for _, want := range r.Dialects {
		for _, d := range active {
			if want == d {
				return true
			}
		}
	}
	return false
}

// matchToken evaluates the rule's predicate against one token.
func (r *Rule) matchToken(tok *Token) bool {
	matched := false
	for _, p := range r.Patterns {
		if p.MatchString(tok.Text) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	for _, p := range r.Excludes {
		if p.MatchString(tok.Text) {
			return false
		}
	}
	if len(r.Requires) > 0 {
		missing := false
		for _, name := range r.Requires {
			if !tok.HasAttr(name) {
				missing = true
				break
			}
		}
		return missing
	}
	return true
}

// Catalog is an immutable, validated set of rules. It is safe to share
// across concurrent per-file pipelines.
type Catalog struct {
	rules  []*Rule
	byName map[string]*Rule
}

// builtinChecks are attached to rules by name when the catalog is built.
var builtinChecks = map[string]checkFunc{
	"H025": checkOrphanTags,
	"H030": requireMetaTag("description"),
	"H031": requireMetaTag("keywords"),
	"H038": checkTrailingNewline,
}

// NewCatalog validates rule definitions and builds the catalog. Rules are
// kept in a stable name order.
func NewCatalog(rules []*Rule) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]*Rule, len(rules))}
	for _, r := range rules {
		if r.Name == "" {
			return nil, fmt.Errorf("rule with empty name (message %q)", r.Message)
		}
		if _, dup := c.byName[r.Name]; dup {
			return nil, fmt.Errorf("duplicate rule %s", r.Name)
		}
		if check, ok := builtinChecks[r.Name]; ok {
			r.check = check
		}
		if len(r.Patterns) == 0 && r.check == nil {
			return nil, fmt.Errorf("rule %s has no patterns and no builtin check", r.Name)
		}
		c.byName[r.Name] = r
		c.rules = append(c.rules, r)
	}
	sort.Slice(c.rules, func(i, j int) bool { return c.rules[i].Name < c.rules[j].Name })
	return c, nil
}

// Rules returns the catalog's rules in name order. The slice must not be
// mutated.
func (c *Catalog) Rules() []*Rule { return c.rules }

// Get looks a rule up by code.
func (c *Catalog) Get(name string) (*Rule, bool) {
	r, ok := c.byName[name]
	return r, ok
}

// Len returns the number of rules.
func (c *Catalog) Len() int { return len(c.rules) }

// --- builtin checks ---------------------------------------------------

// checkOrphanTags runs the stack matcher over the token stream and reports
// opens without closes and closes without opens.
func checkOrphanTags(r *Rule, _ string, tokens []Token) []Diagnostic {
	var diags []Diagnostic
	var stack []*Token

	report := func(tok *Token) {
		label := truncateLabel(strings.TrimSpace(tok.Text), 20)
		diags = append(diags, Diagnostic{
			Rule:     r.Name,
			Message:  r.Message + " " + label,
			Line:     tok.Line,
			Col:      tok.Col,
			Severity: r.Severity,
		})
	}

	for i := range tokens {
		tok := &tokens[i]
		switch tok.Kind {
		case KindHTMLOpen:
			stack = append(stack, tok)
		case KindHTMLClose:
			found := -1
			for j := len(stack) - 1; j >= 0; j-- {
				if stack[j].Name == tok.Name {
					found = j
					break
				}
			}
			if found < 0 {
				report(tok)
				continue
			}
			for j := len(stack) - 1; j > found; j-- {
				report(stack[j])
			}
			stack = stack[:found]
		}
	}
	for _, tok := range stack {
		report(tok)
	}
	return diags
}

// requireMetaTag builds a document check that wants a <meta name="..."> tag.
func requireMetaTag(name string) checkFunc {
	return func(r *Rule, _ string, tokens []Token) []Diagnostic {
		hasHead := false
		for i := range tokens {
			tok := &tokens[i]
			if tok.Kind == KindHTMLOpen && tok.Name == "head" {
				hasHead = true
			}
			if tok.Kind != KindVoid || tok.Name != "meta" {
				continue
			}
			if attr, ok := tok.Attr("name"); ok && strings.EqualFold(attr.Value, name) {
				return nil
			}
		}
		if !hasHead {
			// fragments without a <head> are not full documents
			return nil
		}
		return []Diagnostic{{
			Rule:     r.Name,
			Message:  r.Message,
			Line:     1,
			Col:      1,
			Severity: r.Severity,
		}}
	}
}

// checkTrailingNewline wants the file to end with exactly one newline.
func checkTrailingNewline(r *Rule, source string, _ []Token) []Diagnostic {
	if source == "" {
		return nil
	}
	normalized := strings.ReplaceAll(source, "\r\n", "\n")
	if strings.HasSuffix(normalized, "\n") && !strings.HasSuffix(normalized, "\n\n") {
		return nil
	}
	line := strings.Count(source, "\n") + 1
	return []Diagnostic{{
		Rule:     r.Name,
		Message:  r.Message,
		Line:     line,
		Col:      1,
		Severity: r.Severity,
	}}
}
