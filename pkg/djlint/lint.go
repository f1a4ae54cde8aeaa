// lint.go evaluates the rule catalog against a token stream.
package djlint

import (
	"fmt"
	"regexp"
	"strings"
)

// Engine runs lint rules over token streams. The catalog and overrides are
// immutable after construction, so one engine may serve concurrent files.
type Engine struct {
	catalog    *Catalog
	cfg        Config
	enabled    map[string]bool
	severities map[string]Severity
}

// NewEngine builds a rule engine for the given catalog and configuration.
func NewEngine(catalog *Catalog, cfg Config) *Engine {
	return &Engine{catalog: catalog, cfg: cfg.withDefaults()}
}

// SetOverrides installs resolved per-rule enable/disable flags and severity
// overrides. Precedence against rule defaults is: override > rule default;
// merging CLI and project-file layers happens upstream.
func (e *Engine) SetOverrides(enabled map[string]bool, severities map[string]Severity) {
	e.enabled = enabled
	e.severities = severities
}

func (e *Engine) ruleEnabled(r *Rule) bool {
	if v, ok := e.enabled[r.Name]; ok {
		return v
	}
	return r.Default
}

func (e *Engine) ruleSeverity(r *Rule) Severity {
	if v, ok := e.severities[r.Name]; ok {
		return v
	}
	return r.Severity
}

// Lint evaluates every enabled, applicable rule and returns findings in
// deterministic (line, column, code) order. One rule's internal fault is
// isolated and reported as a diagnostic about that rule.
func (e *Engine) Lint(source string, tokens []Token) []Diagnostic {
	supp := buildSuppressions(tokens)
	var diags []Diagnostic

	for _, rule := range e.catalog.Rules() {
		if !e.ruleEnabled(rule) || !rule.appliesToDialects(e.cfg.Dialects) {
			continue
		}
		found, faulted := e.evalRule(rule, source, tokens)
		for _, d := range found {
			if supp.suppressed(d, rule.Name) {
				continue
			}
			// a fault report keeps its error severity regardless of how
			// the rule itself is configured
			if !faulted {
				d.Severity = e.ruleSeverity(rule)
			}
			diags = append(diags, d)
		}
	}

	sortDiagnostics(diags)
	return diags
}

// evalRule runs one rule with panic isolation.
func (e *Engine) evalRule(rule *Rule, source string, tokens []Token) (diags []Diagnostic, faulted bool) {
	defer func() {
		if r := recover(); r != nil {
			faulted = true
			diags = []Diagnostic{{
				Rule:     rule.Name,
				Message:  fmt.Sprintf("rule evaluation failed: %v", r),
				Line:     1,
				Col:      1,
				Severity: SeverityError,
			}}
		}
	}()

	if rule.check != nil {
		return rule.check(rule, source, tokens), false
	}
	if rule.Scope == ScopeDocument {
		return evalDocumentRule(rule, source), false
	}

	for i := range tokens {
		tok := &tokens[i]
		if !rule.appliesToKind(tok.Kind) || !rule.matchToken(tok) {
			continue
		}
		diags = append(diags, Diagnostic{
			Rule:     rule.Name,
			Message:  rule.Message,
			Line:     tok.Line,
			Col:      tok.Col,
			Severity: rule.Severity,
		})
	}
	return diags, false
}

// evalDocumentRule matches patterns against the whole document and reports
// one finding per match site.
func evalDocumentRule(rule *Rule, source string) []Diagnostic {
	var diags []Diagnostic
	for _, p := range rule.Patterns {
		for _, loc := range p.FindAllStringIndex(source, -1) {
			excluded := false
			match := source[loc[0]:loc[1]]
			for _, x := range rule.Excludes {
				if x.MatchString(match) {
					excluded = true
					break
				}
			}
			if excluded {
				continue
			}
			line, col := offsetPosition(source, loc[0])
			diags = append(diags, Diagnostic{
				Rule:     rule.Name,
				Message:  rule.Message,
				Line:     line,
				Col:      col,
				Severity: rule.Severity,
			})
		}
	}
	return diags
}

func offsetPosition(source string, offset int) (line, col int) {
	line = 1 + strings.Count(source[:offset], "\n")
	if last := strings.LastIndexByte(source[:offset], '\n'); last >= 0 {
		col = offset - last
	} else {
		col = offset + 1
	}
	return line, col
}

// --- inline suppression -------------------------------------------------

var ignoreMarker = regexp.MustCompile(`djlint:ignore(?:=([A-Za-z0-9_,\s]+))?`)

// position orders source locations lexicographically.
type position struct {
	line, col int
}

func (p position) before(q position) bool {
	return p.line < q.line || (p.line == q.line && p.col < q.col)
}

// suppressions resolves inline suppression markers. A djlint:off/on pair
// mutes everything in between; djlint:ignore=CODE mutes the named rules on
// the next non-whitespace token; a bare djlint:ignore mutes the remainder
// of its line.
type suppressions struct {
	offRanges [][2]position       // regions muted entirely
	byLine    map[int]int         // marker line → column from which all rules mute
	nextToken map[position]map[string]bool // covered token position → codes
}

func buildSuppressions(tokens []Token) *suppressions {
	s := &suppressions{
		byLine:    make(map[int]int),
		nextToken: make(map[position]map[string]bool),
	}

	var offStart *position
	for i := range tokens {
		tok := &tokens[i]
		switch tok.Kind {
		case KindHTMLComment, KindTemplateComment, KindRawText:
		default:
			continue
		}

		if strings.Contains(tok.Text, "djlint:off") && offStart == nil {
			p := position{tok.Line, tok.Col}
			offStart = &p
			continue
		}
		if strings.Contains(tok.Text, "djlint:on") && offStart != nil {
			s.offRanges = append(s.offRanges, [2]position{*offStart, {tok.Line, tok.Col}})
			offStart = nil
			continue
		}

		m := ignoreMarker.FindStringSubmatch(tok.Text)
		if m == nil {
			continue
		}
		if m[1] == "" {
			// no code given: remainder of the marker's line
			if _, exists := s.byLine[tok.Line]; !exists {
				s.byLine[tok.Line] = tok.Col
			}
			continue
		}
		codes := make(map[string]bool)
		for _, code := range strings.Split(m[1], ",") {
			if code = strings.TrimSpace(code); code != "" {
				codes[code] = true
			}
		}
		// the marker covers the next non-whitespace token
		for j := i + 1; j < len(tokens); j++ {
			if tokens[j].Kind == KindWhitespace {
				continue
			}
			s.nextToken[position{tokens[j].Line, tokens[j].Col}] = codes
			break
		}
	}
	if offStart != nil {
		s.offRanges = append(s.offRanges, [2]position{*offStart, {int(^uint(0) >> 1), 1}})
	}
	return s
}

// suppressed is checked before any diagnostic is emitted.
func (s *suppressions) suppressed(d Diagnostic, rule string) bool {
	at := position{d.Line, d.Col}
	for _, r := range s.offRanges {
		if r[0].before(at) && at.before(r[1]) {
			return true
		}
	}
	if fromCol, ok := s.byLine[d.Line]; ok && d.Col >= fromCol {
		return true
	}
	if codes, ok := s.nextToken[at]; ok && codes[rule] {
		return true
	}
	return false
}
