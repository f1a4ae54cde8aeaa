// fix.go applies the automated corrections of fixable rules.
package djlint

import "strings"

// ApplyFixes runs every enabled fixable rule's transform over the document
// and returns the fixed source and the number of corrections made. One pass
// is idempotent: re-tokenizing the output and re-linting finds no further
// matches for the fixed rules. Suppressed sites are left alone.
func (e *Engine) ApplyFixes(source string, tokens []Token) (string, int) {
	supp := buildSuppressions(tokens)
	fixed := 0

	// token-scoped fixes rewrite individual token texts; losslessness of the
	// stream lets the document be reassembled around them
	parts := make([]string, len(tokens))
	for i := range tokens {
		parts[i] = tokens[i].Text
	}

	for _, rule := range e.catalog.Rules() {
		if rule.Fix == nil || rule.Scope != ScopeToken {
			continue
		}
		if !e.ruleEnabled(rule) || !rule.appliesToDialects(e.cfg.Dialects) {
			continue
		}
		for i := range tokens {
			tok := &tokens[i]
			if !rule.appliesToKind(tok.Kind) || !rule.matchToken(tok) {
				continue
			}
			probe := Diagnostic{Rule: rule.Name, Line: tok.Line, Col: tok.Col}
			if supp.suppressed(probe, rule.Name) {
				continue
			}
			replaced := rule.Fix.Pattern.ReplaceAllString(parts[i], rule.Fix.Replace)
			if replaced != parts[i] {
				parts[i] = replaced
				fixed++
			}
		}
	}

	out := strings.Join(parts, "")

	// document-scoped fixes run on the reassembled text
	for _, rule := range e.catalog.Rules() {
		if rule.Fix == nil || rule.Scope != ScopeDocument {
			continue
		}
		if !e.ruleEnabled(rule) || !rule.appliesToDialects(e.cfg.Dialects) {
			continue
		}
		replaced := rule.Fix.Pattern.ReplaceAllString(out, rule.Fix.Replace)
		if replaced != out {
			out = replaced
			fixed++
		}
	}

	return out, fixed
}
