// subformat.go is the boundary to CSS/JS sub-formatters for embedded
// <style> and <script> bodies. The boundary is a pure text transform; a
// failing formatter must never break the surrounding document.
package djlint

import (
	"errors"
	"strings"
)

// EmbeddedKind tags the language of an embedded region.
type EmbeddedKind int

const (
	EmbeddedStyle EmbeddedKind = iota
	EmbeddedScript
)

func (k EmbeddedKind) String() string {
	if k == EmbeddedStyle {
		return "style"
	}
	return "script"
}

// EmbeddedFormatter reformats the literal text of an embedded region.
// Implementations receive no other context. Returning an error makes the
// caller keep the original text.
type EmbeddedFormatter interface {
	Format(text string, kind EmbeddedKind) (string, error)
}

// EmbeddedFormatterFunc adapts a function to the interface.
type EmbeddedFormatterFunc func(text string, kind EmbeddedKind) (string, error)

func (f EmbeddedFormatterFunc) Format(text string, kind EmbeddedKind) (string, error) {
	return f(text, kind)
}

var errUnbalanced = errors.New("unbalanced braces in embedded code")

// braceFormatter is the built-in sub-formatter: a conservative brace-depth
// re-indenter. CSS additionally gets one declaration per line. Code that
// does not brace-balance is rejected so the caller falls back to the
// original text, since embedded template syntax frequently is not valid
// standalone CSS/JS.
type braceFormatter struct {
	indentWidth int
}

// DefaultEmbeddedFormatter returns the built-in brace re-indenter.
func DefaultEmbeddedFormatter() EmbeddedFormatter {
	return &braceFormatter{indentWidth: 4}
}

func (b *braceFormatter) Format(text string, kind EmbeddedKind) (string, error) {
	if kind == EmbeddedStyle {
		text = expandCSS(text)
	}

	var out []string
	depth := 0
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		openers, closers := countBraces(trimmed)
		lineDepth := depth
		if strings.HasPrefix(trimmed, "}") || strings.HasPrefix(trimmed, ")") {
			lineDepth--
		}
		if lineDepth < 0 {
			return "", errUnbalanced
		}
		out = append(out, strings.Repeat(" ", b.indentWidth*lineDepth)+trimmed)
		depth += openers - closers
		if depth < 0 {
			return "", errUnbalanced
		}
	}
	if depth != 0 {
		return "", errUnbalanced
	}
	return strings.Join(out, "\n"), nil
}

// expandCSS puts each rule and declaration on its own line.
func expandCSS(text string) string {
	var b strings.Builder
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			b.WriteByte(c)
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
			b.WriteByte(c)
		case '{', ';':
			b.WriteByte(c)
			b.WriteByte('\n')
		case '}':
			b.WriteByte('\n')
			b.WriteByte(c)
			b.WriteByte('\n')
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// countBraces counts block delimiters outside string literals.
func countBraces(line string) (openers, closers int) {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '{':
			openers++
		case '}':
			closers++
		}
	}
	return openers, closers
}
