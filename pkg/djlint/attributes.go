// attributes.go parses the inside of an HTML tag, preserving attribute order
// and quoting style.
package djlint

import "strings"

// parseTag parses an HTML open tag starting at s[0] == '<'. It returns the
// token with End set relative to s. An unterminated tag spans to the next
// '>' outside quotes, or to the end of input; it never fails.
func parseTag(s string) (Token, bool) {
	name, pos := scanTagName(s, 1)
	if name == "" {
		return Token{}, false
	}

	tok := Token{Name: strings.ToLower(name)}

	for pos < len(s) {
		pos = skipSpace(s, pos)
		if pos >= len(s) {
			break
		}

		switch {
		case s[pos] == '>':
			pos++
			tok.Kind = tagKind(tok.Name, tok.SelfClosing)
			tok.Text = s[:pos]
			tok.End = pos
			return tok, true

		case s[pos] == '/' && pos+1 < len(s) && s[pos+1] == '>':
			tok.SelfClosing = true
			pos += 2
			tok.Kind = tagKind(tok.Name, true)
			tok.Text = s[:pos]
			tok.End = pos
			return tok, true

		case s[pos] == '{' && pos+1 < len(s) && isTemplateStart(s[pos+1]):
			// a template construct standing alone inside the tag is kept as
			// an opaque attribute so the original text survives
			end := skipTemplateConstruct(s, pos)
			tok.Attrs = append(tok.Attrs, Attr{Name: s[pos:end]})
			pos = end

		default:
			attr, next := parseAttr(s, pos)
			if next == pos {
				// unparsable byte, skip it rather than looping forever
				pos++
				continue
			}
			tok.Attrs = append(tok.Attrs, attr)
			pos = next
		}
	}

	// no closing '>' found: best-guess end is the end of input
	tok.Kind = tagKind(tok.Name, tok.SelfClosing)
	tok.Text = s
	tok.End = len(s)
	return tok, true
}

func tagKind(name string, selfClosing bool) Kind {
	if IsVoidTag(name) || selfClosing {
		return KindVoid
	}
	return KindHTMLOpen
}

// parseAttr parses one name[=value] pair starting at pos.
func parseAttr(s string, pos int) (Attr, int) {
	start := pos
	for pos < len(s) && !isAttrBoundary(s[pos]) {
		pos++
	}
	if pos == start {
		return Attr{}, start
	}
	attr := Attr{Name: s[start:pos]}

	if pos >= len(s) || s[pos] != '=' {
		return attr, pos
	}
	pos++ // skip '='
	attr.HasValue = true

	if pos < len(s) && (s[pos] == '"' || s[pos] == '\'') {
		quote := s[pos]
		attr.Quote = quote
		pos++
		valueStart := pos
		for pos < len(s) && s[pos] != quote {
			pos++
		}
		attr.Value = s[valueStart:pos]
		if pos < len(s) {
			pos++ // skip closing quote
		}
		return attr, pos
	}

	// unquoted value runs to whitespace or tag end
	valueStart := pos
	for pos < len(s) && !isSpaceByte(s[pos]) && s[pos] != '>' {
		if s[pos] == '/' && pos+1 < len(s) && s[pos+1] == '>' {
			break
		}
		pos++
	}
	attr.Value = s[valueStart:pos]
	return attr, pos
}

// skipTemplateConstruct advances past one {{...}}, {%...%} or {#...#}
// construct, or to the end of input when unterminated.
func skipTemplateConstruct(s string, pos int) int {
	var closer string
	switch s[pos+1] {
	case '{':
		closer = "}}"
	case '%':
		closer = "%}"
	case '#':
		closer = "#}"
	}
	end := strings.Index(s[pos:], closer)
	if end < 0 {
		return len(s)
	}
	return pos + end + len(closer)
}

func isTemplateStart(c byte) bool {
	return c == '{' || c == '%' || c == '#'
}

func isAttrBoundary(c byte) bool {
	return isSpaceByte(c) || c == '=' || c == '>' || c == '/' || c == '"' || c == '\''
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// skipSpace advances pos past any run of whitespace bytes.
func skipSpace(s string, pos int) int {
	for pos < len(s) && isSpaceByte(s[pos]) {
		pos++
	}
	return pos
}

// renderAttr reconstructs one attribute in canonical form, keeping the
// source quoting style.
func renderAttr(a Attr) string {
	if !a.HasValue {
		return a.Name
	}
	quote := a.Quote
	if quote == 0 {
		quote = '"'
	}
	var b strings.Builder
	b.WriteString(a.Name)
	b.WriteByte('=')
	b.WriteByte(quote)
	b.WriteString(a.Value)
	b.WriteByte(quote)
	return b.String()
}
