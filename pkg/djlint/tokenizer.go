// tokenizer.go scans a document into the flat token stream consumed by both
// the indentation engine and the rule engine.
package djlint

import (
	"strings"
)

// Void elements never take a closing tag and never affect nesting,
// regardless of a trailing slash.
var voidTags = newSet(
	"area", "base", "br", "col", "embed", "hr", "img", "input",
	"link", "meta", "param", "source", "track", "wbr",
)

// IsVoidTag reports whether name is a configured void element.
func IsVoidTag(name string) bool {
	_, ok := voidTags[strings.ToLower(name)]
	return ok
}

type tokenizer struct {
	src      string
	dialects []Dialect
	tokens   []Token
	pos      int

	// set after emitting a <script>/<style> open tag; the body is captured
	// as a single embedded token up to the matching close tag
	embedded     Kind
	embeddedName string

	// set after emitting a raw block open ({% raw %}, {% verbatim %});
	// the body is captured verbatim up to the matching end statement
	rawDialect Dialect
	rawKeyword string
	inRaw      bool
}

// Tokenize splits source into an ordered, lossless token stream. It never
// fails: constructs that cannot be classified degrade to text tokens.
func Tokenize(source string, dialects []Dialect) []Token {
	if len(dialects) == 0 {
		dialects = AllDialects
	}
	t := &tokenizer{src: source, dialects: dialects}
	t.run()
	fillPositions(source, t.tokens)
	return t.tokens
}

func (t *tokenizer) run() {
	for t.pos < len(t.src) {
		switch {
		case t.embedded != 0:
			t.scanEmbeddedBody()
		case t.inRaw:
			t.scanRawBody()
		case t.matchTemplateComment():
		case t.matchTemplateStatement():
		case t.matchTemplateExpression():
		case t.matchHTML():
		default:
			t.scanText()
		}
	}
}

func (t *tokenizer) emit(tok Token) {
	t.tokens = append(t.tokens, tok)
	t.pos = tok.End
}

// scanEmbeddedBody captures everything up to the closing </script> or
// </style> tag as one embedded token. A missing close tag swallows the rest
// of the document rather than failing.
func (t *tokenizer) scanEmbeddedBody() {
	kind := t.embedded
	closer := "</" + t.embeddedName
	t.embedded = 0

	rest := t.src[t.pos:]
	end := indexCaseInsensitive(rest, closer)
	if end < 0 {
		end = len(rest)
	}
	if end > 0 {
		t.emit(Token{
			Kind:  kind,
			Text:  rest[:end],
			Start: t.pos,
			End:   t.pos + end,
		})
	}
}

// scanRawBody captures the body of a raw/verbatim block without tokenizing it.
func (t *tokenizer) scanRawBody() {
	t.inRaw = false
	rules := t.rawDialect.Rules()

	search := t.pos
	for search < len(t.src) {
		next := strings.Index(t.src[search:], rules.Statement.Open)
		if next < 0 {
			search = len(t.src)
			break
		}
		next += search
		keyword, _, _ := statementKeyword(t.src[next:], rules.Statement)
		if rules.CloseMatches(t.rawKeyword, keyword) {
			search = next
			break
		}
		search = next + len(rules.Statement.Open)
	}

	if search > t.pos {
		t.emit(Token{
			Kind:  KindRawText,
			Text:  t.src[t.pos:search],
			Start: t.pos,
			End:   search,
		})
	}
}

// matchTemplateComment checks all configured dialects' comment delimiters.
// Comments take priority over statements and expressions since commented-out
// code may contain statement-like text.
func (t *tokenizer) matchTemplateComment() bool {
	rest := t.src[t.pos:]
	for _, d := range t.dialects {
		for _, c := range d.Rules().Comments {
			if !strings.HasPrefix(rest, c.Open) {
				continue
			}
			end := strings.Index(rest[len(c.Open):], c.Close)
			if end < 0 {
				end = len(rest) // unterminated: comment runs to end of document
			} else {
				end += len(c.Open) + len(c.Close)
			}
			t.emit(Token{
				Kind:    KindTemplateComment,
				Text:    rest[:end],
				Start:   t.pos,
				End:     t.pos + end,
				Dialect: d,
			})
			return true
		}
	}
	return false
}

// matchTemplateStatement handles {% ... %} style statements for dialects
// that have them. The Django family shares the {% %} delimiters, so the
// first dialect whose keyword table gives the statement a block role wins
// over ones that would treat it as a plain statement.
func (t *tokenizer) matchTemplateStatement() bool {
	rest := t.src[t.pos:]
	matched := false
	var plain *Token

	for _, d := range t.dialects {
		rules := d.Rules()
		if rules.Statement == nil || !strings.HasPrefix(rest, rules.Statement.Open) {
			continue
		}
		matched = true
		keyword, length, ok := statementKeyword(rest, rules.Statement)
		if !ok {
			continue
		}

		tok := Token{
			Text:    rest[:length],
			Start:   t.pos,
			End:     t.pos + length,
			Name:    keyword,
			Dialect: d,
			Role:    rules.Classify(keyword),
		}
		switch tok.Role {
		case RoleOpen:
			tok.Kind = KindTemplateBlockOpen
		case RoleClose:
			tok.Kind = KindTemplateBlockClose
		default:
			tok.Kind = KindTemplateExpression
		}

		if tok.Role != RoleNone {
			if tok.Role == RoleOpen && rules.IsRaw(keyword) {
				t.inRaw = true
				t.rawDialect = d
				t.rawKeyword = keyword
			}
			t.emit(tok)
			return true
		}
		if plain == nil {
			cand := tok
			plain = &cand
		}
	}

	if plain != nil {
		t.emit(*plain)
		return true
	}
	if matched {
		// unterminated statement degrades to text
		t.scanText()
		return true
	}
	return false
}

// matchTemplateExpression handles {{ ... }} for every dialect, including
// Handlebars hash blocks and Go template keyword blocks. Dialects share the
// {{ }} delimiters, so the first dialect that assigns the construct a block
// role wins over ones that would treat it as a plain expression.
func (t *tokenizer) matchTemplateExpression() bool {
	rest := t.src[t.pos:]
	var plain *Token

	for _, d := range t.dialects {
		rules := d.Rules()
		if !strings.HasPrefix(rest, rules.Expression.Open) {
			continue
		}

		open, close := rules.Expression.Open, rules.Expression.Close
		// triple-stache raw output ({{{ body }}}) must match its own closer
		if strings.HasPrefix(rest, open+"{") {
			open, close = open+"{", close+"}"
		}
		end := strings.Index(rest[len(open):], close)
		if end < 0 {
			continue
		}
		length := end + len(open) + len(close)
		inner := strings.TrimSpace(rest[len(open) : len(open)+end])

		tok := Token{
			Kind:    KindTemplateExpression,
			Text:    rest[:length],
			Start:   t.pos,
			End:     t.pos + length,
			Dialect: d,
		}

		switch {
		case rules.HashBlocks && strings.HasPrefix(inner, "#"):
			tok.Kind = KindTemplateBlockOpen
			tok.Name = strings.ToLower(firstWord(inner[1:]))
			tok.Role = RoleOpen
		case rules.HashBlocks && strings.HasPrefix(inner, "/"):
			tok.Kind = KindTemplateBlockClose
			tok.Name = strings.ToLower(firstWord(inner[1:]))
			tok.Role = RoleClose
		case rules.KeywordBlocks || rules.HashBlocks:
			keyword := strings.ToLower(firstWord(strings.TrimLeft(inner, "-+ ")))
			tok.Name = keyword
			switch rules.Classify(keyword) {
			case RoleOpen:
				tok.Kind = KindTemplateBlockOpen
				tok.Role = RoleOpen
			case RoleClose:
				tok.Kind = KindTemplateBlockClose
				tok.Role = RoleClose
			case RoleContinue:
				tok.Role = RoleContinue
			}
		}

		if tok.Role != RoleNone {
			t.emit(tok)
			return true
		}
		if plain == nil {
			cand := tok
			plain = &cand
		}
	}

	if plain != nil {
		t.emit(*plain)
		return true
	}
	// an opener with no closer anywhere degrades to text
	if strings.HasPrefix(rest, "{{") {
		t.scanText()
		return true
	}
	return false
}

// matchHTML handles comments, doctype declarations and tags. HTML comment
// contents are opaque: template delimiters inside them are not scanned, so
// commented-out template code cannot produce tokens.
func (t *tokenizer) matchHTML() bool {
	rest := t.src[t.pos:]
	if len(rest) < 2 || rest[0] != '<' {
		return false
	}

	switch {
	case strings.HasPrefix(rest, "<!--"):
		end := strings.Index(rest[4:], "-->")
		if end < 0 {
			end = len(rest)
		} else {
			end += 4 + 3
		}
		t.emit(Token{
			Kind:  KindHTMLComment,
			Text:  rest[:end],
			Start: t.pos,
			End:   t.pos + end,
		})
		return true

	case rest[1] == '!':
		// doctype and CDATA declarations never nest
		end := strings.IndexByte(rest, '>')
		if end < 0 {
			end = len(rest)
		} else {
			end++
		}
		t.emit(Token{
			Kind:  KindVoid,
			Text:  rest[:end],
			Start: t.pos,
			End:   t.pos + end,
			Name:  strings.ToLower(firstWord(strings.TrimLeft(rest[2:end], "["))),
		})
		return true

	case rest[1] == '/':
		name, end := scanTagName(rest, 2)
		if name == "" {
			return false
		}
		close := strings.IndexByte(rest[end:], '>')
		if close < 0 {
			close = len(rest)
		} else {
			close += end + 1
		}
		t.emit(Token{
			Kind:  KindHTMLClose,
			Text:  rest[:close],
			Start: t.pos,
			End:   t.pos + close,
			Name:  strings.ToLower(name),
		})
		return true

	case isTagNameStart(rest[1]):
		tok, ok := parseTag(rest)
		if !ok {
			return false
		}
		tok.Start = t.pos
		tok.End += t.pos
		if tok.Kind == KindHTMLOpen {
			switch tok.Name {
			case "script":
				t.embedded = KindEmbeddedScript
				t.embeddedName = "script"
			case "style":
				t.embedded = KindEmbeddedStyle
				t.embeddedName = "style"
			}
		}
		t.emit(tok)
		return true
	}
	return false
}

// scanText consumes plain text up to the next candidate delimiter. A run
// consisting solely of whitespace becomes a whitespace token.
func (t *tokenizer) scanText() {
	end := t.pos + 1
	for end < len(t.src) {
		c := t.src[end]
		if c == '<' {
			break
		}
		if c == '{' && end+1 < len(t.src) {
			n := t.src[end+1]
			if n == '{' || n == '%' || n == '#' {
				break
			}
		}
		end++
	}

	text := t.src[t.pos:end]
	kind := KindRawText
	if strings.TrimSpace(text) == "" {
		kind = KindWhitespace
	}
	t.emit(Token{
		Kind:  kind,
		Text:  text,
		Start: t.pos,
		End:   end,
	})
}

// statementKeyword extracts the first keyword of a {% ... %} statement and
// the total statement length. ok is false when the closing delimiter is
// missing.
func statementKeyword(s string, delims *Delims) (keyword string, length int, ok bool) {
	end := strings.Index(s[len(delims.Open):], delims.Close)
	if end < 0 {
		return "", 0, false
	}
	length = end + len(delims.Open) + len(delims.Close)
	inner := strings.TrimSpace(strings.Trim(s[len(delims.Open):len(delims.Open)+end], "-+"))
	return strings.ToLower(firstWord(inner)), length, true
}

func firstWord(s string) string {
	s = strings.TrimSpace(s)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			return s[:i]
		}
	}
	return s
}

func isTagNameStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isTagNameChar(c byte) bool {
	return isTagNameStart(c) || (c >= '0' && c <= '9') || c == '-' || c == ':'
}

func scanTagName(s string, start int) (string, int) {
	end := start
	for end < len(s) && isTagNameChar(s[end]) {
		end++
	}
	return s[start:end], end
}

func indexCaseInsensitive(s, substr string) int {
	return strings.Index(strings.ToLower(s), strings.ToLower(substr))
}
