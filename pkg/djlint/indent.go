// indent.go implements the indentation engine: it walks the token stream
// with a stack of open elements and blocks and emits the reformatted
// document.
package djlint

import (
	"strings"
)

// Inline elements contribute to the current line without a depth change,
// the way a hand-formatted <span> sits inside a paragraph.
var inlineTags = newSet(
	"a", "abbr", "b", "bdi", "bdo", "big", "cite", "code", "del", "dfn",
	"em", "i", "ins", "kbd", "label", "mark", "meter", "output", "q", "s",
	"samp", "small", "span", "strike", "strong", "sub", "sup", "time",
	"tt", "u", "var",
	// voids that belong in running text
	"br", "wbr",
)

// Config holds the formatting knobs shared by the formatter and linter.
type Config struct {
	Dialects           []Dialect
	IndentWidth        int
	MaxLineLength      int
	MaxAttributeLength int
	MaxBlankLines      int
}

// DefaultConfig returns the stock formatting configuration.
func DefaultConfig() Config {
	return Config{
		Dialects:           AllDialects,
		IndentWidth:        4,
		MaxLineLength:      120,
		MaxAttributeLength: 70,
		MaxBlankLines:      1,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.IndentWidth <= 0 {
		c.IndentWidth = d.IndentWidth
	}
	if c.MaxLineLength <= 0 {
		c.MaxLineLength = d.MaxLineLength
	}
	if c.MaxAttributeLength <= 0 {
		c.MaxAttributeLength = d.MaxAttributeLength
	}
	if c.MaxBlankLines < 0 {
		c.MaxBlankLines = 0
	}
	if len(c.Dialects) == 0 {
		c.Dialects = d.Dialects
	}
	return c
}

type stackEntry struct {
	name    string
	kind    Kind
	inline  bool
	raw     bool
	dialect Dialect
	tok     Token
}

// Formatter reformats a token stream into canonical indented layout. It is
// not safe for concurrent use; create one per file.
type Formatter struct {
	cfg   Config
	sub   EmbeddedFormatter
	diags []Diagnostic

	lines        []string
	cur          strings.Builder
	pendingSpace bool
	pendingBlank int
	depth        int
	stack        []stackEntry
	verbatim     bool
}

// NewFormatter builds a formatter with the default embedded sub-formatter.
func NewFormatter(cfg Config) *Formatter {
	return &Formatter{cfg: cfg.withDefaults(), sub: DefaultEmbeddedFormatter()}
}

// SetEmbeddedFormatter replaces the CSS/JS sub-formatter boundary.
func (f *Formatter) SetEmbeddedFormatter(sub EmbeddedFormatter) {
	if sub != nil {
		f.sub = sub
	}
}

// Diagnostics returns structural anomalies found during the last Reformat,
// ordered like lint output.
func (f *Formatter) Diagnostics() []Diagnostic {
	sortDiagnostics(f.diags)
	return f.diags
}

// Reformat renders the token stream with computed indentation. Malformed
// structure never aborts the pass; it degrades to a best-effort depth and is
// reported through Diagnostics.
func (f *Formatter) Reformat(tokens []Token) string {
	f.lines = f.lines[:0]
	f.cur.Reset()
	f.diags = nil
	f.stack = f.stack[:0]
	f.depth = 0
	f.pendingSpace = false
	f.pendingBlank = 0
	f.verbatim = false

	for _, tok := range tokens {
		if f.verbatim {
			f.writeVerbatim(tok.Text)
			if tok.Kind == KindHTMLComment || tok.Kind == KindTemplateComment {
				if strings.Contains(tok.Text, "djlint:on") {
					f.verbatim = false
				}
			}
			continue
		}

		switch tok.Kind {
		case KindWhitespace:
			f.handleWhitespace(tok)
		case KindRawText:
			f.handleText(tok)
		case KindHTMLOpen:
			f.handleOpen(tok)
		case KindHTMLClose:
			f.handleClose(tok)
		case KindVoid:
			f.handleVoid(tok)
		case KindHTMLComment, KindTemplateComment:
			f.handleComment(tok)
		case KindTemplateBlockOpen:
			f.handleBlockOpen(tok)
		case KindTemplateBlockClose:
			f.handleBlockClose(tok)
		case KindTemplateExpression:
			f.handleExpression(tok)
		case KindEmbeddedStyle, KindEmbeddedScript:
			f.handleEmbedded(tok)
		}
	}

	// unterminated opens are reported, never silently dropped
	for i := len(f.stack) - 1; i >= 0; i-- {
		f.reportOrphan(f.stack[i].tok)
	}

	f.flushLine()
	out := strings.TrimRight(strings.Join(f.lines, "\n"), " \t\n")
	if out == "" {
		return ""
	}
	return out + "\n"
}

// --- writer -----------------------------------------------------------

func (f *Formatter) indent(depth int) string {
	if depth < 0 {
		depth = 0
	}
	return strings.Repeat(" ", f.cfg.IndentWidth*depth)
}

func (f *Formatter) flushLine() {
	if f.cur.Len() > 0 {
		f.lines = append(f.lines, strings.TrimRight(f.cur.String(), " \t"))
		f.cur.Reset()
	}
	f.pendingSpace = false
}

func (f *Formatter) emitBlanks() {
	if f.pendingBlank > 0 && len(f.lines) > 0 {
		n := f.pendingBlank
		if n > f.cfg.MaxBlankLines {
			n = f.cfg.MaxBlankLines
		}
		for i := 0; i < n; i++ {
			f.lines = append(f.lines, "")
		}
	}
	f.pendingBlank = 0
}

// place appends s to the current line when it fits, otherwise starts a new
// line at the current depth.
func (f *Formatter) place(s string) {
	if f.cur.Len() == 0 {
		f.emitBlanks()
		f.cur.WriteString(f.indent(f.depth))
		f.cur.WriteString(s)
		f.pendingSpace = false
		return
	}
	width := f.cur.Len() + len(s)
	if f.pendingSpace {
		width++
	}
	if width <= f.cfg.MaxLineLength {
		if f.pendingSpace {
			f.cur.WriteByte(' ')
		}
		f.cur.WriteString(s)
		f.pendingSpace = false
		return
	}
	f.flushLine()
	f.emitBlanks()
	f.cur.WriteString(f.indent(f.depth))
	f.cur.WriteString(s)
}

// ownLine flushes the current line and writes s at the given depth. A
// multi-line s has its continuation lines already indented.
func (f *Formatter) ownLine(s string, depth int) {
	f.flushLine()
	f.emitBlanks()
	first, rest, multi := strings.Cut(s, "\n")
	f.lines = append(f.lines, f.indent(depth)+first)
	if multi {
		f.lines = append(f.lines, strings.Split(rest, "\n")...)
	}
}

// writeVerbatim copies text through untouched, preserving its line breaks.
func (f *Formatter) writeVerbatim(text string) {
	parts := strings.Split(text, "\n")
	f.cur.WriteString(parts[0])
	for _, p := range parts[1:] {
		f.lines = append(f.lines, f.cur.String())
		f.cur.Reset()
		f.cur.WriteString(p)
	}
}

// --- token handlers ---------------------------------------------------

func (f *Formatter) handleWhitespace(tok Token) {
	newlines := strings.Count(tok.Text, "\n")
	switch {
	case newlines == 0:
		if f.cur.Len() > 0 {
			f.pendingSpace = true
		}
	case newlines == 1:
		f.flushLine()
	default:
		f.flushLine()
		f.pendingBlank = newlines - 1
	}
}

func (f *Formatter) handleText(tok Token) {
	if top := f.top(); top != nil && top.raw {
		text := tok.Text
		// the block opener's line was already committed; its terminating
		// newline leads the raw body
		if f.cur.Len() == 0 && strings.HasPrefix(text, "\n") {
			text = text[1:]
		}
		f.writeVerbatim(text)
		return
	}

	blanks := 0
	for i, line := range strings.Split(tok.Text, "\n") {
		if i > 0 {
			f.flushLine()
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if i > 0 {
				blanks++
			}
			continue
		}
		if blanks > 1 {
			f.pendingBlank = blanks - 1
		}
		blanks = 0
		if i > 0 {
			f.place(trimmed)
			continue
		}
		// first segment continues the current line
		if f.cur.Len() > 0 {
			f.pendingSpace = f.pendingSpace || strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
		}
		f.place(trimmed)
	}
	if blanks > 1 {
		f.pendingBlank = blanks - 1
	}
	// keep the word gap before a following inline element
	if strings.HasSuffix(tok.Text, " ") || strings.HasSuffix(tok.Text, "\t") {
		f.pendingSpace = f.cur.Len() > 0
	}
}

func (f *Formatter) handleOpen(tok Token) {
	inline := isInlineTag(tok.Name)
	if inline {
		f.place(f.renderTagInline(tok))
	} else {
		f.ownLine(f.renderTag(tok, f.depth), f.depth)
	}
	f.stack = append(f.stack, stackEntry{
		name:   tok.Name,
		kind:   KindHTMLOpen,
		inline: inline,
		tok:    tok,
	})
	if !inline {
		f.depth++
	}
}

func (f *Formatter) handleVoid(tok Token) {
	if isInlineTag(tok.Name) && f.cur.Len() > 0 {
		f.place(f.renderTagInline(tok))
		return
	}
	f.ownLine(f.renderTag(tok, f.depth), f.depth)
}

func (f *Formatter) handleClose(tok Token) {
	idx := f.findOpen(tok.Name)
	if idx < 0 {
		// close without a matching open: leave the stack alone and emit the
		// text where it stands
		f.reportOrphan(tok)
		if isInlineTag(tok.Name) {
			f.place(tok.Text)
		} else {
			f.ownLine("</"+tok.Name+">", f.depth)
		}
		return
	}

	// anything above the match was never closed
	for i := len(f.stack) - 1; i > idx; i-- {
		f.reportOrphan(f.stack[i].tok)
		if !f.stack[i].inline {
			f.decDepth()
		}
	}
	entry := f.stack[idx]
	f.stack = f.stack[:idx]

	if entry.inline {
		f.place("</" + tok.Name + ">")
		return
	}
	f.decDepth()
	f.ownLine("</"+tok.Name+">", f.depth)
}

func (f *Formatter) handleComment(tok Token) {
	if strings.Contains(tok.Text, "djlint:off") {
		// keep the comment in cur so the newline that follows it in the
		// source terminates this line, not a duplicate one
		f.flushLine()
		f.emitBlanks()
		f.cur.WriteString(f.indent(f.depth))
		f.cur.WriteString(tok.Text)
		f.verbatim = true
		return
	}
	f.place(tok.Text)
}

func (f *Formatter) handleBlockOpen(tok Token) {
	f.ownLine(f.normalizeTemplateTag(tok), f.depth)
	raw := false
	if r := tok.Dialect.Rules(); r != nil {
		raw = r.IsRaw(tok.Name)
	}
	f.stack = append(f.stack, stackEntry{
		name:    tok.Name,
		kind:    KindTemplateBlockOpen,
		raw:     raw,
		dialect: tok.Dialect,
		tok:     tok,
	})
	f.depth++
}

func (f *Formatter) handleBlockClose(tok Token) {
	idx := f.findBlockOpen(tok)
	if idx < 0 {
		f.reportOrphan(tok)
		f.ownLine(f.normalizeTemplateTag(tok), f.depth)
		return
	}
	for i := len(f.stack) - 1; i > idx; i-- {
		f.reportOrphan(f.stack[i].tok)
		if !f.stack[i].inline {
			f.decDepth()
		}
	}
	f.stack = f.stack[:idx]
	f.decDepth()
	f.ownLine(f.normalizeTemplateTag(tok), f.depth)
}

func (f *Formatter) handleExpression(tok Token) {
	text := f.normalizeTemplateTag(tok)
	if tok.Role == RoleContinue {
		// {% else %} sits at the parent depth without touching the stack
		depth := f.depth - 1
		if depth < 0 {
			depth = 0
		}
		f.ownLine(text, depth)
		return
	}
	f.place(text)
}

func (f *Formatter) handleEmbedded(tok Token) {
	kind := EmbeddedStyle
	if tok.Kind == KindEmbeddedScript {
		kind = EmbeddedScript
	}
	body := strings.TrimSpace(tok.Text)
	if body == "" {
		return
	}

	formatted, err := f.sub.Format(body, kind)
	if err != nil {
		// invalid embedded code passes through unchanged
		f.diags = append(f.diags, Diagnostic{
			Rule:     "H034",
			Message:  "Embedded " + kind.String() + " could not be formatted; left as-is.",
			Line:     tok.Line,
			Col:      tok.Col,
			Severity: SeverityInfo,
		})
		formatted = body
	}

	f.flushLine()
	prefix := f.indent(f.depth)
	for _, line := range strings.Split(strings.TrimRight(formatted, "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			f.lines = append(f.lines, "")
			continue
		}
		f.lines = append(f.lines, prefix+line)
	}
}

// --- stack helpers ----------------------------------------------------

func (f *Formatter) top() *stackEntry {
	if len(f.stack) == 0 {
		return nil
	}
	return &f.stack[len(f.stack)-1]
}

func (f *Formatter) decDepth() {
	if f.depth > 0 {
		f.depth--
	}
}

// findOpen locates the innermost open HTML element with the given name.
// Matching is by name, not merely by kind, so </div> cannot close <p>.
func (f *Formatter) findOpen(name string) int {
	for i := len(f.stack) - 1; i >= 0; i-- {
		if f.stack[i].kind == KindHTMLOpen && f.stack[i].name == name {
			return i
		}
	}
	return -1
}

// findBlockOpen locates the innermost template block the closing statement
// terminates, per the dialect's close semantics.
func (f *Formatter) findBlockOpen(tok Token) int {
	rules := tok.Dialect.Rules()
	for i := len(f.stack) - 1; i >= 0; i-- {
		e := f.stack[i]
		if e.kind != KindTemplateBlockOpen || e.dialect != tok.Dialect {
			continue
		}
		if rules != nil && rules.CloseMatches(e.name, tok.Name) {
			return i
		}
	}
	return -1
}

func (f *Formatter) reportOrphan(tok Token) {
	label := truncateLabel(tok.Text, 20)
	f.diags = append(f.diags, Diagnostic{
		Rule:     "H025",
		Message:  "Tag seems to be an orphan: " + label,
		Line:     tok.Line,
		Col:      tok.Col,
		Severity: SeverityWarning,
	})
}

// --- rendering --------------------------------------------------------

func isInlineTag(name string) bool {
	_, ok := inlineTags[name]
	return ok
}

func (f *Formatter) renderTagInline(tok Token) string {
	return f.renderTagSingle(tok)
}

func (f *Formatter) renderTagSingle(tok Token) string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(tok.Name)
	for _, a := range tok.Attrs {
		b.WriteByte(' ')
		b.WriteString(renderAttr(a))
	}
	if tok.SelfClosing {
		b.WriteString(" />")
	} else {
		b.WriteByte('>')
	}
	return b.String()
}

// renderTag renders an open/void tag, wrapping long attribute lists with a
// greedy fill: attributes stay on the current line while it is under the
// length threshold, then continue on an indented line.
func (f *Formatter) renderTag(tok Token, depth int) string {
	if tok.Name == "doctype" {
		return tok.Text
	}
	single := f.renderTagSingle(tok)
	attrsLen := len(single) - len(tok.Name) - 2
	if len(f.indent(depth))+len(single) <= f.cfg.MaxLineLength &&
		attrsLen <= f.cfg.MaxAttributeLength {
		return single
	}

	contIndent := f.indent(depth) + strings.Repeat(" ", f.cfg.IndentWidth)
	var lines []string
	cur := f.indent(depth) + "<" + tok.Name
	for _, a := range tok.Attrs {
		rendered := renderAttr(a)
		if len(cur)+1+len(rendered) > f.cfg.MaxLineLength && strings.ContainsRune(cur, ' ') {
			lines = append(lines, cur)
			cur = contIndent + rendered
			continue
		}
		cur += " " + rendered
	}
	if tok.SelfClosing {
		cur += " />"
	} else {
		cur += ">"
	}
	lines = append(lines, cur)

	// ownLine adds the first line's indent itself
	lines[0] = strings.TrimPrefix(lines[0], f.indent(depth))
	return strings.Join(lines, "\n")
}

// normalizeTemplateTag canonicalizes spacing inside template delimiters:
// {%if x%} becomes {% if x %}. Handlebars and Go templates keep their
// source spelling.
func (f *Formatter) normalizeTemplateTag(tok Token) string {
	rules := tok.Dialect.Rules()
	if rules == nil || rules.Statement == nil {
		return tok.Text
	}
	switch tok.Kind {
	case KindTemplateBlockOpen, KindTemplateBlockClose, KindTemplateExpression:
	default:
		return tok.Text
	}

	open, close := rules.Expression.Open, rules.Expression.Close
	if strings.HasPrefix(tok.Text, rules.Statement.Open) {
		open, close = rules.Statement.Open, rules.Statement.Close
	} else if strings.HasPrefix(tok.Text, open+"{") {
		// triple-stache raw output: inner braces are syntax, not spacing
		return tok.Text
	} else if !strings.HasPrefix(tok.Text, open) || !strings.HasSuffix(tok.Text, close) {
		return tok.Text
	}
	if !strings.HasSuffix(tok.Text, close) || len(tok.Text) < len(open)+len(close) {
		return tok.Text
	}

	inner := tok.Text[len(open) : len(tok.Text)-len(close)]
	lead := takeModifiers(inner)
	inner = inner[len(lead):]
	trail := takeTrailingModifiers(inner)
	inner = inner[:len(inner)-len(trail)]

	body := strings.Join(strings.Fields(inner), " ")
	if body == "" {
		return open + lead + trail + close
	}
	return open + lead + " " + body + " " + trail + close
}

func takeModifiers(s string) string {
	i := 0
	for i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	return s[:i]
}

func takeTrailingModifiers(s string) string {
	i := len(s)
	for i > 0 && (s[i-1] == '-' || s[i-1] == '+') {
		i--
	}
	return s[i:]
}
