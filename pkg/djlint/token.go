// token.go defines the token stream shared by the formatter and the linter.
package djlint

import "sort"

// Kind classifies one span of source text.
type Kind int

const (
	KindRawText           Kind = iota // literal text between markup
	KindWhitespace                    // text made of whitespace only
	KindHTMLOpen                      // <div ...>
	KindHTMLClose                     // </div>
	KindVoid                          // <img ...>, <br>, doctype
	KindHTMLComment                   // <!-- ... -->
	KindTemplateBlockOpen             // {% if ... %}, {{#each}}
	KindTemplateBlockClose            // {% endif %}, {{/each}}
	KindTemplateExpression            // {{ name }}, {% include %}
	KindTemplateComment               // {# ... #}, {{!-- --}}
	KindEmbeddedStyle                 // body of a <style> element
	KindEmbeddedScript                // body of a <script> element
)

var kindNames = map[Kind]string{
	KindRawText:            "text",
	KindWhitespace:         "whitespace",
	KindHTMLOpen:           "open_tag",
	KindHTMLClose:          "close_tag",
	KindVoid:               "void_tag",
	KindHTMLComment:        "html_comment",
	KindTemplateBlockOpen:  "block_open",
	KindTemplateBlockClose: "block_close",
	KindTemplateExpression: "expression",
	KindTemplateComment:    "template_comment",
	KindEmbeddedStyle:      "embedded_style",
	KindEmbeddedScript:     "embedded_script",
}

func (k Kind) String() string { return kindNames[k] }

// ParseKind resolves a kind name as used in rule catalog files.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Attr is one HTML attribute in source order. Quote is the quoting byte
// (' or ") or zero for unquoted/standalone attributes.
type Attr struct {
	Name     string
	Value    string
	HasValue bool
	Quote    byte
}

// Token is one classified span of the source document. Tokens are emitted in
// strictly increasing offset order and their Text fields concatenate back to
// the original document.
type Token struct {
	Kind  Kind
	Text  string
	Start int
	End   int
	Line  int // 1-based
	Col   int // 1-based

	// Name holds the lowercased tag name for HTML tokens and the block
	// keyword for template statements.
	Name string
	// Attrs holds parsed attributes for HTML tag tokens, in source order.
	Attrs []Attr
	// Dialect that produced a template token.
	Dialect Dialect
	// Role of a template statement (open/close/continue/none).
	Role BlockRole
	// SelfClosing marks tags written with a trailing slash.
	SelfClosing bool
}

// Attr returns the named attribute, if present.
func (t *Token) Attr(name string) (Attr, bool) {
	for _, a := range t.Attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attr{}, false
}

// HasAttr reports whether the token carries the named attribute.
func (t *Token) HasAttr(name string) bool {
	_, ok := t.Attr(name)
	return ok
}

// fillPositions derives 1-based line/column for every token from its offset.
func fillPositions(source string, tokens []Token) {
	lineStarts := []int{0}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			lineStarts = append(lineStarts, i+1)
		}
	}
	for i := range tokens {
		line := sort.Search(len(lineStarts), func(n int) bool {
			return lineStarts[n] > tokens[i].Start
		})
		tokens[i].Line = line
		tokens[i].Col = tokens[i].Start - lineStarts[line-1] + 1
	}
}
