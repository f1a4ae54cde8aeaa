package djlint

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reformat(t *testing.T, source string, cfg Config) (string, []Diagnostic) {
	t.Helper()
	f := NewFormatter(cfg)
	out := f.Reformat(Tokenize(source, cfg.Dialects))
	return out, f.Diagnostics()
}

func TestReformatBasicNesting(t *testing.T) {
	testCases := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "block elements indent",
			source: "<div><p>hello</p></div>",
			want:   "<div>\n    <p>\n        hello\n    </p>\n</div>\n",
		},
		{
			name:   "inline elements stay in flow",
			source: "<p>Hello <b>world</b>!</p>",
			want:   "<p>\n    Hello <b>world</b>!\n</p>\n",
		},
		{
			name:   "void elements take no depth",
			source: "<div><br><img src=\"x\"></div>",
			want:   "<div>\n    <br>\n    <img src=\"x\">\n</div>\n",
		},
		{
			name:   "template blocks indent",
			source: "{% if user %}<p>{{ user.name }}</p>{% endif %}",
			want:   "{% if user %}\n    <p>\n        {{ user.name }}\n    </p>\n{% endif %}\n",
		},
		{
			name:   "continuation sits at parent depth",
			source: "{% if a %}<p>x</p>{% else %}<p>y</p>{% endif %}",
			want:   "{% if a %}\n    <p>\n        x\n    </p>\n{% else %}\n    <p>\n        y\n    </p>\n{% endif %}\n",
		},
		{
			name:   "handlebars block",
			source: "{{#each items}}<li>{{ this }}</li>{{/each}}",
			want:   "{{#each items}}\n    <li>\n        {{ this }}\n    </li>\n{{/each}}\n",
		},
		{
			name:   "statement spacing normalized",
			source: "{%if x%}{{name}}{%endif%}",
			want:   "{% if x %}\n    {{ name }}\n{% endif %}\n",
		},
		{
			name:   "modifiers stay on delimiters",
			source: "{%- if x -%}a{%- endif -%}",
			want:   "{%- if x -%}\n    a\n{%- endif -%}\n",
		},
		{
			name:   "empty input",
			source: "",
			want:   "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, diags := reformat(t, tc.source, DefaultConfig())
			assert.Equal(t, tc.want, got)
			assert.Empty(t, diags)
		})
	}
}

func TestReformatIdempotent(t *testing.T) {
	sources := []string{
		"<div><p>hello</p></div>",
		"<p>Hello <b>world</b>! <a href=\"/\">home</a></p>",
		"{% if user %}{{ user.name }}{% else %}anon{% endif %}",
		"{{#each items}}<li>{{ this }}</li>{{/each}}",
		"<ul>\n<li>a</li>\n\n\n\n<li>b</li>\n</ul>",
		"{% verbatim %}\n  {{ keep }}\n{% endverbatim %}",
		"<style>p{color:red}</style>",
	}

	cfg := DefaultConfig()
	for _, source := range sources {
		once, _ := reformat(t, source, cfg)
		twice, _ := reformat(t, once, cfg)
		assert.Equal(t, once, twice, "source: %q", source)
	}
}

func TestReformatBlankLineCollapsing(t *testing.T) {
	source := "<p>a</p>\n\n\n\n\n<p>b</p>"

	got, _ := reformat(t, source, DefaultConfig())
	assert.Equal(t, "<p>\n    a\n</p>\n\n<p>\n    b\n</p>\n", got)

	cfg := DefaultConfig()
	cfg.MaxBlankLines = 2
	got, _ = reformat(t, source, cfg)
	assert.Equal(t, "<p>\n    a\n</p>\n\n\n<p>\n    b\n</p>\n", got)
}

func TestReformatOrphans(t *testing.T) {
	t.Run("close without open", func(t *testing.T) {
		got, diags := reformat(t, "</div><p>x</p>", DefaultConfig())
		assert.Equal(t, "</div>\n<p>\n    x\n</p>\n", got)
		require.Len(t, diags, 1)
		assert.Equal(t, "H025", diags[0].Rule)
	})

	t.Run("open without close", func(t *testing.T) {
		_, diags := reformat(t, "<div><p>text", DefaultConfig())
		require.Len(t, diags, 2)
		assert.Equal(t, "H025", diags[0].Rule)
		assert.Equal(t, "H025", diags[1].Rule)
	})

	t.Run("mismatched close skips opens", func(t *testing.T) {
		// </div> closes the outer div; the never-closed <section> is reported
		got, diags := reformat(t, "<div><section>x</div>", DefaultConfig())
		assert.Equal(t, "<div>\n    <section>\n        x\n</div>\n", got)
		require.Len(t, diags, 1)
		assert.Contains(t, diags[0].Message, "section")
	})

	t.Run("depth never goes negative", func(t *testing.T) {
		got, _ := reformat(t, "</div></div></div><p>x</p>", DefaultConfig())
		assert.Contains(t, got, "<p>\n    x\n</p>")
		for _, line := range []string{"</div>"} {
			assert.Contains(t, got, line)
		}
	})
}

func TestReformatAttributeWrapping(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxLineLength = 40
	cfg.MaxAttributeLength = 20

	source := `<input type="text" name="user" class="wide" required>`
	got, diags := reformat(t, source, cfg)

	assert.Empty(t, diags)
	assert.Equal(t, "<input type=\"text\" name=\"user\"\n    class=\"wide\" required>\n", got)

	// short tags stay on one line
	got, _ = reformat(t, `<input type="text">`, cfg)
	assert.Equal(t, "<input type=\"text\">\n", got)
}

func TestReformatQuoting(t *testing.T) {
	// source quoting style survives; unquoted values gain double quotes
	got, _ := reformat(t, `<div id='a' data-n=5 hidden>x</div>`, DefaultConfig())
	assert.Equal(t, "<div id='a' data-n=\"5\" hidden>\n    x\n</div>\n", got)
}

func TestReformatVerbatimRegion(t *testing.T) {
	source := "<!-- djlint:off -->\n<div   >\n  messy\n<!-- djlint:on -->\n<p>x</p>"
	got, _ := reformat(t, source, DefaultConfig())

	assert.Equal(t, "<!-- djlint:off -->\n<div   >\n  messy\n<!-- djlint:on -->\n<p>\n    x\n</p>\n", got)
}

func TestReformatRawBlock(t *testing.T) {
	source := "{% verbatim %}\n  {{x}}\n   <div>\n{% endverbatim %}"
	got, diags := reformat(t, source, DefaultConfig())

	assert.Equal(t, "{% verbatim %}\n  {{x}}\n   <div>\n{% endverbatim %}\n", got)
	assert.Empty(t, diags)
}

func TestReformatTripleStachePreserved(t *testing.T) {
	got, diags := reformat(t, "<div>{{{ raw.html }}}</div>\n", DefaultConfig())
	assert.Empty(t, diags)
	assert.Contains(t, got, "{{{ raw.html }}}")

	// source spelling survives even without inner spacing
	got, _ = reformat(t, "<p>{{{body}}}</p>\n", DefaultConfig())
	assert.Contains(t, got, "{{{body}}}")
}

func TestReformatEmbeddedStyle(t *testing.T) {
	source := "<style>p{color:red;margin:0}</style>"
	got, diags := reformat(t, source, DefaultConfig())

	assert.Empty(t, diags)
	assert.Equal(t, "<style>\n    p{\n        color:red;\n        margin:0\n    }\n</style>\n", got)
}

func TestReformatEmbeddedFailurePassesThrough(t *testing.T) {
	source := "<script>function broken( {</script>"
	got, diags := reformat(t, source, DefaultConfig())

	require.Len(t, diags, 1)
	assert.Equal(t, "H034", diags[0].Rule)
	assert.Equal(t, SeverityInfo, diags[0].Severity)
	assert.Contains(t, got, "function broken( {")
}

func TestReformatCustomEmbeddedFormatter(t *testing.T) {
	f := NewFormatter(DefaultConfig())
	f.SetEmbeddedFormatter(EmbeddedFormatterFunc(func(text string, kind EmbeddedKind) (string, error) {
		if kind == EmbeddedScript {
			return "/* replaced */", nil
		}
		return "", errors.New("no css here")
	}))

	out := f.Reformat(Tokenize("<script>whatever()</script>", nil))
	assert.Contains(t, out, "/* replaced */")
	assert.NotContains(t, out, "whatever")
}

func TestReformatDoctypePreserved(t *testing.T) {
	got, _ := reformat(t, "<!DOCTYPE html><html lang=\"en\"><body>x</body></html>", DefaultConfig())
	assert.Equal(t, "<!DOCTYPE html>\n<html lang=\"en\">\n    <body>\n        x\n    </body>\n</html>\n", got)
}
