package djlint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDialect(t *testing.T) {
	testCases := []struct {
		in   string
		want Dialect
	}{
		{"django", DialectDjango},
		{"Jinja", DialectJinja},
		{"jinja2", DialectJinja},
		{"nunjucks", DialectNunjucks},
		{"twig", DialectTwig},
		{"handlebars", DialectHandlebars},
		{"mustache", DialectHandlebars},
		{"golang", DialectGoTemplate},
		{"go", DialectGoTemplate},
		{"gotemplate", DialectGoTemplate},
		{"angular", DialectAngular},
		{" django ", DialectDjango},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			d, err := ParseDialect(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, d)
		})
	}

	_, err := ParseDialect("php")
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	django := DialectDjango.Rules()
	assert.Equal(t, RoleOpen, django.Classify("if"))
	assert.Equal(t, RoleClose, django.Classify("endif"))
	assert.Equal(t, RoleContinue, django.Classify("else"))
	assert.Equal(t, RoleContinue, django.Classify("elif"))
	assert.Equal(t, RoleContinue, django.Classify("empty"))
	assert.Equal(t, RoleNone, django.Classify("include"))
	assert.Equal(t, RoleNone, django.Classify("endsomething"))

	golang := DialectGoTemplate.Rules()
	assert.Equal(t, RoleOpen, golang.Classify("range"))
	assert.Equal(t, RoleClose, golang.Classify("end"))
	assert.Equal(t, RoleContinue, golang.Classify("else"))
	assert.Equal(t, RoleNone, golang.Classify("printf"))
}

func TestCloseMatches(t *testing.T) {
	django := DialectDjango.Rules()
	assert.True(t, django.CloseMatches("if", "endif"))
	assert.True(t, django.CloseMatches("block", "endblock"))
	assert.False(t, django.CloseMatches("if", "endfor"))

	hb := DialectHandlebars.Rules()
	assert.True(t, hb.CloseMatches("each", "each"))
	assert.False(t, hb.CloseMatches("each", "if"))

	golang := DialectGoTemplate.Rules()
	assert.True(t, golang.CloseMatches("if", "end"))
	assert.True(t, golang.CloseMatches("range", "end"))
	assert.False(t, golang.CloseMatches("if", "endif"))
}

func TestIsRaw(t *testing.T) {
	assert.True(t, DialectDjango.Rules().IsRaw("verbatim"))
	assert.True(t, DialectDjango.Rules().IsRaw("comment"))
	assert.True(t, DialectJinja.Rules().IsRaw("raw"))
	assert.False(t, DialectDjango.Rules().IsRaw("if"))
}

func TestDialectStrings(t *testing.T) {
	for _, d := range AllDialects {
		name := d.String()
		require.NotEmpty(t, name)
		parsed, err := ParseDialect(name)
		require.NoError(t, err)
		assert.Equal(t, d, parsed)
	}
}
