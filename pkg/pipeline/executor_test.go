package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagemigrate/pagemigrate/pkg/mapping"
)

func TestTransform_RoundTrip(t *testing.T) {
	e := newTestExecutor(t, nil)
	tmpl := &mapping.Template{
		Type: "ContentEditor",
		Properties: []mapping.PropertyMapping{
			{Name: "Title", Functions: "{Heading} = ToUpper({Title})"},
			{Name: "Body", Functions: "{Body} = HtmlEncode({Body})"},
		},
	}

	res, err := e.Transform(tmpl, map[string]string{"Title": "Sales", "Body": "<b>x</b>"})
	require.NoError(t, err)
	assert.Equal(t, "SALES", res.Properties["Heading"])
	assert.Equal(t, "Sales", res.Properties["Title"])
	assert.Equal(t, "&lt;b&gt;x&lt;/b&gt;", res.Properties["Body"])
	assert.Equal(t, []string{"Heading"}, res.Added)
}

func TestTransform_ImplicitOutputOverwritesProperty(t *testing.T) {
	e := newTestExecutor(t, nil)
	tmpl := &mapping.Template{
		Type:       "ContentEditor",
		Properties: []mapping.PropertyMapping{{Name: "Title", Functions: "ToLower({Title}); Prefix('x-', {Title})"}},
	}

	res, err := e.Transform(tmpl, map[string]string{"title": "ABC"})
	require.NoError(t, err)
	assert.Equal(t, "x-abc", res.Properties["title"])
	assert.Empty(t, res.Added)
}

func TestTransform_OrderDependency(t *testing.T) {
	e := newTestExecutor(t, nil)
	producer := mapping.PropertyMapping{Name: "Title", Functions: "{Derived} = ToUpper({Title})"}
	consumer := mapping.PropertyMapping{Name: "Summary", Functions: "{Summary} = Prefix('T: ', {Derived})"}
	control := map[string]string{"Title": "news"}

	t.Run("declaration order", func(t *testing.T) {
		tmpl := &mapping.Template{Type: "X", Properties: []mapping.PropertyMapping{producer, consumer}}
		res, err := e.Transform(tmpl, control)
		require.NoError(t, err)
		assert.Equal(t, "T: NEWS", res.Properties["Summary"])
	})

	t.Run("reversed order", func(t *testing.T) {
		tmpl := &mapping.Template{Type: "X", Properties: []mapping.PropertyMapping{consumer, producer}}
		_, err := e.Transform(tmpl, control)
		require.ErrorIs(t, err, ErrUnresolvedParameter)

		var pe *ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "Derived", pe.Parameter)
	})
}

func TestTransform_DoesNotMutateInputs(t *testing.T) {
	e := newTestExecutor(t, nil)
	tmpl := &mapping.Template{
		Type:       "X",
		Properties: []mapping.PropertyMapping{{Name: "Url", Functions: "SplitUrl({Url})"}},
	}
	control := map[string]string{"Url": "https://contoso.com/sites/a/doc.aspx"}

	res, err := e.Transform(tmpl, control)
	require.NoError(t, err)
	assert.Len(t, tmpl.Properties, 1)
	assert.Len(t, control, 1)
	assert.Len(t, res.Template.Properties, 5)
}

func TestTransform_UnknownFunctionIsSoftNoOp(t *testing.T) {
	e := newTestExecutor(t, nil)
	tmpl := &mapping.Template{
		Type: "X",
		Properties: []mapping.PropertyMapping{
			{Name: "A", Functions: "{New} = DoesNotExist({A})"},
			{Name: "B", Functions: "Missing.Fn({B})"},
		},
	}

	res, err := e.Transform(tmpl, map[string]string{"A": "1", "B": "2"})
	require.NoError(t, err)
	assert.NotContains(t, res.Properties, "New")
	assert.Equal(t, "2", res.Properties["B"])
	assert.Empty(t, res.Added)
}

func TestTransform_MalformedNameIsFatal(t *testing.T) {
	e := newTestExecutor(t, nil)
	for _, expr := range []string{"{O} = = ToUpper({A})", "{O} = To Upper({A})", "{O} = ToUpper{A}({A})"} {
		tmpl := &mapping.Template{
			Type:       "X",
			Properties: []mapping.PropertyMapping{{Name: "A", Functions: expr}},
		}
		_, err := e.Transform(tmpl, map[string]string{"A": "v"})
		var pe *ParseError
		require.ErrorAs(t, err, &pe, expr)
		assert.ErrorIs(t, err, ErrInvalidName, expr)
	}
}

func TestTransform_PluginDispatchBeatsBuiltIn(t *testing.T) {
	e := newTestExecutor(t, map[string]Library{
		"Contoso": funcs{"ToUpper": func(s string) string { return "plugin:" + s }},
	})
	tmpl := &mapping.Template{
		Type: "X",
		Properties: []mapping.PropertyMapping{
			{Name: "A", Functions: "{P} = contoso.ToUpper({A}); {B} = ToUpper({A})"},
		},
	}

	res, err := e.Transform(tmpl, map[string]string{"A": "v"})
	require.NoError(t, err)
	assert.Equal(t, "plugin:v", res.Properties["P"])
	assert.Equal(t, "V", res.Properties["B"])
}

func TestTransform_MultiOutput(t *testing.T) {
	e := newTestExecutor(t, nil)
	tmpl := &mapping.Template{
		Type: "Image",
		Properties: []mapping.PropertyMapping{
			{Name: "ImageUrl", Functions: "SplitUrl({ImageUrl})"},
			{Name: "UrlHost", Type: "string"},
		},
	}

	res, err := e.Transform(tmpl, map[string]string{"ImageUrl": "https://contoso.com/img/logo.png?v=1"})
	require.NoError(t, err)
	assert.Equal(t, "https", res.Properties["UrlScheme"])
	assert.Equal(t, "contoso.com", res.Properties["UrlHost"])
	assert.Equal(t, "/img/logo.png", res.Properties["UrlPath"])
	assert.Equal(t, "logo.png", res.Properties["UrlFileName"])

	// UrlHost was declared, so only the others are appended.
	assert.Equal(t, []string{"UrlFileName", "UrlPath", "UrlScheme"}, res.Added)
	names := make([]string, len(res.Template.Properties))
	for i, p := range res.Template.Properties {
		names[i] = p.Name
		if i >= 2 {
			assert.Equal(t, mapping.TypeString, p.Type)
			assert.Empty(t, p.Functions)
		}
	}
	assert.Equal(t, []string{"ImageUrl", "UrlHost", "UrlFileName", "UrlPath", "UrlScheme"}, names)
}

func TestTransform_MultiOutputSkipsUnnamedEntries(t *testing.T) {
	e := newTestExecutor(t, map[string]Library{
		"Contoso": funcs{"Split": func(string) map[string]string {
			return map[string]string{"": "lost", " ": "lost", "k": "v"}
		}},
	})
	tmpl := &mapping.Template{
		Type:       "X",
		Properties: []mapping.PropertyMapping{{Name: "A", Functions: "Contoso.Split({A})"}},
	}

	res, err := e.Transform(tmpl, map[string]string{"A": "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"k"}, res.Added)
	assert.Equal(t, map[string]string{"A": "x", "k": "v"}, res.Properties)
	require.Len(t, res.Template.Properties, 2)
	assert.Equal(t, "k", res.Template.Properties[1].Name)
}

func TestTransform_CaseCollidingControlIsStable(t *testing.T) {
	e := newTestExecutor(t, nil)
	tmpl := &mapping.Template{
		Type:       "X",
		Dynamic:    true,
		Properties: []mapping.PropertyMapping{{Name: "Out", Functions: "{Out} = StaticString({title})"}},
	}
	control := map[string]string{"Title": "a", "title": "b"}

	for i := 0; i < 100; i++ {
		res, err := e.Transform(tmpl, control)
		require.NoError(t, err)
		require.Equal(t, "a", res.Properties["Out"], "iteration %d", i)
	}
}

func TestTransform_BoolsAreLowercase(t *testing.T) {
	e := newTestExecutor(t, nil)
	tmpl := &mapping.Template{
		Type: "X",
		Properties: []mapping.PropertyMapping{
			{Name: "Show", Type: "bool", Functions: "ReturnTrue()"},
			{Name: "Empty", Functions: "{Empty} = IsEmpty({Title})"},
		},
	}

	res, err := e.Transform(tmpl, map[string]string{"Title": "t"})
	require.NoError(t, err)
	assert.Equal(t, "true", res.Properties["Show"])
	assert.Equal(t, "false", res.Properties["Empty"])
}

func TestTransform_DeclaredButUnsetResolvesEmpty(t *testing.T) {
	e := newTestExecutor(t, nil)
	tmpl := &mapping.Template{
		Type: "X",
		Properties: []mapping.PropertyMapping{
			{Name: "Description"},
			{Name: "Text", Functions: "{Text} = Coalesce({Description}, 'none')"},
		},
	}

	res, err := e.Transform(tmpl, nil)
	require.NoError(t, err)
	assert.Equal(t, "none", res.Properties["Text"])
}

func TestTransform_DynamicTemplate(t *testing.T) {
	e := newTestExecutor(t, nil)
	tmpl := &mapping.Template{
		Type:       "ClientSideWebPart",
		Dynamic:    true,
		Properties: []mapping.PropertyMapping{{Name: "Json", Functions: "{Id} = Coalesce({Unknown}, 'fallback')"}},
	}

	res, err := e.Transform(tmpl, nil)
	require.NoError(t, err)
	assert.Equal(t, "fallback", res.Properties["Id"])
}

func TestTransform_Selector(t *testing.T) {
	e := newTestExecutor(t, nil)

	t.Run("string result", func(t *testing.T) {
		tmpl := &mapping.Template{
			Type:       "ListView",
			Properties: []mapping.PropertyMapping{{Name: "Kind"}},
			Selector:   "ToLower({Kind})",
			Mappings:   []mapping.MappingOption{{Name: "default", Default: true}, {Name: "library"}},
		}
		res, err := e.Transform(tmpl, map[string]string{"Kind": "Library"})
		require.NoError(t, err)
		assert.True(t, res.HasSelector)
		assert.Equal(t, "library", res.Selector)
		assert.NotContains(t, res.Properties, SelectorOutput)

		opt, ok := res.Template.SelectMapping(res.Selector)
		require.True(t, ok)
		assert.Equal(t, "library", opt.Name)
	})

	t.Run("bool result", func(t *testing.T) {
		tmpl := &mapping.Template{Type: "X", Selector: "ReturnFalse()"}
		sel, ok, err := e.Select(tmpl, nil)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "false", sel)
	})

	t.Run("unknown function", func(t *testing.T) {
		tmpl := &mapping.Template{Type: "X", Selector: "Nope()"}
		res, err := e.Transform(tmpl, nil)
		require.NoError(t, err)
		assert.False(t, res.HasSelector)
	})

	t.Run("no selector", func(t *testing.T) {
		res, err := e.Transform(&mapping.Template{Type: "X"}, nil)
		require.NoError(t, err)
		assert.False(t, res.HasSelector)
	})
}

func TestTransform_CallErrors(t *testing.T) {
	boom := errors.New("boom")
	e := newTestExecutor(t, map[string]Library{
		"Bad": funcs{
			"Fail":  func(string) (string, error) { return "", boom },
			"Panic": func(string) string { panic("kaboom") },
		},
	})

	tests := []struct {
		name     string
		expr     string
		panicked bool
		wantErr  error
	}{
		{"returned error", "Bad.Fail({A})", false, boom},
		{"panic", "Bad.Panic({A})", true, nil},
		{"arity", "ToUpper({A}, {A})", false, ErrArity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := &mapping.Template{Type: "X", Properties: []mapping.PropertyMapping{{Name: "A", Functions: tt.expr}}}
			_, err := e.Transform(tmpl, map[string]string{"A": "v"})

			var ce *CallError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.panicked, ce.Panicked)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestTransform_LiteralArguments(t *testing.T) {
	e := newTestExecutor(t, nil)
	tmpl := &mapping.Template{
		Type: "X",
		Properties: []mapping.PropertyMapping{
			{Name: "A", Functions: "{Out} = Concatenate('a,b(c); ', {A})"},
		},
	}

	res, err := e.Transform(tmpl, map[string]string{"A": "z"})
	require.NoError(t, err)
	assert.Equal(t, "a,b(c); z", res.Properties["Out"])
}
