package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagemigrate/pagemigrate/pkg/mapping"
)

func TestValidate(t *testing.T) {
	e := newTestExecutor(t, nil)
	tmpl := &mapping.Template{
		Type: "Image",
		Properties: []mapping.PropertyMapping{
			{Name: "Url", Functions: "ReturnServerRelativePath({Url}); {Name} = ReturnFileName({Url})"},
			{Name: "Title", Functions: "ToUpper({Title}"},
			{Name: "Alt", Functions: "Contoso.AltText({Title})"},
			{Name: "Caption", Functions: "Fn('open"},
		},
		Selector: "Equals({Kind}, 'x')",
	}

	problems := Validate(tmpl, e.Dispatcher())
	require.Len(t, problems, 3)

	assert.Equal(t, "Title", problems[0].Property)
	assert.False(t, problems[0].Warning)
	assert.True(t, errors.Is(problems[0].Err, ErrUnbalanced))

	assert.Equal(t, "Alt", problems[1].Property)
	assert.True(t, problems[1].Warning)
	assert.Contains(t, problems[1].String(), "warning: Image.Alt")

	assert.Equal(t, "Caption", problems[2].Property)
	assert.ErrorIs(t, problems[2].Err, ErrUnbalanced)
}

func TestValidate_NilDispatcherChecksSyntaxOnly(t *testing.T) {
	tmpl := &mapping.Template{Type: "X", Selector: "Anything({A})"}
	assert.Empty(t, Validate(tmpl, nil))

	tmpl.Selector = "Anything"
	problems := Validate(tmpl, nil)
	require.Len(t, problems, 1)
	assert.Equal(t, "error: X selector: "+problems[0].Err.Error(), problems[0].String())
}

func TestValidate_MalformedNameIsError(t *testing.T) {
	e := newTestExecutor(t, nil)
	tmpl := &mapping.Template{
		Type:       "X",
		Properties: []mapping.PropertyMapping{{Name: "O", Functions: "{O} = To Upper({A})"}},
	}

	problems := Validate(tmpl, e.Dispatcher())
	require.Len(t, problems, 1)
	assert.False(t, problems[0].Warning)
	assert.ErrorIs(t, problems[0].Err, ErrInvalidName)
}
