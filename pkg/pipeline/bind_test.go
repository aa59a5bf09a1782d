package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBind_Signatures(t *testing.T) {
	tests := []struct {
		name string
		fn   any
		args []string
		want Value
	}{
		{"callable", Callable(func(args []string) (Value, error) { return String(args[0]), nil }), []string{"a"}, String("a")},
		{"no args", func() string { return "x" }, nil, String("x")},
		{"unary", func(s string) string { return s + "!" }, []string{"a"}, String("a!")},
		{"binary", func(a, b string) string { return a + b }, []string{"a", "b"}, String("ab")},
		{"predicate", func(s string) bool { return s == "" }, []string{""}, Bool(true)},
		{"ternary via reflection", func(a, b, c string) string { return a + b + c }, []string{"a", "b", "c"}, String("abc")},
		{"variadic", func(sep string, parts ...string) string { return sep + parts[0] }, []string{"-", "a", "b"}, String("-a")},
		{"map result", func(string) map[string]string { return map[string]string{"k": "v"} }, []string{"x"}, Map(map[string]string{"k": "v"})},
		{"value and error", func(string) (Value, error) { return Bool(false), nil }, []string{"x"}, Bool(false)},
		{"no result", func(string) {}, []string{"x"}, None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := bind(tt.fn)
			require.NoError(t, err)
			got, err := c(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBind_Rejects(t *testing.T) {
	tests := []struct {
		name string
		fn   any
	}{
		{"not a function", "nope"},
		{"nil function", (func(a, b, c string) string)(nil)},
		{"int parameter", func(int) string { return "" }},
		{"unsupported result", func(string) int { return 0 }},
		{"two results", func() (string, string) { return "", "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bind(tt.fn)
			assert.ErrorIs(t, err, ErrInvalidFunction)
		})
	}
}

func TestBind_Arity(t *testing.T) {
	unary, err := bind(func(s string) string { return s })
	require.NoError(t, err)
	_, err = unary([]string{"a", "b"})
	assert.ErrorIs(t, err, ErrArity)

	ternary, err := bind(func(a, b, c string) string { return a })
	require.NoError(t, err)
	_, err = ternary([]string{"a"})
	assert.ErrorIs(t, err, ErrArity)

	variadic, err := bind(func(a string, rest ...string) string { return a })
	require.NoError(t, err)
	_, err = variadic(nil)
	assert.ErrorIs(t, err, ErrArity)
	_, err = variadic([]string{"a"})
	assert.NoError(t, err)
}

func TestBind_ErrorResult(t *testing.T) {
	boom := errors.New("boom")
	c, err := bind(func(string) (string, error) { return "", boom })
	require.NoError(t, err)
	_, err = c([]string{"x"})
	assert.ErrorIs(t, err, boom)
}
