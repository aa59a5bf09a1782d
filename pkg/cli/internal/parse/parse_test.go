package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyValue(t *testing.T) {
	k, v, ok := KeyValue("Title=a=b")
	assert.True(t, ok)
	assert.Equal(t, "Title", k)
	assert.Equal(t, "a=b", v)

	_, _, ok = KeyValue("nodelimiter")
	assert.False(t, ok)

	k, v, ok = KeyValue("Host: x", ':')
	assert.True(t, ok)
	assert.Equal(t, "Host", k)
	assert.Equal(t, " x", v)
}

func TestAssignments(t *testing.T) {
	got, err := Assignments([]string{" Title =Hello", "Empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Title": "Hello", "Empty": ""}, got)

	_, err = Assignments([]string{"=x"})
	assert.Error(t, err)
	_, err = Assignments([]string{"novalue"})
	assert.Error(t, err)
}

func TestSplitTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitTrim(" a, ,b ", ","))
	assert.Nil(t, SplitTrim("", ","))
}
