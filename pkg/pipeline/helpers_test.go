package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pagemigrate/pagemigrate/pkg/mapping"
)

// funcs is a Library backed by a literal function table.
type funcs map[string]any

func (f funcs) Functions() map[string]any { return f }

func factoryOf(lib Library) Factory {
	return func(*Environment) (Library, error) { return lib, nil }
}

// newTestExecutor builds an executor over the built-in library and the given
// compiled-in plugins, keyed by plugin name.
func newTestExecutor(t *testing.T, plugins map[string]Library) *Executor {
	t.Helper()

	catalog := NewCatalog()
	var decls []mapping.PluginDeclaration
	for name, lib := range plugins {
		typeName := "test." + name
		require.NoError(t, catalog.Add(typeName, factoryOf(lib)))
		decls = append(decls, mapping.PluginDeclaration{Name: name, TypeName: typeName})
	}

	run, err := NewRun(&Environment{}, decls, WithPluginLoader(NewLoader(WithCatalog(catalog))))
	require.NoError(t, err)
	return run.Executor
}
