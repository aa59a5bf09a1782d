package pipeline

import (
	"fmt"
)

// Dispatcher routes parsed functions to the built-in library or to a
// plugin. Function tables are bound when the dispatcher is built; lookups
// are plain map reads.
type Dispatcher struct {
	builtin map[string]Callable
	plugins *Registry
}

// NewDispatcher binds the built-in library. plugins may be nil.
func NewDispatcher(builtin Library, plugins *Registry) (*Dispatcher, error) {
	table, err := bindLibrary(builtin)
	if err != nil {
		return nil, fmt.Errorf("built-in library: %w", err)
	}
	if plugins == nil {
		plugins = NewRegistry()
	}
	return &Dispatcher{builtin: table, plugins: plugins}, nil
}

// Lookup finds the callable for plugin and name. Function names match
// exactly; plugin names ignore case. An unqualified name only ever
// resolves against the built-in library, a qualified one only against its
// plugin.
func (d *Dispatcher) Lookup(pluginName, name string) (Callable, bool) {
	if pluginName == "" {
		fn, ok := d.builtin[name]
		return fn, ok
	}
	p, ok := d.plugins.Get(pluginName)
	if !ok {
		return nil, false
	}
	fn, ok := p.funcs[name]
	return fn, ok
}

// Call invokes def with its resolved arguments. found is false when no
// library provides the function; that is not an error. Failures raised by
// the function come back as *CallError. A panicking plugin function is
// recovered into a *CallError; built-in functions are not guarded.
func (d *Dispatcher) Call(def *FunctionDefinition) (v Value, found bool, err error) {
	fn, ok := d.Lookup(def.Plugin, def.Name)
	if !ok {
		return None, false, nil
	}

	if def.Plugin != "" {
		defer func() {
			if r := recover(); r != nil {
				v, found = None, true
				err = &CallError{Plugin: def.Plugin, Function: def.Name, Panicked: true, Err: fmt.Errorf("%v", r)}
			}
		}()
	}

	v, err = fn(def.Arguments())
	if err != nil {
		return None, true, &CallError{Plugin: def.Plugin, Function: def.Name, Err: err}
	}
	return v, true, nil
}

// BuiltIns returns the built-in function names, sorted.
func (d *Dispatcher) BuiltIns() []string {
	return names(d.builtin)
}

// Plugins returns the plugin registry.
func (d *Dispatcher) Plugins() *Registry {
	return d.plugins
}
