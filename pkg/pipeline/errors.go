package pipeline

import (
	"fmt"
	"strings"
)

// Error is a simple error type for pipeline errors.
// It allows defining sentinel errors as constants.
type Error string

// Error implements the error interface.
func (e Error) Error() string { return string(e) }

// Sentinel errors. The structured errors below wrap one of these so callers
// can branch with errors.Is.
const (
	// ErrEmptyExpression is returned for a blank function expression.
	ErrEmptyExpression = Error("empty function expression")

	// ErrNoArgumentList is returned when an expression has no "(...)".
	ErrNoArgumentList = Error("function expression has no argument list")

	// ErrUnbalanced is returned for mismatched parentheses, braces or quotes.
	ErrUnbalanced = Error("unbalanced function expression")

	// ErrEmptyName is returned for a missing function, plugin or output name.
	ErrEmptyName = Error("missing name in function expression")

	// ErrInvalidName is returned when a function or plugin name is not an
	// identifier.
	ErrInvalidName = Error("invalid name in function expression")

	// ErrEmptyArgument is returned for an empty slot in an argument list.
	ErrEmptyArgument = Error("empty argument in function expression")

	// ErrUnresolvedParameter is returned when a required property reference
	// cannot be resolved on a statically typed template.
	ErrUnresolvedParameter = Error("unresolved function parameter")

	// ErrArity is returned when the argument count does not fit the target
	// function.
	ErrArity = Error("wrong number of function arguments")

	// ErrPluginLoad is wrapped by every LoadError.
	ErrPluginLoad = Error("plugin load failed")

	// ErrDuplicatePlugin is returned when two declarations share a name,
	// ignoring case.
	ErrDuplicatePlugin = Error("duplicate plugin name")

	// ErrInvalidFunction is returned when a library exposes a value that
	// cannot be bound as a function.
	ErrInvalidFunction = Error("invalid function signature")
)

// ParseError reports a malformed or unresolvable function expression. It is
// fatal to the transformation of the current control.
type ParseError struct {
	Expression string
	Function   string
	Parameter  string
	Err        error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if e.Parameter != "" {
		fmt.Fprintf(&b, ": parameter %q", e.Parameter)
	}
	if e.Function != "" {
		fmt.Fprintf(&b, " of function %q", e.Function)
	}
	if e.Expression != "" {
		fmt.Fprintf(&b, " in %q", e.Expression)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// LoadError reports a plugin that could not be resolved, opened or
// constructed. It is fatal to the whole run.
type LoadError struct {
	Plugin   string
	Path     string
	TypeName string
	Err      error
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("%s: plugin %q", ErrPluginLoad, e.Plugin)
	if e.TypeName != "" {
		msg += fmt.Sprintf(" (type %s", e.TypeName)
		if e.Path != "" {
			msg += " from " + e.Path
		}
		msg += ")"
	}
	return msg + ": " + e.Err.Error()
}

func (e *LoadError) Unwrap() []error { return []error{ErrPluginLoad, e.Err} }

// CallError reports a function that failed while running: it returned an
// error, received the wrong number of arguments or, for plugin functions,
// panicked. It is propagated to the caller unchanged.
type CallError struct {
	Plugin   string
	Function string
	Panicked bool
	Err      error
}

func (e *CallError) Error() string {
	name := e.Function
	if e.Plugin != "" {
		name = e.Plugin + "." + e.Function
	}
	if e.Panicked {
		return fmt.Sprintf("function %s panicked: %v", name, e.Err)
	}
	return fmt.Sprintf("function %s: %v", name, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }
