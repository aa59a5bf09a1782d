package pipeline

import (
	"log/slog"

	"github.com/pagemigrate/pagemigrate/pkg/logging"
)

// Library is the capability every function library implements, built-in or
// contributed by a plugin. Functions maps each exposed function name to a
// Go function taking string arguments (optionally variadic) and returning
// one of string, bool, map[string]string or Value, optionally followed by
// an error. A Callable is accepted as is.
type Library interface {
	Functions() map[string]any
}

// Factory constructs a function library for one transformation run. The
// built-in library and every plugin share this constructor contract.
type Factory func(env *Environment) (Library, error)

// Environment is the transformation-context bundle handed to library
// constructors. The pipeline forwards it without looking inside.
type Environment struct {
	// Context describes the transformation as a whole.
	Context any
	// Source and Target are the session handles of the legacy and the
	// modern site.
	Source any
	Target any
	// Control is the control being transformed.
	Control any
	// Observers receive the log records of the run.
	Observers []slog.Handler
}

// Logger returns a logger writing to the environment's observers.
func (e *Environment) Logger() *slog.Logger {
	if e == nil {
		return logging.Nop()
	}
	return logging.ForObservers(e.Observers...)
}
