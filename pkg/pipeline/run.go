package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/pagemigrate/pagemigrate/internal/id"
	"github.com/pagemigrate/pagemigrate/pkg/mapping"
)

// Run is one transformation run: the built-in library and the plugins
// constructed for it, and the executor dispatching to them.
type Run struct {
	ID       string
	Env      *Environment
	Executor *Executor

	logger *slog.Logger
}

type runConfig struct {
	loader  *Loader
	builtin Factory
}

// RunOption configures NewRun.
type RunOption func(*runConfig)

// WithPluginLoader sets the loader used for plugin declarations. Its logs
// are tagged with the run id.
func WithPluginLoader(l *Loader) RunOption {
	return func(c *runConfig) {
		c.loader = l
	}
}

// WithBuiltIn replaces the built-in library factory.
func WithBuiltIn(f Factory) RunOption {
	return func(c *runConfig) {
		c.builtin = f
	}
}

// NewRun starts a transformation run: it constructs the built-in library
// and every declared plugin with env. A plugin that fails to load aborts
// the run.
func NewRun(env *Environment, decls []mapping.PluginDeclaration, opts ...RunOption) (*Run, error) {
	if env == nil {
		env = &Environment{}
	}
	runID := id.Run()
	logger := env.Logger().With("run", runID)

	cfg := runConfig{builtin: NewBuiltIn}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.loader == nil {
		cfg.loader = NewLoader()
	}
	loader := cfg.loader.forRun(runID, logger)

	builtin, err := construct(cfg.builtin, env)
	if err != nil {
		return nil, fmt.Errorf("built-in library: %w", err)
	}
	plugins, err := loader.Load(env, decls)
	if err != nil {
		return nil, err
	}
	d, err := NewDispatcher(builtin, plugins)
	if err != nil {
		return nil, err
	}

	logger.Info("transformation run started", "plugins", plugins.Len())
	return &Run{
		ID:       runID,
		Env:      env,
		Executor: NewExecutor(d, WithLogger(logger)),
		logger:   logger,
	}, nil
}

// Transform runs the executor of this run on one control.
func (r *Run) Transform(t *mapping.Template, control map[string]string) (*Result, error) {
	return r.Executor.Transform(t, control)
}

// Logger returns the run's logger.
func (r *Run) Logger() *slog.Logger {
	return r.logger
}
