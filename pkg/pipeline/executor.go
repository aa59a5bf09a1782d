package pipeline

import (
	"log/slog"
	"strings"

	"github.com/pagemigrate/pagemigrate/pkg/logging"
	"github.com/pagemigrate/pagemigrate/pkg/mapping"
)

// Result is the outcome of transforming one control.
type Result struct {
	// Properties are the control's property values after every pipeline
	// ran, including properties functions introduced.
	Properties map[string]string

	// Template is the template extended with the introduced properties.
	Template *mapping.Template

	// Added lists the introduced property names in the order they appeared.
	Added []string

	// Selector is the selector result; HasSelector is false when the
	// template has no selector or the selector produced no string.
	Selector    string
	HasSelector bool
}

// Executor runs the property pipelines and the selector of templates.
// It keeps no per-control state, so one Executor may serve concurrent
// Transform calls as long as every call has its own template and control.
type Executor struct {
	dispatcher *Dispatcher
	logger     *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithLogger sets the executor's logger.
func WithLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// NewExecutor creates an executor dispatching through d.
func NewExecutor(d *Dispatcher, opts ...ExecutorOption) *Executor {
	e := &Executor{dispatcher: d, logger: logging.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dispatcher returns the executor's dispatcher.
func (e *Executor) Dispatcher() *Dispatcher {
	return e.dispatcher
}

// Transform evaluates t against a control's property values. It runs the
// property phase, every non-empty pipeline in declaration order with its
// functions left to right, and then the selector phase. Neither t nor
// control is modified.
func (e *Executor) Transform(t *mapping.Template, control map[string]string) (*Result, error) {
	ectx := NewEvalContext(t, control)

	for _, prop := range t.Properties {
		if strings.TrimSpace(prop.Functions) == "" {
			continue
		}
		segments, err := SplitPipeline(prop.Functions)
		if err != nil {
			return nil, err
		}
		for _, seg := range segments {
			if err := e.apply(ectx, prop.Name, seg); err != nil {
				e.logger.Error("function pipeline failed",
					"control", t.Type,
					"property", prop.Name,
					"expression", seg,
					"error", err)
				return nil, err
			}
		}
	}

	res := &Result{
		Properties: ectx.Properties(),
		Template:   ectx.Template(),
		Added:      ectx.Added(),
	}

	if strings.TrimSpace(t.Selector) != "" {
		sel, ok, err := e.selector(ectx, t.Selector)
		if err != nil {
			e.logger.Error("selector failed", "control", t.Type, "selector", t.Selector, "error", err)
			return nil, err
		}
		res.Selector, res.HasSelector = sel, ok
	}

	e.logger.Debug("control transformed",
		"control", t.Type,
		"properties", len(res.Properties),
		"added", len(res.Added),
		"selector", res.Selector)
	return res, nil
}

// Select evaluates only the selector of t.
func (e *Executor) Select(t *mapping.Template, control map[string]string) (string, bool, error) {
	if strings.TrimSpace(t.Selector) == "" {
		return "", false, nil
	}
	return e.selector(NewEvalContext(t, control), t.Selector)
}

// apply runs one function expression of a property pipeline and folds the
// result back into ectx.
func (e *Executor) apply(ectx *EvalContext, property, expr string) error {
	def, v, found, err := e.run(ectx, property, expr)
	if err != nil || !found {
		return err
	}

	switch v.Kind() {
	case KindString, KindBool:
		text, _ := v.Text()
		ectx.Set(def.Output.Name, def.Output.Type, text)
	case KindMap:
		for _, entry := range v.Entries() {
			if strings.TrimSpace(entry.Name) == "" {
				e.logger.Debug("skipping unnamed output", "function", def.QualifiedName(), "property", property)
				continue
			}
			ectx.Set(entry.Name, mapping.TypeString, entry.Value)
		}
	}
	return nil
}

// selector runs a selector expression as a single function. The result is
// returned, not stored.
func (e *Executor) selector(ectx *EvalContext, expr string) (string, bool, error) {
	_, v, found, err := e.run(ectx, "", expr)
	if err != nil || !found {
		return "", false, err
	}
	text, ok := v.Text()
	return text, ok, nil
}

func (e *Executor) run(ectx *EvalContext, property, expr string) (*FunctionDefinition, Value, bool, error) {
	def, err := ParseFunction(expr, ectx, property)
	if err != nil {
		return nil, None, false, err
	}
	if err := Resolve(def, ectx); err != nil {
		return nil, None, false, err
	}

	v, found, err := e.dispatcher.Call(def)
	if err != nil {
		return nil, None, true, err
	}
	if !found {
		e.logger.Debug("function not found, skipping",
			"function", def.QualifiedName(),
			"output", def.Output.Name)
		return def, None, false, nil
	}
	return def, v, true, nil
}
