package pipeline

import (
	"fmt"
	"strings"

	"github.com/pagemigrate/pagemigrate/pkg/mapping"
)

// Problem is one finding of Validate.
type Problem struct {
	Template string
	Property string
	// Expression is the offending function expression.
	Expression string
	Err        error
	// Warning marks findings that do not stop a transformation, such as
	// functions no library provides.
	Warning bool
}

func (p Problem) String() string {
	where := p.Template
	if p.Property != "" {
		where += "." + p.Property
	} else {
		where += " selector"
	}
	level := "error"
	if p.Warning {
		level = "warning"
	}
	return fmt.Sprintf("%s: %s: %v", level, where, p.Err)
}

// Validate parses every function expression of t without running it. Syntax
// errors are reported as errors. Functions d cannot dispatch are reported
// as warnings since they are skipped at run time. d may be nil.
func Validate(t *mapping.Template, d *Dispatcher) []Problem {
	var problems []Problem
	check := func(property, expr string) {
		def, err := ParseFunction(expr, nil, property)
		if err != nil {
			problems = append(problems, Problem{Template: t.Type, Property: property, Expression: expr, Err: err})
			return
		}
		if d == nil {
			return
		}
		if _, ok := d.Lookup(def.Plugin, def.Name); !ok {
			problems = append(problems, Problem{
				Template:   t.Type,
				Property:   property,
				Expression: expr,
				Err:        fmt.Errorf("function %s is not provided by any library", def.QualifiedName()),
				Warning:    true,
			})
		}
	}

	for _, p := range t.Properties {
		if strings.TrimSpace(p.Functions) == "" {
			continue
		}
		segments, err := SplitPipeline(p.Functions)
		if err != nil {
			problems = append(problems, Problem{Template: t.Type, Property: p.Name, Expression: p.Functions, Err: err})
			continue
		}
		for _, seg := range segments {
			check(p.Name, seg)
		}
	}
	if strings.TrimSpace(t.Selector) != "" {
		check("", t.Selector)
	}
	return problems
}
