package pipeline

import (
	"sort"

	"golang.org/x/text/cases"

	"github.com/pagemigrate/pagemigrate/pkg/mapping"
)

// EvalContext is the evaluation state of one control's transformation. It
// is seeded from a read-only template and the control's property values and
// grows as functions write results.
//
// Properties become known in order: first the template's declarations, then
// every output name a function writes for the first time. A function
// expression may reference only properties known when it runs, so the
// declaration order of the template is the evaluation order. No dependency
// analysis or reordering happens.
//
// An EvalContext belongs to a single transformation and is not safe for
// concurrent use.
type EvalContext struct {
	template *mapping.Template
	fold     cases.Caser

	known    []mapping.PropertyMapping
	declared map[string]int

	values map[string]*slot
	order  []string
	added  []string
}

type slot struct {
	name  string
	value string
}

// NewEvalContext seeds a context. Neither t nor control is modified.
func NewEvalContext(t *mapping.Template, control map[string]string) *EvalContext {
	c := &EvalContext{
		template: t,
		fold:     cases.Fold(),
		known:    append([]mapping.PropertyMapping(nil), t.Properties...),
		declared: make(map[string]int, len(t.Properties)),
		values:   make(map[string]*slot, len(control)),
	}
	for i, p := range c.known {
		key := c.key(p.Name)
		if _, dup := c.declared[key]; !dup {
			c.declared[key] = i
		}
	}
	c.seed(control)
	return c
}

// seed copies the control values in name order. When control names differ
// only in case, the spelling declared by the template wins, then the first
// name in byte order.
func (c *EvalContext) seed(control map[string]string) {
	names := make([]string, 0, len(control))
	for name := range control {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		key := c.key(name)
		if _, taken := c.values[key]; taken {
			if i, ok := c.declared[key]; !ok || c.known[i].Name != name {
				continue
			}
		}
		c.put(name, control[name])
		c.values[key].name = name
	}
}

func (c *EvalContext) key(name string) string {
	return c.fold.String(name)
}

func (c *EvalContext) put(name, value string) {
	key := c.key(name)
	if s, ok := c.values[key]; ok {
		s.value = value
		return
	}
	c.values[key] = &slot{name: name, value: value}
	c.order = append(c.order, key)
}

// Dynamic reports whether the template describes a pass-through control
// kind whose properties are discovered rather than declared.
func (c *EvalContext) Dynamic() bool {
	return c.template.Dynamic
}

// Declared returns the known property mapping for name, ignoring case.
func (c *EvalContext) Declared(name string) (mapping.PropertyMapping, bool) {
	i, ok := c.declared[c.key(name)]
	if !ok {
		return mapping.PropertyMapping{}, false
	}
	return c.known[i], true
}

// Lookup returns the live value of a property, ignoring case.
func (c *EvalContext) Lookup(name string) (string, bool) {
	s, ok := c.values[c.key(name)]
	if !ok {
		return "", false
	}
	return s.value, true
}

// Set writes a property value. A name that is not yet known is appended to
// the known properties with the given type and an empty function pipeline.
func (c *EvalContext) Set(name, typ, value string) {
	c.put(name, value)

	key := c.key(name)
	if _, ok := c.declared[key]; ok {
		return
	}
	if typ == "" {
		typ = mapping.TypeString
	}
	c.declared[key] = len(c.known)
	c.known = append(c.known, mapping.PropertyMapping{Name: name, Type: typ})
	c.added = append(c.added, name)
}

// Properties returns the live property values keyed by their first-seen
// spelling.
func (c *EvalContext) Properties() map[string]string {
	out := make(map[string]string, len(c.values))
	for _, key := range c.order {
		s := c.values[key]
		out[s.name] = s.value
	}
	return out
}

// Template returns a copy of the template extended with every property
// introduced during evaluation.
func (c *EvalContext) Template() *mapping.Template {
	t := c.template.Clone()
	t.Properties = append([]mapping.PropertyMapping(nil), c.known...)
	return t
}

// Added lists the property names introduced during evaluation, in order.
func (c *EvalContext) Added() []string {
	return append([]string(nil), c.added...)
}
