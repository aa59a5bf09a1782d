package mapping

import (
	"strings"
)

// Property types declared in mapping files.
const (
	TypeString  = "string"
	TypeBool    = "bool"
	TypeGUID    = "guid"
	TypeInteger = "integer"
)

// PropertyMapping is one declared property of a template: its name, its
// declared type and the function pipeline that computes it.
type PropertyMapping struct {
	Name      string `yaml:"name" toml:"name"`
	Type      string `yaml:"type,omitempty" toml:"type,omitempty"`
	Functions string `yaml:"functions,omitempty" toml:"functions,omitempty"`
}

// MappingOption is one candidate target mapping of a template. A selector
// result picks between options.
type MappingOption struct {
	Name    string `yaml:"name" toml:"name"`
	Default bool   `yaml:"default,omitempty" toml:"default,omitempty"`
}

// Template describes how one kind of legacy control is transformed.
type Template struct {
	// Type identifies the source control kind this template applies to.
	Type string `yaml:"type" toml:"type"`

	// Dynamic marks pass-through control kinds whose property set is
	// discovered from the control instead of being declared up front.
	// Unresolved references on such templates resolve to empty strings.
	Dynamic bool `yaml:"dynamic,omitempty" toml:"dynamic,omitempty"`

	// Properties are evaluated in declaration order.
	Properties []PropertyMapping `yaml:"properties,omitempty" toml:"properties,omitempty"`

	// Selector is an optional single-function expression choosing one of
	// Mappings.
	Selector string          `yaml:"selector,omitempty" toml:"selector,omitempty"`
	Mappings []MappingOption `yaml:"mappings,omitempty" toml:"mappings,omitempty"`
}

// PluginDeclaration declares a function library contributed by a plugin.
type PluginDeclaration struct {
	// Name qualifies function calls: Name.Function(...).
	Name string `yaml:"name" toml:"name"`
	// Path locates the plugin module on disk.
	Path string `yaml:"path,omitempty" toml:"path,omitempty"`
	// TypeName names the function-library type the module provides.
	TypeName string `yaml:"type" toml:"type"`
}

// File is the in-memory form of one mapping file.
type File struct {
	Source    string              `yaml:"-" toml:"-"`
	Plugins   []PluginDeclaration `yaml:"plugins,omitempty" toml:"plugins,omitempty"`
	Templates []Template          `yaml:"templates" toml:"templates"`
}

// Property returns the declared property with the given name, ignoring case.
func (t *Template) Property(name string) (PropertyMapping, bool) {
	for _, p := range t.Properties {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return PropertyMapping{}, false
}

// Clone returns a deep copy of the template.
func (t *Template) Clone() *Template {
	c := *t
	c.Properties = append([]PropertyMapping(nil), t.Properties...)
	c.Mappings = append([]MappingOption(nil), t.Mappings...)
	return &c
}

// SelectMapping picks the option named by selector, ignoring case. Without
// a match it falls back to the default option, then to the first one.
func (t *Template) SelectMapping(selector string) (MappingOption, bool) {
	if len(t.Mappings) == 0 {
		return MappingOption{}, false
	}
	if selector != "" {
		for _, m := range t.Mappings {
			if strings.EqualFold(m.Name, selector) {
				return m, true
			}
		}
	}
	for _, m := range t.Mappings {
		if m.Default {
			return m, true
		}
	}
	return t.Mappings[0], true
}

// Template returns the template for the given control type, ignoring case.
func (f *File) Template(controlType string) (*Template, bool) {
	for i := range f.Templates {
		if strings.EqualFold(f.Templates[i].Type, controlType) {
			return &f.Templates[i], true
		}
	}
	return nil, false
}

// Merge appends the plugins and templates of other files. Later templates
// for an already known control type replace the earlier ones.
func (f *File) Merge(others ...*File) {
	for _, o := range others {
		if o == nil {
			continue
		}
		f.Plugins = append(f.Plugins, o.Plugins...)
		for _, t := range o.Templates {
			if existing, ok := f.Template(t.Type); ok {
				*existing = t
				continue
			}
			f.Templates = append(f.Templates, t)
		}
	}
}
