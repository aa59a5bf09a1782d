package mapping

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseYAML parses the YAML form of a mapping file.
func ParseYAML(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	if err := normalize(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return &f, nil
}

// normalize checks the names a decoded file must carry and fills in
// default property types.
func normalize(f *File) error {
	for i := range f.Templates {
		t := &f.Templates[i]
		if t.Type == "" {
			return fmt.Errorf("template %d has no type", i)
		}
		for j := range t.Properties {
			if t.Properties[j].Name == "" {
				return fmt.Errorf("template %s has a property without a name", t.Type)
			}
			if t.Properties[j].Type == "" {
				t.Properties[j].Type = TypeString
			}
			t.Properties[j].Type = strings.ToLower(t.Properties[j].Type)
		}
	}
	for _, p := range f.Plugins {
		if p.Name == "" {
			return errors.New("plugin without a name")
		}
	}
	return nil
}
