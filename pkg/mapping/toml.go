package mapping

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// ParseTOML parses the TOML form of a mapping file, laid out like the YAML
// form with [[plugins]] and [[templates]] tables. Unknown keys are errors.
func ParseTOML(data []byte) (*File, error) {
	var f File
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTOML, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown key %s", ErrInvalidTOML, undecoded[0])
	}
	if err := normalize(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTOML, err)
	}
	return &f, nil
}
