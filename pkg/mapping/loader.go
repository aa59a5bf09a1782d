package mapping

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Common errors for mapping file loading.
var (
	ErrFileNotFound     = errors.New("mapping file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidXML       = errors.New("invalid mapping XML")
	ErrInvalidTOML      = errors.New("invalid TOML mapping file")
	ErrInvalidYAML      = errors.New("invalid mapping YAML")
	ErrEmptyFile        = errors.New("mapping file is empty")
	ErrNoFiles          = errors.New("no mapping files matched")
)

// LoadFromFile reads a mapping file. The format is detected from the
// extension: .yaml and .yml are YAML, .toml is TOML, everything else is
// XML.
func LoadFromFile(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	var f *File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		f, err = ParseYAML(data)
	case ".toml":
		f, err = ParseTOML(data)
	default:
		f, err = ParseXML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Source = path
	return f, nil
}

// LoadGlob loads every file matched by the patterns and merges them in
// sorted path order. Patterns may use ** for recursive matching.
func LoadGlob(patterns ...string) (*File, error) {
	var paths []string
	seen := make(map[string]struct{})
	for _, pattern := range patterns {
		matches, err := expandGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("expanding glob pattern %q: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			paths = append(paths, m)
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, strings.Join(patterns, ", "))
	}

	merged := &File{Source: strings.Join(paths, string(os.PathListSeparator))}
	for _, p := range paths {
		f, err := LoadFromFile(p)
		if err != nil {
			return nil, err
		}
		merged.Merge(f)
	}
	return merged, nil
}

func expandGlob(pattern string) ([]string, error) {
	if !strings.ContainsAny(pattern, "*?[{") {
		if _, err := os.Stat(pattern); err != nil {
			return nil, nil
		}
		return []string{pattern}, nil
	}
	return doublestar.FilepathGlob(pattern)
}
