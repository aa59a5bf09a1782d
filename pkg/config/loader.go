package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pagemigrate/pagemigrate/pkg/logging"
)

// Common errors for configuration loading/saving.
var (
	ErrFileNotFound     = errors.New("configuration file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidYAML      = errors.New("invalid YAML syntax")
	ErrInvalidValue     = errors.New("invalid configuration value")
)

// Find returns the project config in dir, or "" when there is none.
func Find(dir string) string {
	for _, name := range DefaultFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// LoadFile reads a Config from a YAML file. ${VAR} references are expanded
// from the environment before decoding. An empty file yields an empty
// Config.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a Config from YAML. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{Sources: make(map[string]string)}
	if strings.TrimSpace(string(data)) == "" {
		return cfg, nil
	}

	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	cfg.Sources = make(map[string]string)
	return cfg, nil
}

// Load builds the effective configuration: defaults, then the file at path
// (or the project config in the working directory when path is empty),
// then the environment.
func Load(path string) (*Config, error) {
	cfg := NewDefault()

	if path == "" {
		if env := os.Getenv(EnvConfig); env != "" {
			path = env
		} else if cwd, err := os.Getwd(); err == nil {
			path = Find(cwd)
		}
	}
	if path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		Merge(cfg, fileCfg, SourceFile)
	}

	LoadEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge copies the non-zero values of source into target, recording
// sourceType for each.
func Merge(target, source *Config, sourceType string) {
	if source == nil {
		return
	}
	if target.Sources == nil {
		target.Sources = make(map[string]string)
	}

	if len(source.Mappings) > 0 {
		target.Mappings = append([]string(nil), source.Mappings...)
		target.Sources["mappings"] = sourceType
	}
	if source.PluginDir != "" {
		target.PluginDir = source.PluginDir
		target.Sources["pluginDir"] = sourceType
	}
	if source.Log.Level != "" {
		target.Log.Level = source.Log.Level
		target.Sources["log.level"] = sourceType
	}
	if source.Log.Format != "" {
		target.Log.Format = source.Log.Format
		target.Sources["log.format"] = sourceType
	}
	if source.Output != "" {
		target.Output = source.Output
		target.Sources["output"] = sourceType
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalidValue, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalidValue, c.Log.Format)
	}
	switch c.Output {
	case "", OutputJSON, OutputText:
	default:
		return fmt.Errorf("%w: output %q", ErrInvalidValue, c.Output)
	}
	return nil
}

// Logging returns the logger configuration.
func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:  logging.ParseLevel(c.Log.Level),
		Format: logging.ParseFormat(c.Log.Format),
	}
}

// Save writes cfg as YAML using an atomic rename. Parent directories are
// created as needed.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
