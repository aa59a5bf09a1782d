package config

// Config is the project configuration read from pagemigrate.yaml.
// Values come from several sources with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables
// 3. Project config file
// 4. Default values (lowest priority)
type Config struct {
	// Mappings are the mapping files to load, as paths or ** glob patterns.
	Mappings []string `yaml:"mappings,omitempty" json:"mappings,omitempty"`

	// PluginDir is the directory relative plugin module paths resolve
	// against. Empty means the directory of the executable.
	PluginDir string `yaml:"pluginDir,omitempty" json:"pluginDir,omitempty"`

	// Logging settings
	Log LogConfig `yaml:"log" json:"log"`

	// Output is the result format of the transform command: json or text.
	Output string `yaml:"output,omitempty" json:"output,omitempty"`

	// Sources tracks where each value came from.
	Sources map[string]string `yaml:"-" json:"-"`
}

// LogConfig configures the run logger.
type LogConfig struct {
	Level  string `yaml:"level,omitempty" json:"level,omitempty"`
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
}

// ConfigSource identifies where a config value originated.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// Output formats.
const (
	OutputJSON = "json"
	OutputText = "text"
)
