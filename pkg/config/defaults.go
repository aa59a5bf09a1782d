package config

// DefaultFileNames are the project config names searched for, in order.
var DefaultFileNames = []string{"pagemigrate.yaml", "pagemigrate.yml"}

// Default values.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	DefaultOutput    = OutputJSON
)

// DefaultMappings is the mapping set used when none is configured.
var DefaultMappings = []string{"mappings/**/*.xml"}

// NewDefault creates a Config with default values.
func NewDefault() *Config {
	cfg := &Config{
		Mappings: append([]string(nil), DefaultMappings...),
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Output:  DefaultOutput,
		Sources: make(map[string]string),
	}

	cfg.Sources["mappings"] = SourceDefault
	cfg.Sources["log.level"] = SourceDefault
	cfg.Sources["log.format"] = SourceDefault
	cfg.Sources["output"] = SourceDefault

	return cfg
}
