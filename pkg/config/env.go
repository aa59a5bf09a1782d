package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Environment variable names
const (
	EnvConfig    = "PAGEMIGRATE_CONFIG"
	EnvMappings  = "PAGEMIGRATE_MAPPINGS"
	EnvPluginDir = "PAGEMIGRATE_PLUGIN_DIR"
	EnvLogLevel  = "PAGEMIGRATE_LOG_LEVEL"
	EnvLogFormat = "PAGEMIGRATE_LOG_FORMAT"
	EnvOutput    = "PAGEMIGRATE_OUTPUT"
)

// LoadEnv applies configuration from environment variables. It only sets
// values that are present in the environment.
func LoadEnv(cfg *Config) {
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}

	// PAGEMIGRATE_MAPPINGS, separated like PATH
	if v := os.Getenv(EnvMappings); v != "" {
		var patterns []string
		for _, p := range filepath.SplitList(v) {
			if p = strings.TrimSpace(p); p != "" {
				patterns = append(patterns, p)
			}
		}
		if len(patterns) > 0 {
			cfg.Mappings = patterns
			cfg.Sources["mappings"] = SourceEnv
		}
	}

	// PAGEMIGRATE_PLUGIN_DIR
	if v := os.Getenv(EnvPluginDir); v != "" {
		cfg.PluginDir = v
		cfg.Sources["pluginDir"] = SourceEnv
	}

	// PAGEMIGRATE_LOG_LEVEL
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
		cfg.Sources["log.level"] = SourceEnv
	}

	// PAGEMIGRATE_LOG_FORMAT
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Log.Format = v
		cfg.Sources["log.format"] = SourceEnv
	}

	// PAGEMIGRATE_OUTPUT
	if v := os.Getenv(EnvOutput); v != "" {
		cfg.Output = strings.ToLower(v)
		cfg.Sources["output"] = SourceEnv
	}
}
