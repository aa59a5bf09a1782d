// Package config loads the pagemigrate project configuration.
//
// The configuration lives in pagemigrate.yaml next to the mapping files:
//
//	mappings:
//	  - mappings/**/*.xml
//	pluginDir: ./plugins
//	log:
//	  level: debug
//	  format: json
//	output: json
//
// ${VAR} references in the file are expanded from the environment, and
// PAGEMIGRATE_* variables override file values.
package config
