package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagemigrate/pagemigrate/pkg/logging"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestNewDefault(t *testing.T) {
	cfg := NewDefault()
	assert.Equal(t, DefaultMappings, cfg.Mappings)
	assert.Equal(t, OutputJSON, cfg.Output)
	assert.Equal(t, SourceDefault, cfg.Sources["log.level"])
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	t.Setenv("SITE_MAPPINGS", "legacy")
	dir := t.TempDir()
	path := writeFile(t, dir, "pagemigrate.yaml", `
mappings:
  - ${SITE_MAPPINGS}/**/*.xml
pluginDir: ./plugins
log:
  level: debug
  format: json
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"legacy/**/*.xml"}, cfg.Mappings)
	assert.Equal(t, "./plugins", cfg.PluginDir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.Output)
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.Is(err, ErrFileNotFound))

	bad := writeFile(t, dir, "bad.yaml", "mappings: [unclosed\n")
	_, err = LoadFile(bad)
	assert.ErrorIs(t, err, ErrInvalidYAML)

	unknown := writeFile(t, dir, "unknown.yaml", "port: 8080\n")
	_, err = LoadFile(unknown)
	assert.ErrorIs(t, err, ErrInvalidYAML)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse([]byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Mappings)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pagemigrate.yaml", "output: text\nlog:\n  level: warn\n")

	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvMappings, "a/*.xml"+string(os.PathListSeparator)+" b/**/*.yaml ")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, OutputText, cfg.Output)
	assert.Equal(t, SourceFile, cfg.Sources["output"])
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, SourceEnv, cfg.Sources["log.level"])
	assert.Equal(t, []string{"a/*.xml", "b/**/*.yaml"}, cfg.Mappings)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, SourceDefault, cfg.Sources["log.format"])
}

func TestLoad_InvalidValue(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pagemigrate.yaml", "output: xml\n")

	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalidValue)
	assert.True(t, strings.Contains(err.Error(), "output"))
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, Find(dir))

	path := writeFile(t, dir, "pagemigrate.yml", "")
	assert.Equal(t, path, Find(dir))
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pagemigrate.yaml")
	cfg := NewDefault()
	cfg.PluginDir = "plugins"

	require.NoError(t, Save(path, cfg))
	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Mappings, loaded.Mappings)
	assert.Equal(t, "plugins", loaded.PluginDir)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestConfigLogging(t *testing.T) {
	cfg := &Config{Log: LogConfig{Level: "WARN", Format: "json"}}
	lc := cfg.Logging()
	assert.Equal(t, slog.LevelWarn, lc.Level)
	assert.Equal(t, logging.FormatJSON, lc.Format)
}
