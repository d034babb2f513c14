package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", `
app:
  env: prod
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, ":8991", cfg.App.HTTPAddr)
	assert.Equal(t, "data/finboard.db", cfg.Database.Path)
	assert.Equal(t, "data/sessions.db", cfg.Database.SessionPath)
	assert.Equal(t, 72, cfg.Session.TTLHours)
	assert.Equal(t, 15, cfg.Oanda.TimeoutSeconds)
	assert.Equal(t, "EUR_USD", cfg.Oanda.DefaultInstrument)
	assert.Equal(t, "H1", cfg.Oanda.DefaultGranularity)
	assert.Equal(t, 200, cfg.Oanda.DefaultCandleCount)
}

func TestLoadExplicitZeroSurvivesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", `
session:
  ttl_hours: 0
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	// Explicitly set to zero: the default must not clobber it.
	assert.Equal(t, 0, cfg.Session.TTLHours)
}

func TestLoadMergesIncludes(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "base.yaml", `
app:
  log_level: debug
oanda:
  default_granularity: M15
`)
	path := writeConfig(t, dir, "config.yaml", `
include:
  - base.yaml
app:
  env: prod
oanda:
  default_granularity: H4
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.App.Env)
	// Inherited from the include.
	assert.Equal(t, "debug", cfg.App.LogLevel)
	// Including file wins over the include.
	assert.Equal(t, "H4", cfg.Oanda.DefaultGranularity)
}

func TestLoadDetectsIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "a.yaml", "include:\n  - b.yaml\n")
	pathA := filepath.Join(dir, "a.yaml")
	writeConfig(t, dir, "b.yaml", "include:\n  - a.yaml\n")

	_, err := Load(pathA)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestLoadValidation(t *testing.T) {
	dir := t.TempDir()

	t.Run("Candle Count Out Of Range", func(t *testing.T) {
		path := writeConfig(t, dir, "badcount.yaml", `
oanda:
  default_candle_count: 9000
`)
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("Negative TTL", func(t *testing.T) {
		path := writeConfig(t, dir, "badttl.yaml", `
session:
  ttl_hours: -1
`)
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
}
