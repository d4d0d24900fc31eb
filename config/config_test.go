package config_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/argcheck"
	"github.com/reoring/argcheck/config"
)

func TestDefaults(t *testing.T) {
	c := config.Default()
	assert.True(t, c.Enabled())
	assert.Equal(t, "sequential", c.Backend())
	assert.Equal(t, "WARN", c.LogLevel())
	assert.Equal(t, slog.LevelWarn, c.Level())

	var _ argcheck.Gate = c
}

func TestSetTypeCheck(t *testing.T) {
	c := config.Default()
	c.SetTypeCheck(false)
	assert.False(t, c.Enabled())
	require.NotNil(t, c.Options().TypeCheck)
	assert.False(t, *c.Options().TypeCheck)
}

func TestValidate(t *testing.T) {
	bad := []config.Options{
		{Backend: "gpu", LogLevel: "WARN"},
		{Backend: "openmp", LogLevel: "WARN", Debug: 8},
		{Backend: "openmp", LogLevel: "TRACE"},
	}
	for _, o := range bad {
		_, err := config.New(o)
		assert.Error(t, err, "%+v", o)
	}
	c, err := config.New(config.Options{Backend: "cuda", LogLevel: "debug", Debug: 7})
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", c.LogLevel())
	assert.True(t, c.Enabled(), "nil type_check means enabled")
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "argcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: openmp\ntype_check: false\n"), 0o644))

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openmp", c.Backend())
	assert.Equal(t, "WARN", c.LogLevel(), "omitted keys keep defaults")
	assert.False(t, c.Enabled())
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "argcheck.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"log_level":"INFO","debug":3}`), 0o644))

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Debug())
	assert.Equal(t, slog.LevelInfo, c.Level())
}

func TestLoad_UnknownKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "argcheck.yml")
	require.NoError(t, os.WriteFile(path, []byte("typecheck: false\n"), 0o644))
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		config.EnvTypeCheck: "0",
		config.EnvBackend:   "opencl",
		config.EnvDebug:     "2",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }
	opts := config.Defaults()
	require.NoError(t, config.ApplyEnv(&opts, lookup))
	assert.Equal(t, "opencl", opts.Backend)
	assert.Equal(t, 2, opts.Debug)
	require.NotNil(t, opts.TypeCheck)
	assert.False(t, *opts.TypeCheck)

	env[config.EnvDebug] = "lots"
	assert.Error(t, config.ApplyEnv(&opts, lookup))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv(config.EnvTypeCheck, "false")
	c, err := config.Load("")
	require.NoError(t, err)
	assert.False(t, c.Enabled())
}

func TestLogger(t *testing.T) {
	c, err := config.New(config.Options{Backend: "sequential", LogLevel: "ERROR"})
	require.NoError(t, err)
	var buf bytes.Buffer
	l := c.Logger(&buf)
	l.Warn("hidden")
	l.Error("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
