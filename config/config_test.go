package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/native-bridge/errors"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "MultiPlatformGUI", c.Library.Name)
	assert.Equal(t, []string{".", "lib"}, c.Library.Paths)
	assert.True(t, c.Library.WASI)
	assert.Zero(t, c.Library.MemoryLimitPages)
	assert.Zero(t, c.Load.Retries)
	assert.Equal(t, 200*time.Millisecond, c.Load.Interval)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "console", c.Log.Format)
	assert.Empty(t, c.Status.Addr)
	assert.False(t, c.Shell.Interactive)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
library:
  name: Game
  paths: [/opt/game/lib]
  wasi: false
load:
  retries: 3
  interval: 50ms
status:
  addr: 127.0.0.1:9100
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Game", c.Library.Name)
	assert.Equal(t, []string{"/opt/game/lib"}, c.Library.Paths)
	assert.False(t, c.Library.WASI)
	assert.Equal(t, 3, c.Load.Retries)
	assert.Equal(t, 50*time.Millisecond, c.Load.Interval)
	assert.Equal(t, "127.0.0.1:9100", c.Status.Addr)
	assert.Equal(t, "info", c.Log.Level)
}

func TestLoad_DefaultFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte("log:\n  format: json\n"), 0o644))
	t.Chdir(dir)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "json", c.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NATIVEBRIDGE_LIBRARY_NAME", "FromEnv")
	t.Setenv("NATIVEBRIDGE_LOG_LEVEL", "debug")
	t.Setenv("NATIVEBRIDGE_SHELL_INTERACTIVE", "true")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "FromEnv", c.Library.Name)
	assert.Equal(t, "debug", c.Log.Level)
	assert.True(t, c.Shell.Interactive)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, &errors.Error{Phase: errors.PhaseConfig, Kind: errors.KindInvalidInput}))
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Library: LibraryConfig{Name: "gui"},
			Log:     LogConfig{Level: "info", Format: "console"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"json format", func(c *Config) { c.Log.Format = "json" }, false},
		{"empty name", func(c *Config) { c.Library.Name = "  " }, true},
		{"negative retries", func(c *Config) { c.Load.Retries = -1 }, true},
		{"negative interval", func(c *Config) { c.Load.Interval = -time.Second }, true},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWriteYAML(t *testing.T) {
	t.Chdir(t.TempDir())
	c, err := Load("")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.WriteYAML(&buf))

	var back Config
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, *c, back)
	assert.Contains(t, buf.String(), "interval: 200ms")
}

func TestLogConfig_Logger(t *testing.T) {
	var buf bytes.Buffer
	l, err := LogConfig{Level: "warn", Format: "json"}.Logger(zapcore.AddSync(&buf))
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("shown")
	require.NoError(t, l.Sync())

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	_, err = LogConfig{Level: "nope"}.Logger(zapcore.AddSync(&buf))
	assert.Error(t, err)
}
