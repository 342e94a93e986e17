package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalRuntime exports init, run and cleanup with empty bodies.
var minimalRuntime = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x04, 0x01, 0x60, 0x00, 0x00,
	0x03, 0x04, 0x03, 0x00, 0x00, 0x00,
	0x07, 0x18, 0x03,
	0x04, 'i', 'n', 'i', 't', 0x00, 0x00,
	0x03, 'r', 'u', 'n', 0x00, 0x01,
	0x07, 'c', 'l', 'e', 'a', 'n', 'u', 'p', 0x00, 0x02,
	0x0a, 0x0a, 0x03,
	0x02, 0x00, 0x0b,
	0x02, 0x00, 0x0b,
	0x02, 0x00, 0x0b,
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func workdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestConfigCmd(t *testing.T) {
	workdir(t)
	t.Setenv("NATIVEBRIDGE_LIBRARY_NAME", "Game")

	out, err := execute(t, "config", "--log-format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "name: Game")
	assert.Contains(t, out, "format: json")
	assert.Contains(t, out, "level: error")
}

func TestConfigCmd_InvalidFile(t *testing.T) {
	dir := workdir(t)
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  format: xml\n"), 0o644))

	_, err := execute(t, "config", "--config", path)
	assert.Error(t, err)
}

func TestReplayCmd_NativeLibrary(t *testing.T) {
	dir := workdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "libGui.wasm"), minimalRuntime, 0o644))

	out, err := execute(t, "replay", "Gui", "--events", "create resume pause resume destroy destroy")
	require.NoError(t, err)

	assert.Contains(t, out, "init")
	assert.Contains(t, out, "cleanup")
	assert.Contains(t, out, "ignored")
	assert.Contains(t, out, "Final state: Destroyed")
	assert.NotContains(t, out, "degraded")
}

func TestReplayCmd_MissingLibraryIsDegraded(t *testing.T) {
	workdir(t)

	out, err := execute(t, "replay", "Absent", "--events", "create resume")
	require.NoError(t, err)

	assert.Contains(t, out, "load failed")
	assert.Contains(t, out, "Final state: Running (degraded)")
}

func TestReplayCmd_Script(t *testing.T) {
	dir := workdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "libGui.wasm"), minimalRuntime, 0o644))
	script := filepath.Join(dir, "rotate.events")
	require.NoError(t, os.WriteFile(script, []byte("# launch\ncreate resume\n"), 0o644))

	out, err := execute(t, "replay", "Gui", "--file", script)
	require.NoError(t, err)
	assert.Contains(t, out, "Final state: Running")
	assert.Contains(t, out, "native cleanup was not called")
}

func TestReplayCmd_Errors(t *testing.T) {
	workdir(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no events", []string{"replay"}},
		{"both sources", []string{"replay", "--events", "create", "--file", "x"}},
		{"unknown event", []string{"replay", "--events", "create explode"}},
		{"missing file", []string{"replay", "--file", "absent.events"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestInspectCmd(t *testing.T) {
	dir := workdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "libGui.wasm"), minimalRuntime, 0o644))

	out, err := execute(t, "inspect", "Gui")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(".", "libGui.wasm"))
	assert.Contains(t, out, "cleanup")
	assert.Contains(t, out, "(none)")
	assert.Contains(t, out, "Loadable: yes")
}

func TestInspectCmd_Missing(t *testing.T) {
	workdir(t)

	_, err := execute(t, "inspect", "Absent")
	assert.Error(t, err)
}
