package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootCommandEndToEnd(t *testing.T) {
	dir := t.TempDir()
	snapshot := writeFile(t, filepath.Join(dir, "mem.map"), ""+
		"0000000000001000 T main\n"+
		"0000000000002000 T handler\n")
	input := writeFile(t, filepath.Join(dir, "run.trace"), "0x1004\n0x2010\n")
	output := filepath.Join(dir, "run.out")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"-i", input, "-c", snapshot, "-o", output, "--line-numbers"})
	require.NoError(t, cmd.Execute())

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "l0: main+0x4\nl1: handler+0x10\n", string(content))
}

func TestRootCommandModOffStyle(t *testing.T) {
	dir := t.TempDir()
	snapshot := writeFile(t, filepath.Join(dir, "mem.map"), "0000000000001000 T main\n")
	input := writeFile(t, filepath.Join(dir, "run.trace"), "0x1200\n")
	output := filepath.Join(dir, "run.out")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"-i", input, "-c", snapshot, "-o", output, "--style", "modoff"})
	require.NoError(t, cmd.Execute())

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "mem+0x200\n", string(content))
}

func TestRootCommandRejectsUnknownStyle(t *testing.T) {
	dir := t.TempDir()
	snapshot := writeFile(t, filepath.Join(dir, "mem.map"), "0000000000001000 T main\n")
	input := writeFile(t, filepath.Join(dir, "run.trace"), "0x1000\n")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"-i", input, "-c", snapshot, "--style", "dwarf"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown trace style")
}

func TestRootCommandRequiresInput(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"-c", "whatever.map"})
	require.Error(t, cmd.Execute())
}

func TestRootCommandFailsOnUnloadableSnapshot(t *testing.T) {
	dir := t.TempDir()
	snapshot := writeFile(t, filepath.Join(dir, "empty.map"), "")
	input := writeFile(t, filepath.Join(dir, "run.trace"), "0x1000\n")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"-i", input, "-c", snapshot})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "symbol resolver")
}
