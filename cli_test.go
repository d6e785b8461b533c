package codemod

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand(&stdout)
	cmd.SetOut(&stderr)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestCLI_Apply(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.js": "const a = \"x\";\n",
		"b.js": "const c = 1;\n",
	})
	patch := `{"operations": [
		{"type": "replace_string_literal", "file": "a.js", "old": "x", "new": "y"},
		{"type": "rename_identifier", "file": "b.js", "oldName": "zzz", "newName": "q"}
	]}`
	patchPath := filepath.Join(dir, "patch.json")
	require.NoError(t, os.WriteFile(patchPath, []byte(patch), 0644))

	stdout, _, err := runCLI(t, "apply", "--patch", patchPath, "--dir", dir)
	require.NoError(t, err)

	assert.Equal(t, "patched: a.js\nno changes: b.js\n", stdout)
	assert.Equal(t, "const a = \"y\";\n", readFile(t, filepath.Join(dir, "a.js")))
}

func TestCLI_Apply_DryRun(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.js": "const a = 1;\n"})
	patchPath := filepath.Join(dir, "patch.yaml")
	require.NoError(t, os.WriteFile(patchPath, []byte(
		"operations:\n  - {type: rename_identifier, file: a.js, oldName: a, newName: b}\n"), 0644))

	stdout, _, err := runCLI(t, "apply", "-p", patchPath, "-C", dir, "--dry-run")
	require.NoError(t, err)

	assert.Equal(t, "patched: a.js\n", stdout)
	assert.Equal(t, "const a = 1;\n", readFile(t, filepath.Join(dir, "a.js")))
}

func TestCLI_Apply_MissingPatchFlag(t *testing.T) {
	stdout, stderr, err := runCLI(t, "apply")

	var uerr *UsageError
	require.ErrorAs(t, err, &uerr)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Usage:")
}

func TestCLI_Apply_UnreadablePatch(t *testing.T) {
	_, _, err := runCLI(t, "apply", "--patch", filepath.Join(t.TempDir(), "nope.json"))

	var uerr *UsageError
	assert.ErrorAs(t, err, &uerr)
}

func TestCLI_Apply_InvalidPatchTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.js": "const a = 1;\n"})
	patchPath := filepath.Join(dir, "patch.json")
	require.NoError(t, os.WriteFile(patchPath, []byte(`{"operations": [
		{"type": "rename_identifier", "file": "a.js", "oldName": "a", "newName": "b"},
		{"type": "move_file", "file": "a.js"}
	]}`), 0644))

	stdout, _, err := runCLI(t, "apply", "--patch", patchPath, "--dir", dir)

	var perr *InvalidPatchError
	require.ErrorAs(t, err, &perr)
	assert.Empty(t, stdout)
	assert.Equal(t, "const a = 1;\n", readFile(t, filepath.Join(dir, "a.js")))
}

func TestCLI_RejectsPositionalArgs(t *testing.T) {
	_, _, err := runCLI(t, "apply", "extra")
	assert.Error(t, err)
}
