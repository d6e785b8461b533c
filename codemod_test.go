package codemod

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func newTestApp(t *testing.T, cfg *Config) (*App, *[]FileResult) {
	t.Helper()
	app, err := NewApp(cfg)
	require.NoError(t, err)
	var results []FileResult
	app.SetReportCallback(func(r FileResult) { results = append(results, r) })
	return app, &results
}

func TestApp_Execute(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"src/a.js":      "const a = \"a\";\n",
		"src/b.test.ts": "test('b', () => {});\n",
		"src/c.js":      "const untouched = 1;\n",
	})
	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "src/c.js"), old, old))

	patch := &Patch{Operations: []Operation{
		RenameIdentifier{File: "src/a.js", OldName: "a", NewName: "b"},
		InsertImport{File: "src/b.test.ts", Module: "vitest", Named: []string{"describe"}},
		ReplaceStringLiteral{File: "src/c.js", Old: "nope", New: "x"},
		ReplaceStringLiteral{File: "src/a.js", Old: "a", New: "z"},
	}}

	app, results := newTestApp(t, &Config{Dir: dir})
	summary, err := app.Execute(context.Background(), patch)
	require.NoError(t, err)

	assert.Equal(t, []FileResult{
		{Path: "src/a.js", Status: StatusPatched, Applied: 2},
		{Path: "src/b.test.ts", Status: StatusPatched, Applied: 1},
		{Path: "src/c.js", Status: StatusNoChanges, Applied: 1},
	}, *results)
	assert.Equal(t, []string{"src/a.js", "src/b.test.ts"}, summary.Patched)
	assert.Equal(t, []string{"src/c.js"}, summary.Unchanged)

	assert.Equal(t, "const b = \"z\";\n", readFile(t, filepath.Join(dir, "src/a.js")))
	assert.Equal(t, "import { describe } from \"vitest\";\ntest('b', () => {});\n", readFile(t, filepath.Join(dir, "src/b.test.ts")))

	info, err := os.Stat(filepath.Join(dir, "src/c.js"))
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(old), "unchanged file must not be rewritten")
}

func TestApp_Execute_RoundTripIsNoChange(t *testing.T) {
	dir := t.TempDir()
	src := "/* c */\nimport { a } from \"m\";\n\nexport default function () {\n\treturn a ?? `t`;\n}\n"
	writeFiles(t, dir, map[string]string{"a.js": src})

	app, results := newTestApp(t, &Config{Dir: dir})
	_, err := app.Execute(context.Background(), &Patch{Operations: []Operation{
		InsertImport{File: "a.js", Module: "m", Named: []string{"a"}},
		RenameIdentifier{File: "a.js", OldName: "zzz", NewName: "y"},
	}})
	require.NoError(t, err)

	require.Len(t, *results, 1)
	assert.Equal(t, StatusNoChanges, (*results)[0].Status)
	assert.Equal(t, src, readFile(t, filepath.Join(dir, "a.js")))
}

func TestApp_Execute_CRLFIsNormalized(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.js": "const a = 1;\r\n"})

	app, results := newTestApp(t, &Config{Dir: dir})
	_, err := app.Execute(context.Background(), &Patch{Operations: []Operation{
		RenameIdentifier{File: "a.js", OldName: "zzz", NewName: "y"},
	}})
	require.NoError(t, err)

	assert.Equal(t, StatusPatched, (*results)[0].Status)
	assert.Equal(t, "const a = 1;\n", readFile(t, filepath.Join(dir, "a.js")))
}

func TestApp_Execute_AbortsOnFirstFailure(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.js": "const a = 1;\n",
		"b.js": "const = ;\n",
		"c.js": "const a = 1;\n",
	})

	patch := &Patch{Operations: []Operation{
		RenameIdentifier{File: "a.js", OldName: "a", NewName: "b"},
		RenameIdentifier{File: "b.js", OldName: "a", NewName: "b"},
		RenameIdentifier{File: "c.js", OldName: "a", NewName: "b"},
	}}

	app, results := newTestApp(t, &Config{Dir: dir})
	_, err := app.Execute(context.Background(), patch)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "b.js", perr.Path)

	assert.Equal(t, []FileResult{{Path: "a.js", Status: StatusPatched, Applied: 1}}, *results)
	assert.Equal(t, "const b = 1;\n", readFile(t, filepath.Join(dir, "a.js")))
	assert.Equal(t, "const a = 1;\n", readFile(t, filepath.Join(dir, "c.js")))
}

func TestApp_Execute_MissingFile(t *testing.T) {
	app, _ := newTestApp(t, &Config{Dir: t.TempDir()})
	_, err := app.Execute(context.Background(), &Patch{Operations: []Operation{
		RenameIdentifier{File: "missing.js", OldName: "a", NewName: "b"},
	}})

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.True(t, os.IsNotExist(ioErr.Err))
}

func TestApp_Execute_DryRun(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.js": "const a = 1;\n"})

	app, results := newTestApp(t, &Config{Dir: dir, DryRun: true})
	_, err := app.Execute(context.Background(), &Patch{Operations: []Operation{
		RenameIdentifier{File: "a.js", OldName: "a", NewName: "b"},
	}})
	require.NoError(t, err)

	assert.Equal(t, StatusPatched, (*results)[0].Status)
	assert.Equal(t, "const a = 1;\n", readFile(t, filepath.Join(dir, "a.js")))
}

type recordingWriter struct {
	writes map[string]string
}

func (w *recordingWriter) WriteFile(path string, content []byte) error {
	w.writes[path] = string(content)
	return nil
}

func TestApp_Execute_CustomWriterAndFilter(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.js": "const a = 1;\n",
		"b.js": "const a = 1;\n",
	})
	w := &recordingWriter{writes: map[string]string{}}

	app, results := newTestApp(t, &Config{Dir: dir, Files: []string{"b.js"}, Writer: w})
	_, err := app.Execute(context.Background(), &Patch{Operations: []Operation{
		RenameIdentifier{File: "a.js", OldName: "a", NewName: "b"},
		RenameIdentifier{File: "b.js", OldName: "a", NewName: "b"},
	}})
	require.NoError(t, err)

	assert.Len(t, *results, 1)
	assert.Equal(t, map[string]string{filepath.Join(dir, "b.js"): "const b = 1;\n"}, w.writes)
}

func TestApp_Execute_NothingToDo(t *testing.T) {
	app, results := newTestApp(t, &Config{Dir: t.TempDir()})
	summary, err := app.Execute(context.Background(), &Patch{})
	require.NoError(t, err)
	assert.Equal(t, "Nothing to do", summary.Message)
	assert.Empty(t, *results)
}

func TestApp_Execute_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.js": "const a = 1;\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	app, _ := newTestApp(t, &Config{Dir: dir})
	_, err := app.Execute(ctx, &Patch{Operations: []Operation{
		RenameIdentifier{File: "a.js", OldName: "a", NewName: "b"},
	}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "const a = 1;\n", readFile(t, filepath.Join(dir, "a.js")))
}

func TestFileManager_KeepsMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.js")
	require.NoError(t, os.WriteFile(path, []byte("x;\n"), 0644))
	require.NoError(t, os.Chmod(path, 0755))

	require.NoError(t, NewFileManager().WriteFile(path, []byte("y;\n")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
	assert.Equal(t, "y;\n", readFile(t, path))
}
