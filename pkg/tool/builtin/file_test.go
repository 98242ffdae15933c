package builtin

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigo/tai/pkg/workspace"
)

func newTestWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	ws, err := workspace.New(dir)
	require.NoError(t, err)
	return ws
}

func writeFixture(t *testing.T, ws *workspace.Workspace, name, content string) string {
	t.Helper()
	path := filepath.Join(ws.Root(), name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadFileLineWindow(t *testing.T) {
	ws := newTestWorkspace(t)
	writeFixture(t, ws, "a.txt", "x\ny\nz")
	rt := NewReadFileTool(ws)

	tests := []struct {
		name    string
		args    map[string]any
		start   int
		end     int
		content string
	}{
		{name: "whole file", args: map[string]any{"path": "a.txt"}, start: 0, end: 3, content: "x\ny\nz"},
		{name: "limit one", args: map[string]any{"path": "a.txt", "limit": float64(1)}, start: 0, end: 1, content: "x"},
		{name: "offset", args: map[string]any{"path": "a.txt", "offset": float64(1)}, start: 1, end: 3, content: "y\nz"},
		{name: "offset and limit", args: map[string]any{"path": "a.txt", "offset": float64(1), "limit": float64(1)}, start: 1, end: 2, content: "y"},
		{name: "offset past end clamps", args: map[string]any{"path": "a.txt", "offset": float64(10)}, start: 3, end: 3, content: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := rt.Execute(context.Background(), tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.start, res["start"])
			assert.Equal(t, tt.end, res["end"])
			assert.Equal(t, 3, res["total_lines"])
			assert.Equal(t, tt.content, res["content"])
		})
	}
}

func TestReadFileMissingPath(t *testing.T) {
	ws := newTestWorkspace(t)
	rt := NewReadFileTool(ws)
	_, err := rt.Execute(context.Background(), map[string]any{"path": "nope.txt"})
	require.Error(t, err)
}

func TestWriteFileAtomicReplacesContent(t *testing.T) {
	ws := newTestWorkspace(t)
	path := writeFixture(t, ws, "out.txt", "old content")
	wt := NewWriteFileTool(ws)

	res, err := wt.Execute(context.Background(), map[string]any{
		"path":    "out.txt",
		"content": "new content",
	})
	require.NoError(t, err)
	assert.Equal(t, len("new content"), res["bytes"])

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new content", string(data))

	// No temp sibling left behind.
	entries, err := os.ReadDir(ws.Root())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.txt", entries[0].Name())
}

func TestWriteFileCreatesParents(t *testing.T) {
	ws := newTestWorkspace(t)
	wt := NewWriteFileTool(ws)

	_, err := wt.Execute(context.Background(), map[string]any{
		"path":    filepath.Join("nested", "deep", "new.txt"),
		"content": "hello",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(ws.Root(), "nested", "deep", "new.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestWriteFilePreservesMode(t *testing.T) {
	ws := newTestWorkspace(t)
	path := writeFixture(t, ws, "script.sh", "#!/bin/sh\n")
	require.NoError(t, os.Chmod(path, 0o755))
	wt := NewWriteFileTool(ws)

	_, err := wt.Execute(context.Background(), map[string]any{
		"path":    "script.sh",
		"content": "#!/bin/sh\necho hi\n",
	})
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestWriteFileRejectsEscape(t *testing.T) {
	ws := newTestWorkspace(t)
	wt := NewWriteFileTool(ws)
	_, err := wt.Execute(context.Background(), map[string]any{
		"path":    "../escape.txt",
		"content": "x",
	})
	assert.ErrorIs(t, err, workspace.ErrPathEscape)
}

func TestPatchFileSingleAndReplaceAll(t *testing.T) {
	ws := newTestWorkspace(t)
	path := writeFixture(t, ws, "f.txt", "aaa bbb aaa")
	pt := NewPatchFileTool(ws)

	res, err := pt.Execute(context.Background(), map[string]any{
		"path": "f.txt",
		"replacements": []any{
			map[string]any{"old_string": "bbb", "new_string": "BBB"},
			map[string]any{"old_string": "aaa", "new_string": "ccc", "replace_all": true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, true, res["changed"])
	assert.Equal(t, []int{1, 2}, res["replacements"])
	assert.Equal(t, 3, res["total_replacements"])

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ccc BBB ccc", string(data))
}

func TestPatchFileNoOpLeavesFileUntouched(t *testing.T) {
	ws := newTestWorkspace(t)
	path := writeFixture(t, ws, "f.txt", "stable")
	info, err := os.Stat(path)
	require.NoError(t, err)
	pt := NewPatchFileTool(ws)

	res, err := pt.Execute(context.Background(), map[string]any{
		"path": "f.txt",
		"replacements": []any{
			map[string]any{"old_string": "absent", "new_string": "x"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, false, res["changed"])
	assert.Equal(t, []int{0}, res["replacements"])
	assert.Equal(t, 0, res["total_replacements"])

	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), after.ModTime())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "stable", string(data))
}

func TestPatchFileAllOrNothing(t *testing.T) {
	ws := newTestWorkspace(t)
	path := writeFixture(t, ws, "f.txt", "alpha beta")
	pt := NewPatchFileTool(ws)

	// Second replacement misses; the first still commits as part of the one
	// full-buffer write.
	res, err := pt.Execute(context.Background(), map[string]any{
		"path": "f.txt",
		"replacements": []any{
			map[string]any{"old_string": "alpha", "new_string": "gamma"},
			map[string]any{"old_string": "missing", "new_string": "x"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, true, res["changed"])
	assert.Equal(t, []int{1, 0}, res["replacements"])
	assert.Equal(t, 1, res["total_replacements"])

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "gamma beta", string(data))
}

func TestPatchFileSequentialReplacementsSeeEarlierEdits(t *testing.T) {
	ws := newTestWorkspace(t)
	path := writeFixture(t, ws, "f.txt", "one")
	pt := NewPatchFileTool(ws)

	res, err := pt.Execute(context.Background(), map[string]any{
		"path": "f.txt",
		"replacements": []any{
			map[string]any{"old_string": "one", "new_string": "two"},
			map[string]any{"old_string": "two", "new_string": "three"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1}, res["replacements"])

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "three", string(data))
}

func TestPatchFileRejectsEmptyOldString(t *testing.T) {
	ws := newTestWorkspace(t)
	writeFixture(t, ws, "f.txt", "content")
	pt := NewPatchFileTool(ws)

	_, err := pt.Execute(context.Background(), map[string]any{
		"path": "f.txt",
		"replacements": []any{
			map[string]any{"old_string": "", "new_string": "x"},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "old_string cannot be empty")
}
