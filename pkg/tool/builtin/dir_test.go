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

func seedTree(t *testing.T, ws *workspace.Workspace) {
	t.Helper()
	writeFixture(t, ws, "a.go", "package a\n")
	writeFixture(t, ws, "b.txt", "text\n")
	writeFixture(t, ws, ".hidden", "secret\n")
	writeFixture(t, ws, filepath.Join("sub", "c.go"), "package c\n")
	writeFixture(t, ws, filepath.Join("sub", "d.md"), "# d\n")
}

func entryNames(t *testing.T, res map[string]any) []string {
	t.Helper()
	items, ok := res["items"].([]map[string]any)
	require.True(t, ok)
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, filepath.Base(item["path"].(string)))
	}
	return names
}

func TestListDirNonRecursiveSkipsHidden(t *testing.T) {
	ws := newTestWorkspace(t)
	seedTree(t, ws)
	lt := NewListDirTool(ws)

	res, err := lt.Execute(context.Background(), map[string]any{})
	require.NoError(t, err)
	names := entryNames(t, res)
	assert.ElementsMatch(t, []string{"a.go", "b.txt", "sub"}, names)
	assert.Equal(t, 3, res["count"])
}

func TestListDirIncludeHidden(t *testing.T) {
	ws := newTestWorkspace(t)
	seedTree(t, ws)
	lt := NewListDirTool(ws)

	res, err := lt.Execute(context.Background(), map[string]any{"include_hidden": true})
	require.NoError(t, err)
	assert.Contains(t, entryNames(t, res), ".hidden")
}

func TestListDirRecursiveWithGlobs(t *testing.T) {
	ws := newTestWorkspace(t)
	seedTree(t, ws)
	lt := NewListDirTool(ws)

	res, err := lt.Execute(context.Background(), map[string]any{
		"recursive":     true,
		"include_globs": []any{"**/*.go"},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.go", "c.go"}, entryNames(t, res))

	res, err = lt.Execute(context.Background(), map[string]any{
		"recursive":     true,
		"exclude_globs": []any{"sub/**"},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.go", "b.txt", "sub"}, entryNames(t, res))
}

func TestListDirRecursivePrunesHiddenDirs(t *testing.T) {
	ws := newTestWorkspace(t)
	seedTree(t, ws)
	writeFixture(t, ws, filepath.Join(".config", "settings.toml"), "k = 1\n")
	lt := NewListDirTool(ws)

	// Hidden directories are pruned entirely, so their contents never leak
	// into a default recursive listing.
	res, err := lt.Execute(context.Background(), map[string]any{"recursive": true})
	require.NoError(t, err)
	names := entryNames(t, res)
	assert.NotContains(t, names, ".config")
	assert.NotContains(t, names, "settings.toml")

	res, err = lt.Execute(context.Background(), map[string]any{
		"recursive":      true,
		"include_hidden": true,
	})
	require.NoError(t, err)
	names = entryNames(t, res)
	assert.Contains(t, names, ".config")
	assert.Contains(t, names, "settings.toml")
}

func TestListDirLimit(t *testing.T) {
	ws := newTestWorkspace(t)
	seedTree(t, ws)
	lt := NewListDirTool(ws)

	res, err := lt.Execute(context.Background(), map[string]any{
		"recursive": true,
		"limit":     float64(2),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res["count"])
}

func TestListDirRejectsBadGlob(t *testing.T) {
	ws := newTestWorkspace(t)
	lt := NewListDirTool(ws)
	_, err := lt.Execute(context.Background(), map[string]any{
		"include_globs": []any{"[unclosed"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad glob")
}

func TestStatReportsMetadata(t *testing.T) {
	ws := newTestWorkspace(t)
	writeFixture(t, ws, "file.txt", "12345")
	st := NewStatTool(ws)

	res, err := st.Execute(context.Background(), map[string]any{"path": "file.txt"})
	require.NoError(t, err)
	assert.Equal(t, "file", res["type"])
	assert.Equal(t, int64(5), res["size"])
	assert.NotEmpty(t, res["modified"])

	// created is always present but null: there is no portable birth time.
	created, ok := res["created"]
	require.True(t, ok)
	assert.Nil(t, created)

	res, err = st.Execute(context.Background(), map[string]any{"path": "."})
	require.NoError(t, err)
	assert.Equal(t, "dir", res["type"])
}

func TestGlobFindsRecursive(t *testing.T) {
	ws := newTestWorkspace(t)
	seedTree(t, ws)
	gt := NewGlobTool(ws)

	res, err := gt.Execute(context.Background(), map[string]any{"pattern": "**/*.go"})
	require.NoError(t, err)
	paths, ok := res["paths"].([]string)
	require.True(t, ok)
	require.Len(t, paths, 2)
	assert.Equal(t, 2, res["count"])
	for _, p := range paths {
		assert.True(t, filepath.IsAbs(p))
	}
}

func TestGlobLimitCapsResults(t *testing.T) {
	ws := newTestWorkspace(t)
	for _, name := range []string{"1.txt", "2.txt", "3.txt"} {
		writeFixture(t, ws, name, "x")
	}
	gt := NewGlobTool(ws)

	res, err := gt.Execute(context.Background(), map[string]any{
		"pattern": "*.txt",
		"limit":   float64(2),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res["count"])
}

func TestGlobRootOutsideWorkspaceFails(t *testing.T) {
	ws := newTestWorkspace(t)
	gt := NewGlobTool(ws)
	_, err := gt.Execute(context.Background(), map[string]any{
		"pattern": "*",
		"root":    "..",
	})
	assert.ErrorIs(t, err, workspace.ErrPathEscape)
}

func TestPathInfoSymlink(t *testing.T) {
	ws := newTestWorkspace(t)
	target := writeFixture(t, ws, "target.txt", "x")
	link := filepath.Join(ws.Root(), "link.txt")
	require.NoError(t, os.Symlink(target, link))

	info, err := pathInfo(link)
	require.NoError(t, err)
	assert.Equal(t, "symlink", info["type"])
}
