package builtin

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/taigo/tai/pkg/tool"
	"github.com/taigo/tai/pkg/workspace"
)

// globFilter holds pre-validated include/exclude patterns for walk filtering.
type globFilter struct {
	include []string
	exclude []string
}

func newGlobFilter(args map[string]any) (*globFilter, error) {
	f := &globFilter{
		include: stringSliceArg(args, "include_globs"),
		exclude: stringSliceArg(args, "exclude_globs"),
	}
	for _, pat := range append(append([]string{}, f.include...), f.exclude...) {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("bad glob %s", pat)
		}
	}
	return f, nil
}

// keep reports whether the relative slash path passes the filter set.
func (f *globFilter) keep(rel string) bool {
	for _, pat := range f.exclude {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, pat := range f.include {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
	}
	return false
}

// pathInfo reports per-entry metadata: type, size, timestamps, POSIX mode.
func pathInfo(path string) (map[string]any, error) {
	md, err := os.Lstat(path)
	if err != nil {
		return nil, fmt.Errorf("stat failed for %s: %w", path, err)
	}

	fileType := "other"
	switch {
	case md.IsDir():
		fileType = "dir"
	case md.Mode().IsRegular():
		fileType = "file"
	case md.Mode()&os.ModeSymlink != 0:
		fileType = "symlink"
	}

	mode := ""
	if runtime.GOOS != "windows" {
		mode = fmt.Sprintf("%04o", md.Mode().Perm())
	}

	// Birth time is not portably available, so created is always null; the
	// key stays in the payload to keep the result shape stable.
	return map[string]any{
		"path":     path,
		"type":     fileType,
		"size":     md.Size(),
		"modified": md.ModTime().UTC().Format(time.RFC3339),
		"created":  nil,
		"mode":     mode,
	}, nil
}

// ListDirTool lists directory entries with optional recursion and filtering.
type ListDirTool struct {
	ws *workspace.Workspace
}

// NewListDirTool constructs a ListDirTool bound to ws.
func NewListDirTool(ws *workspace.Workspace) *ListDirTool {
	return &ListDirTool{ws: ws}
}

func (t *ListDirTool) Name() string { return "list_dir" }

func (t *ListDirTool) Description() string {
	return "List files in a directory with optional recursion and glob filters."
}

func (t *ListDirTool) Params() []tool.Param {
	return []tool.Param{
		{Name: "path", Type: "string", Description: "Directory path (default '.')"},
		{Name: "recursive", Type: "boolean", Description: "Recurse into subdirectories (default false)"},
		{Name: "include_globs", Type: "array", Description: "Include glob patterns"},
		{Name: "exclude_globs", Type: "array", Description: "Exclude glob patterns"},
		{Name: "limit", Type: "integer", Description: "Limit number of entries (default 1000)"},
		{Name: "include_hidden", Type: "boolean", Description: "Include dotfiles (default false)"},
	}
}

func (t *ListDirTool) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	pathArg := stringArgDefault(args, "path", ".")
	recursive := boolArgDefault(args, "recursive", false)
	includeHidden := boolArgDefault(args, "include_hidden", false)
	limit := intArgDefault(args, "limit", 1000)

	path, err := t.ws.Resolve(pathArg, false)
	if err != nil {
		return nil, err
	}
	filter, err := newGlobFilter(args)
	if err != nil {
		return nil, err
	}

	var items []map[string]any
	appendEntry := func(p string) error {
		rel, relErr := filepath.Rel(path, p)
		if relErr != nil {
			rel = filepath.Base(p)
		}
		rel = filepath.ToSlash(rel)
		if !includeHidden && strings.HasPrefix(filepath.Base(p), ".") {
			return nil
		}
		if !filter.keep(rel) {
			return nil
		}
		info, infoErr := pathInfo(p)
		if infoErr != nil {
			return infoErr
		}
		items = append(items, info)
		return nil
	}

	if recursive {
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return nil
			}
			if p == path {
				return nil
			}
			if !includeHidden && d.IsDir() && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if appendErr := appendEntry(p); appendErr != nil {
				return appendErr
			}
			if len(items) >= limit {
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		entries, readErr := os.ReadDir(path)
		if readErr != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, readErr)
		}
		for _, entry := range entries {
			if appendErr := appendEntry(filepath.Join(path, entry.Name())); appendErr != nil {
				return nil, appendErr
			}
			if len(items) >= limit {
				break
			}
		}
	}

	return map[string]any{"path": path, "count": len(items), "items": items}, nil
}

// StatTool reports metadata for a single path.
type StatTool struct {
	ws *workspace.Workspace
}

// NewStatTool constructs a StatTool bound to ws.
func NewStatTool(ws *workspace.Workspace) *StatTool {
	return &StatTool{ws: ws}
}

func (t *StatTool) Name() string { return "stat" }

func (t *StatTool) Description() string {
	return "Get file metadata (type, size, mtime, mode)."
}

func (t *StatTool) Params() []tool.Param {
	return []tool.Param{
		{Name: "path", Type: "string", Description: "Path to stat", Required: true},
	}
}

func (t *StatTool) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	pathArg, err := stringArg(args, "path")
	if err != nil {
		return nil, err
	}
	path, err := t.ws.Resolve(pathArg, false)
	if err != nil {
		return nil, err
	}
	return pathInfo(path)
}

// GlobTool finds files matching a single pattern under a root.
type GlobTool struct {
	ws *workspace.Workspace
}

// NewGlobTool constructs a GlobTool bound to ws.
func NewGlobTool(ws *workspace.Workspace) *GlobTool {
	return &GlobTool{ws: ws}
}

func (t *GlobTool) Name() string { return "glob" }

func (t *GlobTool) Description() string {
	return "Find files matching a glob pattern under a root (recursive)."
}

func (t *GlobTool) Params() []tool.Param {
	return []tool.Param{
		{Name: "pattern", Type: "string", Description: "Glob pattern (e.g., src/**/*.go)", Required: true},
		{Name: "root", Type: "string", Description: "Root directory to search (default '.')"},
		{Name: "limit", Type: "integer", Description: "Max results (default 200)"},
	}
}

func (t *GlobTool) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	pattern, err := stringArg(args, "pattern")
	if err != nil {
		return nil, err
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("bad glob %s", pattern)
	}
	rootArg := stringArgDefault(args, "root", ".")
	limit := intArgDefault(args, "limit", 200)

	root, err := t.ws.Resolve(rootArg, false)
	if err != nil {
		return nil, err
	}

	var paths []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}
		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(rel)); ok {
			paths = append(paths, p)
			if len(paths) >= limit {
				return filepath.SkipAll
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"root":    root,
		"pattern": pattern,
		"count":   len(paths),
		"paths":   paths,
	}, nil
}
