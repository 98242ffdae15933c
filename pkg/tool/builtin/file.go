package builtin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/taigo/tai/pkg/tool"
	"github.com/taigo/tai/pkg/workspace"
)

// ReadFileTool returns a line window of a text file.
type ReadFileTool struct {
	ws *workspace.Workspace
}

// NewReadFileTool constructs a ReadFileTool bound to ws.
func NewReadFileTool(ws *workspace.Workspace) *ReadFileTool {
	return &ReadFileTool{ws: ws}
}

func (t *ReadFileTool) Name() string { return "read_file" }

func (t *ReadFileTool) Description() string {
	return "Read a text file with optional line offset and limit. Returns content and metadata."
}

func (t *ReadFileTool) Params() []tool.Param {
	return []tool.Param{
		{Name: "path", Type: "string", Description: "File path to read (relative to workspace)", Required: true},
		{Name: "offset", Type: "integer", Description: "Optional starting line (0-based)"},
		{Name: "limit", Type: "integer", Description: "Optional number of lines to return"},
	}
}

func (t *ReadFileTool) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	pathArg, err := stringArg(args, "path")
	if err != nil {
		return nil, err
	}
	offset := intArgDefault(args, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	path, err := t.ws.Resolve(pathArg, false)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed reading %s: %w", path, err)
	}

	lines := splitLines(string(data))
	total := len(lines)
	start := offset
	if start > total {
		start = total
	}
	end := total
	if limit := intArgDefault(args, "limit", -1); limit >= 0 {
		end = start + limit
		if end > total {
			end = total
		}
	}

	return map[string]any{
		"path":        path,
		"start":       start,
		"end":         end,
		"total_lines": total,
		"content":     strings.Join(lines[start:end], "\n"),
	}, nil
}

// splitLines mirrors line iteration without treating a trailing newline as an
// extra empty line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// WriteFileTool writes full file content, atomically by default.
type WriteFileTool struct {
	ws *workspace.Workspace
}

// NewWriteFileTool constructs a WriteFileTool bound to ws.
func NewWriteFileTool(ws *workspace.Workspace) *WriteFileTool {
	return &WriteFileTool{ws: ws}
}

func (t *WriteFileTool) Name() string { return "write_file" }

func (t *WriteFileTool) Description() string {
	return "Write content to a file atomically. Creates parent directories if needed."
}

func (t *WriteFileTool) Params() []tool.Param {
	return []tool.Param{
		{Name: "path", Type: "string", Description: "File path to write (relative to workspace)", Required: true},
		{Name: "content", Type: "string", Description: "Full file content to write", Required: true},
		{Name: "atomic", Type: "boolean", Description: "Write atomically (default true)"},
		{Name: "create_parents", Type: "boolean", Description: "Create parent directories if needed (default true)"},
	}
}

func (t *WriteFileTool) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	pathArg, err := stringArg(args, "path")
	if err != nil {
		return nil, err
	}
	content, err := stringArg(args, "content")
	if err != nil {
		return nil, err
	}
	atomic := boolArgDefault(args, "atomic", true)
	createParents := boolArgDefault(args, "create_parents", true)

	path, err := t.ws.Resolve(pathArg, true)
	if err != nil {
		return nil, err
	}
	if createParents {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
		}
	}

	if atomic {
		err = atomicWrite(path, []byte(content))
	} else {
		err = os.WriteFile(path, []byte(content), 0o644)
	}
	if err != nil {
		return nil, err
	}

	return map[string]any{"path": path, "bytes": len(content)}, nil
}

// atomicWrite writes data to a uniquely-named temporary sibling of path and
// renames it over the target, so other readers only ever observe the old or
// the fully-new content. An existing target keeps its mode bits.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set mode on %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// Replacement is one atomic unit inside a patch request.
type Replacement struct {
	OldString  string
	NewString  string
	ReplaceAll bool
}

// PatchFileTool applies an ordered list of string replacements against a
// single snapshot of the file and commits the whole buffer at most once.
type PatchFileTool struct {
	ws *workspace.Workspace
}

// NewPatchFileTool constructs a PatchFileTool bound to ws.
func NewPatchFileTool(ws *workspace.Workspace) *PatchFileTool {
	return &PatchFileTool{ws: ws}
}

func (t *PatchFileTool) Name() string { return "patch_file" }

func (t *PatchFileTool) Description() string {
	return "Apply multiple string replacements to a file (transactional). Each replacement may be replace_all or single occurrence."
}

func (t *PatchFileTool) Params() []tool.Param {
	return []tool.Param{
		{Name: "path", Type: "string", Description: "File path to patch", Required: true},
		{Name: "replacements", Type: "array", Description: "Array of {old_string,new_string,replace_all?}", Required: true},
		{Name: "atomic", Type: "boolean", Description: "Apply atomically (default true)"},
	}
}

func (t *PatchFileTool) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	pathArg, err := stringArg(args, "path")
	if err != nil {
		return nil, err
	}
	path, err := t.ws.Resolve(pathArg, false)
	if err != nil {
		return nil, err
	}
	replacements, err := parseReplacements(args)
	if err != nil {
		return nil, err
	}
	atomic := boolArgDefault(args, "atomic", true)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	content := string(data)

	// All replacements accumulate into one candidate buffer; nothing is
	// written per-replacement.
	updated := content
	counts := make([]int, 0, len(replacements))
	total := 0
	for _, rep := range replacements {
		var n int
		if rep.ReplaceAll {
			n = strings.Count(updated, rep.OldString)
			updated = strings.ReplaceAll(updated, rep.OldString, rep.NewString)
		} else if strings.Contains(updated, rep.OldString) {
			updated = strings.Replace(updated, rep.OldString, rep.NewString, 1)
			n = 1
		}
		counts = append(counts, n)
		total += n
	}

	changed := updated != content
	if changed {
		if atomic {
			err = atomicWrite(path, []byte(updated))
		} else {
			err = os.WriteFile(path, []byte(updated), 0o644)
		}
		if err != nil {
			return nil, err
		}
	}

	return map[string]any{
		"path":               path,
		"changed":            changed,
		"replacements":       counts,
		"total_replacements": total,
	}, nil
}

func parseReplacements(args map[string]any) ([]Replacement, error) {
	raw, ok := args["replacements"].([]any)
	if !ok {
		return nil, errors.New("missing 'replacements'")
	}
	out := make([]Replacement, 0, len(raw))
	for _, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, errors.New("replacement must be an object")
		}
		oldS, ok := obj["old_string"].(string)
		if !ok {
			return nil, errors.New("replacement missing 'old_string'")
		}
		if oldS == "" {
			return nil, errors.New("old_string cannot be empty")
		}
		newS, ok := obj["new_string"].(string)
		if !ok {
			return nil, errors.New("replacement missing 'new_string'")
		}
		all, _ := obj["replace_all"].(bool)
		out = append(out, Replacement{OldString: oldS, NewString: newS, ReplaceAll: all})
	}
	return out, nil
}
