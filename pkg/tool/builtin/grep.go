package builtin

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/taigo/tai/pkg/tool"
	"github.com/taigo/tai/pkg/workspace"
)

const binarySampleBytes = 8000

// GrepTool searches file contents line by line under a root, honoring
// .gitignore and skipping binary files.
type GrepTool struct {
	ws *workspace.Workspace
}

// NewGrepTool constructs a GrepTool bound to ws.
func NewGrepTool(ws *workspace.Workspace) *GrepTool {
	return &GrepTool{ws: ws}
}

func (t *GrepTool) Name() string { return "grep" }

func (t *GrepTool) Description() string {
	return "Search files for a pattern. Respects .gitignore. Returns file, line, and match snippet."
}

func (t *GrepTool) Params() []tool.Param {
	return []tool.Param{
		{Name: "pattern", Type: "string", Description: "Regex or literal text to search for", Required: true},
		{Name: "root", Type: "string", Description: "Root directory to search (default '.')"},
		{Name: "include_globs", Type: "array", Description: "Include glob patterns"},
		{Name: "exclude_globs", Type: "array", Description: "Exclude glob patterns"},
		{Name: "literal", Type: "boolean", Description: "Treat pattern as literal (default false)"},
		{Name: "case_sensitive", Type: "boolean", Description: "Case sensitive (default true)"},
		{Name: "max_results", Type: "integer", Description: "Maximum results to return (default 100)"},
	}
}

func (t *GrepTool) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	pattern, err := stringArg(args, "pattern")
	if err != nil {
		return nil, err
	}
	rootArg := stringArgDefault(args, "root", ".")
	literal := boolArgDefault(args, "literal", false)
	caseSensitive := boolArgDefault(args, "case_sensitive", true)
	maxResults := intArgDefault(args, "max_results", 100)

	root, err := t.ws.Resolve(rootArg, false)
	if err != nil {
		return nil, err
	}
	filter, err := newGlobFilter(args)
	if err != nil {
		return nil, err
	}
	re, err := compilePattern(pattern, literal, caseSensitive)
	if err != nil {
		return nil, err
	}

	// Version-control-ignored paths are skipped; the .gitignore at the
	// search root is authoritative.
	var ignorer *ignore.GitIgnore
	if gi, giErr := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); giErr == nil {
		ignorer = gi
	}

	results := make([]map[string]any, 0, 16)
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if ignorer != nil && ignorer.MatchesPath(rel) {
			return nil
		}
		if !filter.keep(rel) {
			return nil
		}

		data, readErr := os.ReadFile(p)
		if readErr != nil {
			return nil
		}
		if isBinary(data) {
			return nil
		}

		for i, line := range splitLines(string(data)) {
			if re.MatchString(line) {
				results = append(results, map[string]any{
					"file":     rel,
					"abs_path": p,
					"line":     i + 1,
					"match":    line,
				})
				if len(results) >= maxResults {
					return filepath.SkipAll
				}
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
		"count":   len(results),
		"results": results,
	}, nil
}

func compilePattern(pattern string, literal, caseSensitive bool) (*regexp.Regexp, error) {
	expr := pattern
	if literal {
		expr = regexp.QuoteMeta(pattern)
	}
	if !caseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern: %w", err)
	}
	return re, nil
}

// isBinary samples the head of the buffer for NUL bytes.
func isBinary(buf []byte) bool {
	n := len(buf)
	if n > binarySampleBytes {
		n = binarySampleBytes
	}
	return bytes.IndexByte(buf[:n], 0) >= 0
}
