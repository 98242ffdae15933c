// Package workspace confines filesystem access to a single root directory.
// Every path a tool receives from the model goes through Resolve before it is
// touched; nothing outside the root is ever reachable.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathEscape reports a resolved path that falls outside the workspace root.
var ErrPathEscape = errors.New("path escapes workspace root")

// Workspace holds the canonical root directory for a session. The root is
// resolved once at construction; later changes to the process working
// directory do not move the sandbox boundary.
type Workspace struct {
	root string
}

// New canonicalizes root and returns a Workspace anchored there. The
// directory must exist.
func New(root string) (*Workspace, error) {
	trimmed := strings.TrimSpace(root)
	if trimmed == "" {
		return nil, errors.New("workspace root is empty")
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root %s: %w", trimmed, err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("canonicalize workspace root %s: %w", abs, err)
	}
	info, err := os.Stat(canonical)
	if err != nil {
		return nil, fmt.Errorf("stat workspace root %s: %w", canonical, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root %s is not a directory", canonical)
	}
	return &Workspace{root: canonical}, nil
}

// Root returns the canonical workspace root.
func (w *Workspace) Root() string {
	return w.root
}

// Resolve turns input into an absolute, symlink-resolved path and verifies it
// lies within the workspace root. Relative inputs are joined against the
// root. When allowNonexistent is true only the parent directory must exist;
// the final component is appended without canonicalization so that tools may
// create new files.
//
// Resolve never creates or modifies anything; it only reads the filesystem
// to resolve symlinks.
func (w *Workspace) Resolve(input string, allowNonexistent bool) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", errors.New("path is empty")
	}

	abs := trimmed
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(w.root, abs)
	}
	abs = filepath.Clean(abs)

	var canonical string
	if allowNonexistent {
		parent, err := filepath.EvalSymlinks(filepath.Dir(abs))
		if err != nil {
			return "", fmt.Errorf("canonicalize parent of %s: %w", abs, err)
		}
		canonical = filepath.Join(parent, filepath.Base(abs))
	} else {
		resolved, err := filepath.EvalSymlinks(abs)
		if err != nil {
			return "", fmt.Errorf("canonicalize %s: %w", abs, err)
		}
		canonical = resolved
	}

	if !w.contains(canonical) {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, trimmed)
	}
	return canonical, nil
}

func (w *Workspace) contains(path string) bool {
	if path == w.root {
		return true
	}
	return strings.HasPrefix(path, w.root+string(filepath.Separator))
}
