package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ContextFileName is picked up automatically from the working directory and
// the git root.
const ContextFileName = ".context.tai"

const contextExt = ".context.tai"

// ContextFile is one block of project context for the system prompt.
type ContextFile struct {
	// Source identifies where the content came from, for display.
	Source  string
	Content string
}

// DiscoverContexts collects context files in a fixed order: global contexts
// named in the config, then the git root's local file, then the working
// directory's, then any explicitly requested named contexts. Duplicate paths
// are loaded once.
func DiscoverContexts(cfg *Config, named []string) ([]ContextFile, error) {
	var files []ContextFile
	seen := map[string]bool{}

	add := func(source, path string) error {
		abs, err := filepath.Abs(path)
		if err == nil {
			path = abs
		}
		if seen[path] || !fileExists(path) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read context file %s: %w", path, err)
		}
		seen[path] = true
		files = append(files, ContextFile{Source: source, Content: string(data)})
		return nil
	}

	for _, name := range cfg.GlobalContexts {
		path, err := namedContextPath(name)
		if err != nil {
			return nil, err
		}
		if !fileExists(path) {
			return nil, fmt.Errorf("global context %q not found at %s", name, path)
		}
		if err := add("global:"+name, path); err != nil {
			return nil, err
		}
	}

	if root := gitRoot(); root != "" {
		if err := add("repo", filepath.Join(root, ContextFileName)); err != nil {
			return nil, err
		}
	}
	if cwd, err := os.Getwd(); err == nil {
		if err := add("local", filepath.Join(cwd, ContextFileName)); err != nil {
			return nil, err
		}
	}

	for _, name := range named {
		path, err := namedContextPath(name)
		if err != nil {
			return nil, err
		}
		if !fileExists(path) {
			return nil, fmt.Errorf("context %q not found at %s", name, path)
		}
		if err := add("named:"+name, path); err != nil {
			return nil, err
		}
	}
	return files, nil
}

// namedContextPath maps a context name to its file under the user config
// directory.
func namedContextPath(name string) (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "context", name+contextExt), nil
}
