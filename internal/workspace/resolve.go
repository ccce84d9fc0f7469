// Package workspace confines every path used by the file, terminal and
// git services to a single root directory.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolver validates that paths stay within the workspace boundary.
type Resolver struct {
	root string
}

// NewResolver creates a resolver for the given canonical workspace root.
func NewResolver(root string) *Resolver {
	return &Resolver{root: root}
}

// Root returns the workspace root the resolver was built with.
func (r *Resolver) Root() string {
	return r.root
}

// CanonicaliseRoot canonicalises a workspace root by making it absolute and
// resolving symlinks. Returns an error if the path doesn't exist or isn't a
// directory.
func CanonicaliseRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", &RootError{Root: root, Cause: err}
	}

	resolved, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", &RootError{Root: absRoot, Cause: err}
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", &RootError{Root: resolved, Cause: err}
	}
	if !info.IsDir() {
		return "", &RootError{Root: resolved, Cause: fmt.Errorf("%w: %s", ErrNotADirectory, resolved)}
	}
	return resolved, nil
}

// Abs resolves a path to absolute and validates it against the workspace
// boundary. Relative paths are interpreted against the root. Cleaned paths
// that escape the root fail with ErrOutsideWorkspace.
func (r *Resolver) Abs(path string) (string, error) {
	if r.root == "" {
		return "", ErrRootNotSet
	}
	if path == "" {
		return "", ErrEmptyPath
	}

	var abs string
	if filepath.IsAbs(path) {
		abs = filepath.Clean(path)
	} else {
		abs = filepath.Clean(filepath.Join(r.root, path))
	}

	// Must be the root itself or a child of the root. The separator in the
	// prefix check rejects siblings like /workspacefoo.
	if !strings.HasPrefix(abs, r.root+string(filepath.Separator)) && abs != r.root {
		return "", ErrOutsideWorkspace
	}

	return abs, nil
}

// Rel resolves a path to workspace-relative form, validating the boundary.
// The root itself resolves to "".
func (r *Resolver) Rel(path string) (string, error) {
	abs, err := r.Abs(path)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return "", ErrOutsideWorkspace
	}

	if rel == "." {
		return "", nil
	}

	return filepath.ToSlash(rel), nil
}
