package workspace

import (
	"errors"
	"fmt"
)

// RootError is returned when the workspace root itself is unusable.
type RootError struct {
	Root  string
	Cause error
}

func (e *RootError) Error() string {
	return fmt.Sprintf("invalid workspace root %s: %v", e.Root, e.Cause)
}
func (e *RootError) Unwrap() error { return e.Cause }

// -- Sentinels --

var (
	// ErrOutsideWorkspace is returned when a resolved path escapes the
	// workspace root. Callers must not fall back to the unchecked path.
	ErrOutsideWorkspace = errors.New("path is outside workspace root")
	ErrEmptyPath        = errors.New("empty path")
	ErrRootNotSet       = errors.New("workspace root not set")
	ErrNotADirectory    = errors.New("not a directory")
)
