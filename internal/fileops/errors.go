package fileops

import (
	"errors"
	"fmt"
)

// WriteError is returned when the atomic write sequence fails.
type WriteError struct {
	Path  string
	Stage string
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to %s for %s: %v", e.Stage, e.Path, e.Cause)
}
func (e *WriteError) Unwrap() error { return e.Cause }

// -- Sentinels --

var (
	ErrIsDirectory   = errors.New("path is a directory")
	ErrNotDirectory  = errors.New("path is not a directory")
	ErrBinaryFile    = errors.New("cannot read binary file")
	ErrAlreadyExists = errors.New("path already exists")
	ErrFileTooLarge  = errors.New("file exceeds maximum size")
)
