package gitsvc

import (
	"errors"
	"fmt"
	"strings"
)

// CommandError is returned when a git command exits non-zero for a reason
// the service doesn't translate into a sentinel.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("git %s failed (exit %d): %s",
		strings.Join(e.Args, " "), e.ExitCode, strings.TrimSpace(e.Stderr))
}

// -- Sentinels --

var (
	// ErrGitNotFound is returned when the git executable is not installed.
	ErrGitNotFound = errors.New("git executable not found")
	// ErrNotARepository is returned when the workspace is not a git
	// repository.
	ErrNotARepository = errors.New("not a git repository")
	// ErrNothingToCommit is returned when a commit is requested with a
	// clean index.
	ErrNothingToCommit = errors.New("nothing to commit")
)
