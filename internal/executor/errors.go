package executor

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned when a command exceeds its timeout.
var ErrTimeout = errors.New("command timeout")

// SpawnError is returned when a process cannot be started at all.
// Non-zero exits are reported in Result, not through this type.
type SpawnError struct {
	Cmd   string
	Cause error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Cmd, e.Cause)
}
func (e *SpawnError) Unwrap() error { return e.Cause }
