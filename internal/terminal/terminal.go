// Package terminal executes shell commands inside the workspace. Each
// session keeps its own working directory so `cd` behaves like a shell,
// but the directory can never leave the workspace boundary.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pandacode/pandacode/internal/executor"
	"github.com/pandacode/pandacode/internal/workspace"
)

// DefaultSession is the session used when callers don't manage their own.
const DefaultSession = "default"

// clearScreen is the ANSI sequence emitted for the clear builtin.
const clearScreen = "\033[2J\033[H"

// Result is the outcome of one command invocation. Non-zero exits are
// reported here, not as errors.
type Result struct {
	Stdout    string `json:"stdout"`
	Stderr    string `json:"stderr"`
	ExitCode  int    `json:"exit_code"`
	Truncated bool   `json:"truncated,omitempty"`
}

// Session holds per-session terminal state.
type Session struct {
	Cwd  string
	Env  []string
	Rows int
	Cols int
}

// Service runs commands via an injected process runner, one session at a
// time from the caller's perspective.
type Service struct {
	resolver *workspace.Resolver
	runner   executor.Runner
	timeout  time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewService creates a terminal service. timeout bounds each command; the
// runner is injectable for tests.
func NewService(resolver *workspace.Resolver, runner executor.Runner, timeout time.Duration) *Service {
	if resolver == nil {
		panic("resolver is required")
	}
	if runner == nil {
		panic("runner is required")
	}
	return &Service{
		resolver: resolver,
		runner:   runner,
		timeout:  timeout,
		sessions: make(map[string]*Session),
	}
}

// Execute runs a command line in the given session. Builtins (cd, pwd,
// clear) are handled in-process. The only propagated error is a failure to
// spawn; everything else is reported in the Result.
func (s *Service) Execute(ctx context.Context, sessionID, command string) (*Result, error) {
	sess := s.session(sessionID)

	trimmed := strings.TrimSpace(command)
	switch {
	case trimmed == "":
		return &Result{}, nil
	case trimmed == "pwd":
		return &Result{Stdout: sess.Cwd + "\n"}, nil
	case trimmed == "clear":
		return &Result{Stdout: clearScreen}, nil
	case trimmed == "cd" || strings.HasPrefix(trimmed, "cd "):
		return s.changeDir(sess, trimmed), nil
	}

	// Run through the shell so builtins, pipes and exit codes behave the
	// way users expect from a terminal panel.
	argv := []string{"/bin/sh", "-c", command}
	res, runErr := s.runner.RunWithTimeout(ctx, argv, sess.Cwd, sess.Env, s.timeout)
	if runErr != nil {
		if errors.Is(runErr, executor.ErrTimeout) {
			return &Result{
				Stderr:   fmt.Sprintf("Command timed out after %s\n", s.timeout),
				ExitCode: 124,
			}, nil
		}
		var spawnErr *executor.SpawnError
		if errors.As(runErr, &spawnErr) {
			return nil, spawnErr
		}
		// Non-zero exit: reported in the result below.
	}

	if res == nil {
		return nil, runErr
	}
	return &Result{
		Stdout:    res.Stdout,
		Stderr:    res.Stderr,
		ExitCode:  res.ExitCode,
		Truncated: res.Truncated,
	}, nil
}

// Resize records the terminal dimensions for a session.
func (s *Service) Resize(sessionID string, rows, cols int) {
	sess := s.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.Rows = rows
	sess.Cols = cols
}

// SessionInfo returns a copy of the session state.
func (s *Service) SessionInfo(sessionID string) Session {
	sess := s.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return *sess
}

// session returns the session, creating it at the workspace root on first
// use.
func (s *Service) session(id string) *Session {
	if id == "" {
		id = DefaultSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &Session{
			Cwd: s.resolver.Root(),
			Env: os.Environ(),
		}
		s.sessions[id] = sess
	}
	return sess
}

// changeDir handles the cd builtin. Escapes of the workspace boundary are
// refused in-band, mirroring shell error reporting.
func (s *Service) changeDir(sess *Session, command string) *Result {
	parts := strings.SplitN(command, " ", 2)

	if len(parts) == 1 || strings.TrimSpace(parts[1]) == "" {
		s.mu.Lock()
		sess.Cwd = s.resolver.Root()
		s.mu.Unlock()
		return &Result{}
	}

	target := strings.TrimSpace(parts[1])

	var abs string
	var err error
	if strings.HasPrefix(target, "/") {
		abs, err = s.resolver.Abs(target)
	} else {
		// Relative to the session cwd, then boundary-checked.
		joined := sess.Cwd + "/" + target
		abs, err = s.resolver.Abs(joined)
	}
	if err != nil {
		if errors.Is(err, workspace.ErrOutsideWorkspace) {
			return &Result{Stderr: "Access denied: path outside workspace\n", ExitCode: 1}
		}
		return &Result{Stderr: fmt.Sprintf("cd: %v\n", err), ExitCode: 1}
	}

	info, err := os.Stat(abs)
	if err != nil {
		return &Result{Stderr: fmt.Sprintf("No such file or directory: %s\n", target), ExitCode: 1}
	}
	if !info.IsDir() {
		return &Result{Stderr: fmt.Sprintf("Not a directory: %s\n", target), ExitCode: 1}
	}

	s.mu.Lock()
	sess.Cwd = abs
	s.mu.Unlock()
	return &Result{}
}
