// Package executor runs external processes and captures their output.
// It exists as a separate capability so services that shell out (terminal,
// git) can be tested with a fake runner.
package executor

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"
)

// Result represents the outcome of a command execution.
type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Truncated bool
}

// Runner is the process execution capability consumed by the terminal and
// git services.
type Runner interface {
	Run(ctx context.Context, command []string, dir string, env []string) (*Result, error)
	RunWithTimeout(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*Result, error)
}

// OSRunner implements Runner using os/exec.
type OSRunner struct {
	maxOutputBytes int
	gracePeriod    time.Duration
}

// NewOSRunner creates a runner that truncates captured output at
// maxOutputBytes and waits gracePeriod after an interrupt before killing a
// timed-out process.
func NewOSRunner(maxOutputBytes int, gracePeriod time.Duration) *OSRunner {
	if maxOutputBytes < 1 {
		panic("maxOutputBytes must be >= 1")
	}
	return &OSRunner{maxOutputBytes: maxOutputBytes, gracePeriod: gracePeriod}
}

// Run executes a command and returns the result. Output is buffered
// internally. A non-zero exit is reported in both the Result and the
// returned error; a failure to start is a *SpawnError.
func (r *OSRunner) Run(ctx context.Context, command []string, dir string, env []string) (*Result, error) {
	if len(command) == 0 {
		return nil, os.ErrInvalid
	}

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdin = nil

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &SpawnError{Cmd: command[0], Cause: err}
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, &SpawnError{Cmd: command[0], Cause: err}
	}

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Cmd: command[0], Cause: err}
	}

	stdout, stderr, truncated := r.collectOutput(stdoutPipe, stderrPipe)

	err = cmd.Wait()
	exitCode := 0
	if err != nil {
		exitCode = exitCodeOf(err)
	}

	return &Result{
		Stdout:    stdout,
		Stderr:    stderr,
		ExitCode:  exitCode,
		Truncated: truncated,
	}, err
}

// RunWithTimeout executes a command with a timeout and graceful shutdown:
// interrupt first, kill after the grace period.
func (r *OSRunner) RunWithTimeout(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*Result, error) {
	if len(command) == 0 {
		return nil, os.ErrInvalid
	}

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdin = nil

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &SpawnError{Cmd: command[0], Cause: err}
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, &SpawnError{Cmd: command[0], Cause: err}
	}

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Cmd: command[0], Cause: err}
	}

	var stdout, stderr string
	var truncated bool
	collectDone := make(chan struct{})
	go func() {
		stdout, stderr, truncated = r.collectOutput(stdoutPipe, stderrPipe)
		close(collectDone)
	}()

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var execErr error
	select {
	case err := <-done:
		execErr = err
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		execErr = ctx.Err()
	case <-time.After(timeout):
		_ = cmd.Process.Signal(os.Interrupt)
		select {
		case <-done:
		case <-time.After(r.gracePeriod):
			_ = cmd.Process.Kill()
			<-done
		}
		execErr = ErrTimeout
	}

	<-collectDone

	exitCode := 0
	if execErr != nil {
		exitCode = exitCodeOf(execErr)
		if errors.Is(execErr, ErrTimeout) {
			exitCode = -1
		}
	}

	return &Result{
		Stdout:    stdout,
		Stderr:    stderr,
		ExitCode:  exitCode,
		Truncated: truncated,
	}, execErr
}

func (r *OSRunner) collectOutput(stdout, stderr io.Reader) (string, string, bool) {
	stdoutCollector := newCollector(r.maxOutputBytes)
	stderrCollector := newCollector(r.maxOutputBytes)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		_, _ = io.Copy(stdoutCollector, stdout)
	}()

	go func() {
		defer wg.Done()
		_, _ = io.Copy(stderrCollector, stderr)
	}()

	wg.Wait()

	truncated := stdoutCollector.Truncated() || stderrCollector.Truncated()
	return stdoutCollector.String(), stderrCollector.String(), truncated
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	type exitCoder interface {
		ExitCode() int
	}
	var ec exitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return -1
}
