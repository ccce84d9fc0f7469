// Package gitsvc reports version-control state for the workspace by
// shelling out to the git executable. It is a specialised client of the
// process runner, with minimal output parsing.
package gitsvc

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/pandacode/pandacode/internal/executor"
)

// Status is a snapshot of the repository state for the status panel.
type Status struct {
	Branch    string   `json:"branch"`
	Staged    []string `json:"staged"`
	Modified  []string `json:"modified"`
	Untracked []string `json:"untracked"`
}

// Service wraps git command invocations rooted at the workspace.
type Service struct {
	workDir string
	runner  executor.Runner
}

// NewService creates a git service running inside workDir.
func NewService(workDir string, runner executor.Runner) *Service {
	if runner == nil {
		panic("runner is required")
	}
	return &Service{workDir: workDir, runner: runner}
}

// IsRepo reports whether the workspace is a git repository.
func (s *Service) IsRepo(ctx context.Context) (bool, error) {
	_, err := s.run(ctx, "rev-parse", "--git-dir")
	if err != nil {
		if errors.Is(err, ErrNotARepository) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Init initialises a repository at the workspace root.
func (s *Service) Init(ctx context.Context) error {
	_, err := s.run(ctx, "init")
	return err
}

// CurrentBranch returns the checked-out branch, defaulting to "main" for
// an unborn HEAD.
func (s *Service) CurrentBranch(ctx context.Context) (string, error) {
	out, err := s.run(ctx, "branch", "--show-current")
	if err != nil {
		return "", err
	}
	branch := strings.TrimSpace(out)
	if branch == "" {
		branch = "main"
	}
	return branch, nil
}

// GetStatus returns the branch plus staged/modified/untracked paths parsed
// from porcelain output.
func (s *Service) GetStatus(ctx context.Context) (*Status, error) {
	branch, err := s.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}

	out, err := s.run(ctx, "status", "--porcelain")
	if err != nil {
		return nil, err
	}

	status := &Status{
		Branch:    branch,
		Staged:    []string{},
		Modified:  []string{},
		Untracked: []string{},
	}

	for _, line := range strings.Split(out, "\n") {
		if len(line) < 3 {
			continue
		}
		code := line[:2]
		path := line[3:]

		switch {
		case code == "??":
			status.Untracked = append(status.Untracked, path)
		case strings.ContainsRune("MADRC", rune(code[0])):
			status.Staged = append(status.Staged, path)
			// A staged file can also carry unstaged edits.
			if code[1] == 'M' || code[1] == 'D' {
				status.Modified = append(status.Modified, path)
			}
		case code[1] == 'M' || code[1] == 'D':
			status.Modified = append(status.Modified, path)
		}
	}

	return status, nil
}

// Diff returns the unstaged diff, for one path or the whole tree.
func (s *Service) Diff(ctx context.Context, path string) (string, error) {
	args := []string{"diff"}
	if path != "" {
		args = append(args, "--", path)
	}
	return s.run(ctx, args...)
}

// Add stages the given paths.
func (s *Service) Add(ctx context.Context, paths []string) error {
	for _, path := range paths {
		if _, err := s.run(ctx, "add", "--", path); err != nil {
			return err
		}
	}
	return nil
}

// Commit records a commit. With no paths, all changes are staged first.
func (s *Service) Commit(ctx context.Context, message string, paths []string) error {
	if len(paths) > 0 {
		if err := s.Add(ctx, paths); err != nil {
			return err
		}
	} else {
		if _, err := s.run(ctx, "add", "-A"); err != nil {
			return err
		}
	}

	_, err := s.run(ctx, "commit", "-m", message)
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && strings.Contains(cmdErr.Stderr, "nothing to commit") {
			return ErrNothingToCommit
		}
		return err
	}
	return nil
}

// Push pushes the branch to the remote, setting upstream on first push.
func (s *Service) Push(ctx context.Context, remote, branch string) error {
	remote, branch, err := s.remoteBranch(ctx, remote, branch)
	if err != nil {
		return err
	}

	if _, err := s.run(ctx, "push", remote, branch); err == nil {
		return nil
	}
	_, err = s.run(ctx, "push", "-u", remote, branch)
	return err
}

// Pull pulls the branch from the remote.
func (s *Service) Pull(ctx context.Context, remote, branch string) error {
	remote, branch, err := s.remoteBranch(ctx, remote, branch)
	if err != nil {
		return err
	}
	_, err = s.run(ctx, "pull", remote, branch)
	return err
}

func (s *Service) remoteBranch(ctx context.Context, remote, branch string) (string, string, error) {
	if remote == "" {
		remote = "origin"
	}
	if branch == "" {
		var err error
		branch, err = s.CurrentBranch(ctx)
		if err != nil {
			return "", "", err
		}
	}
	return remote, branch, nil
}

// run executes one git command and returns its stdout. Exit 128 maps to
// ErrNotARepository, a missing executable to ErrGitNotFound.
func (s *Service) run(ctx context.Context, args ...string) (string, error) {
	argv := append([]string{"git"}, args...)
	res, err := s.runner.Run(ctx, argv, s.workDir, nil)
	if err != nil {
		var spawnErr *executor.SpawnError
		if errors.As(err, &spawnErr) {
			if errors.Is(err, exec.ErrNotFound) {
				return "", ErrGitNotFound
			}
			return "", spawnErr
		}
		if res != nil && res.ExitCode != 0 {
			if res.ExitCode == 128 && strings.Contains(res.Stderr, "not a git repository") {
				return "", ErrNotARepository
			}
			cmdErr := &CommandError{Args: args, ExitCode: res.ExitCode, Stderr: res.Stderr}
			// git writes "nothing to commit" to stdout.
			if strings.Contains(res.Stdout, "nothing to commit") {
				cmdErr.Stderr = res.Stdout
			}
			return "", cmdErr
		}
		return "", err
	}
	return res.Stdout, nil
}
