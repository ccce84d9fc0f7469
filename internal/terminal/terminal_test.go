package terminal

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pandacode/pandacode/internal/executor"
	"github.com/pandacode/pandacode/internal/workspace"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	root, err := workspace.CanonicaliseRoot(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	resolver := workspace.NewResolver(root)
	runner := executor.NewOSRunner(10*1024*1024, 100*time.Millisecond)
	return NewService(resolver, runner, 5*time.Second), root
}

func TestExecuteExitCode(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Execute(context.Background(), "", "exit 7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExitCode != 7 {
		t.Errorf("expected exit code 7, got %d", res.ExitCode)
	}
	if res.Stdout != "" {
		t.Errorf("expected empty stdout, got %q", res.Stdout)
	}
}

func TestExecuteEcho(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Execute(context.Background(), "", "echo hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "hello world" {
		t.Errorf("expected 'hello world', got %q", res.Stdout)
	}
	if res.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", res.ExitCode)
	}
}

func TestExecuteCommandNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Execute(context.Background(), "", "definitely-not-a-command-xyz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExitCode != 127 {
		t.Errorf("expected exit code 127, got %d", res.ExitCode)
	}
}

func TestExecuteRunsInWorkspace(t *testing.T) {
	svc, root := newTestService(t)

	res, err := svc.Execute(context.Background(), "", "pwd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != root {
		t.Errorf("expected pwd %q, got %q", root, res.Stdout)
	}
}

func TestExecuteEmptyCommand(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Execute(context.Background(), "", "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExitCode != 0 || res.Stdout != "" || res.Stderr != "" {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestExecuteTimeout(t *testing.T) {
	root, err := workspace.CanonicaliseRoot(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	resolver := workspace.NewResolver(root)
	runner := executor.NewOSRunner(10*1024*1024, 50*time.Millisecond)
	svc := NewService(resolver, runner, 100*time.Millisecond)

	res, err := svc.Execute(context.Background(), "", "sleep 10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExitCode != 124 {
		t.Errorf("expected exit code 124 on timeout, got %d", res.ExitCode)
	}
	if !strings.Contains(res.Stderr, "timed out") {
		t.Errorf("expected timeout message, got %q", res.Stderr)
	}
}

func TestBuiltins(t *testing.T) {
	svc, root := newTestService(t)

	t.Run("pwd", func(t *testing.T) {
		res, err := svc.Execute(context.Background(), "s1", "pwd")
		if err != nil {
			t.Fatal(err)
		}
		if res.Stdout != root+"\n" {
			t.Errorf("expected %q, got %q", root+"\n", res.Stdout)
		}
	})

	t.Run("clear", func(t *testing.T) {
		res, err := svc.Execute(context.Background(), "s1", "clear")
		if err != nil {
			t.Fatal(err)
		}
		if res.Stdout != clearScreen {
			t.Errorf("expected clear sequence, got %q", res.Stdout)
		}
	})
}

func TestChangeDir(t *testing.T) {
	svc, root := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Execute(ctx, "s1", "mkdir -p sub/inner"); err != nil {
		t.Fatal(err)
	}

	t.Run("descend", func(t *testing.T) {
		res, err := svc.Execute(ctx, "s1", "cd sub")
		if err != nil {
			t.Fatal(err)
		}
		if res.ExitCode != 0 {
			t.Fatalf("cd failed: %+v", res)
		}
		info := svc.SessionInfo("s1")
		if info.Cwd != root+"/sub" {
			t.Errorf("expected cwd %q, got %q", root+"/sub", info.Cwd)
		}
	})

	t.Run("cd without args returns to root", func(t *testing.T) {
		if _, err := svc.Execute(ctx, "s1", "cd"); err != nil {
			t.Fatal(err)
		}
		if info := svc.SessionInfo("s1"); info.Cwd != root {
			t.Errorf("expected cwd %q, got %q", root, info.Cwd)
		}
	})

	t.Run("escape refused", func(t *testing.T) {
		res, err := svc.Execute(ctx, "s1", "cd ../../..")
		if err != nil {
			t.Fatal(err)
		}
		if res.ExitCode != 1 {
			t.Errorf("expected exit code 1, got %d", res.ExitCode)
		}
		if !strings.Contains(res.Stderr, "outside workspace") {
			t.Errorf("expected boundary message, got %q", res.Stderr)
		}
		if info := svc.SessionInfo("s1"); info.Cwd != root {
			t.Errorf("cwd changed after refused cd: %q", info.Cwd)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		res, err := svc.Execute(ctx, "s1", "cd nope")
		if err != nil {
			t.Fatal(err)
		}
		if res.ExitCode != 1 || !strings.Contains(res.Stderr, "No such file or directory") {
			t.Errorf("unexpected result: %+v", res)
		}
	})

	t.Run("sessions are independent", func(t *testing.T) {
		if _, err := svc.Execute(ctx, "s1", "cd sub"); err != nil {
			t.Fatal(err)
		}
		if info := svc.SessionInfo("other"); info.Cwd != root {
			t.Errorf("expected fresh session at root, got %q", info.Cwd)
		}
	})
}

func TestResize(t *testing.T) {
	svc, _ := newTestService(t)
	svc.Resize("s1", 40, 120)
	info := svc.SessionInfo("s1")
	if info.Rows != 40 || info.Cols != 120 {
		t.Errorf("expected 40x120, got %dx%d", info.Rows, info.Cols)
	}
}
