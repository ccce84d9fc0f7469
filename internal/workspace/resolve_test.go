package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestAbs(t *testing.T) {
	resolver := NewResolver("/workspace")

	tests := []struct {
		name     string
		input    string
		expected string
		err      error
	}{
		{
			name:     "relative path within workspace",
			input:    "src/main.go",
			expected: "/workspace/src/main.go",
		},
		{
			name:     "absolute path within workspace",
			input:    "/workspace/src/main.go",
			expected: "/workspace/src/main.go",
		},
		{
			name:     "path with dots within workspace",
			input:    "src/../src/main.go",
			expected: "/workspace/src/main.go",
		},
		{
			name:     "workspace root",
			input:    ".",
			expected: "/workspace",
		},
		{
			name:     "absolute workspace root",
			input:    "/workspace",
			expected: "/workspace",
		},
		{
			name:  "empty path",
			input: "",
			err:   ErrEmptyPath,
		},
		{
			name:  "escape attempt via parent dots",
			input: "../../../etc/passwd",
			err:   ErrOutsideWorkspace,
		},
		{
			name:  "absolute path outside workspace",
			input: "/etc/passwd",
			err:   ErrOutsideWorkspace,
		},
		{
			name:  "prefix match but not child",
			input: "/workspacefoo/bar",
			err:   ErrOutsideWorkspace,
		},
		{
			name:  "dots escaping then descending",
			input: "../workspace2/file",
			err:   ErrOutsideWorkspace,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			abs, err := resolver.Abs(tt.input)
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected error %v, got %v", tt.err, err)
			}
			if abs != tt.expected {
				t.Errorf("expected abs %q, got %q", tt.expected, abs)
			}
		})
	}
}

func TestAbsEmptyRoot(t *testing.T) {
	resolver := NewResolver("")
	_, err := resolver.Abs("anything")
	if !errors.Is(err, ErrRootNotSet) {
		t.Fatalf("expected ErrRootNotSet, got %v", err)
	}
}

func TestRel(t *testing.T) {
	resolver := NewResolver("/workspace")

	tests := []struct {
		name     string
		input    string
		expected string
		err      error
	}{
		{name: "relative path", input: "src/main.go", expected: "src/main.go"},
		{name: "absolute path", input: "/workspace/src/main.go", expected: "src/main.go"},
		{name: "root maps to empty", input: "/workspace", expected: ""},
		{name: "escape attempt", input: "../other", err: ErrOutsideWorkspace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rel, err := resolver.Rel(tt.input)
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected error %v, got %v", tt.err, err)
			}
			if rel != tt.expected {
				t.Errorf("expected rel %q, got %q", tt.expected, rel)
			}
		})
	}
}

// TestAbsBoundaryProperty checks the boundary invariant over arbitrary
// inputs: a resolved path is always the root or a strict child of it, and
// anything else is rejected.
func TestAbsBoundaryProperty(t *testing.T) {
	root := "/workspace"
	resolver := NewResolver(root)

	rapid.Check(t, func(t *rapid.T) {
		segGen := rapid.SampledFrom([]string{"a", "b", "..", ".", "src", "deep/nested", "/etc", ".."})
		n := rapid.IntRange(1, 6).Draw(t, "segments")
		parts := make([]string, 0, n)
		for i := 0; i < n; i++ {
			parts = append(parts, segGen.Draw(t, "seg"))
		}
		input := strings.Join(parts, "/")

		abs, err := resolver.Abs(input)
		if err != nil {
			if !errors.Is(err, ErrOutsideWorkspace) && !errors.Is(err, ErrEmptyPath) {
				t.Fatalf("unexpected error kind: %v", err)
			}
			return
		}
		if abs != root && !strings.HasPrefix(abs, root+"/") {
			t.Fatalf("resolved path %q escapes root %q for input %q", abs, root, input)
		}
		if abs != filepath.Clean(abs) {
			t.Fatalf("resolved path %q is not clean", abs)
		}
	})
}

func TestCanonicaliseRoot(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := t.TempDir()
		got, err := CanonicaliseRoot(dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == "" {
			t.Error("expected non-empty canonical root")
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := CanonicaliseRoot(filepath.Join(t.TempDir(), "nope"))
		var rootErr *RootError
		if !errors.As(err, &rootErr) {
			t.Fatalf("expected RootError, got %v", err)
		}
	})

	t.Run("file instead of directory", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "f")
		if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := CanonicaliseRoot(file)
		if !errors.Is(err, ErrNotADirectory) {
			t.Fatalf("expected ErrNotADirectory, got %v", err)
		}
	})
}
