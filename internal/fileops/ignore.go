package fileops

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IgnoreMatcher matches workspace-relative paths against the root
// .gitignore using go-git's matcher. A missing .gitignore yields a matcher
// that never ignores.
type IgnoreMatcher struct {
	matcher gitignore.Matcher
}

// NewIgnoreMatcher loads .gitignore from the workspace root.
func NewIgnoreMatcher(workspaceRoot string) (*IgnoreMatcher, error) {
	gitignorePath := filepath.Join(workspaceRoot, ".gitignore")

	content, err := os.ReadFile(gitignorePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &IgnoreMatcher{matcher: nil}, nil
		}
		return nil, err
	}

	var patterns []gitignore.Pattern
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if pattern := gitignore.ParsePattern(line, nil); pattern != nil {
			patterns = append(patterns, pattern)
		}
	}

	return &IgnoreMatcher{matcher: gitignore.NewMatcher(patterns)}, nil
}

// ShouldIgnore checks a workspace-relative path against the loaded
// patterns. Returns false when no .gitignore was present.
func (m *IgnoreMatcher) ShouldIgnore(relativePath string, isDir bool) bool {
	if m.matcher == nil {
		return false
	}
	return m.matcher.Match(splitPath(relativePath), isDir)
}

func splitPath(path string) []string {
	normalized := filepath.ToSlash(path)
	parts := strings.Split(normalized, "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}
	return segments
}
