// Package fileops implements workspace-confined filesystem operations for
// the editor and file browser. Every operation resolves its path through
// the workspace boundary before touching the filesystem.
package fileops

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pandacode/pandacode/internal/workspace"
)

// Entry is a read-only snapshot of a directory entry. It is recomputed on
// every listing request, never cached.
type Entry struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"` // workspace-relative
	IsDir    bool      `json:"is_dir"`
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"mod_time"`
	Language string    `json:"language,omitempty"`
}

// Service exposes list/read/write/delete operations mediated by the
// workspace boundary.
type Service struct {
	resolver    *workspace.Resolver
	ignore      *IgnoreMatcher
	maxFileSize int64
}

// NewService creates a file service for the given resolver. ignore may be
// nil, in which case no gitignore filtering is applied.
func NewService(resolver *workspace.Resolver, ignore *IgnoreMatcher, maxFileSize int64) *Service {
	if resolver == nil {
		panic("resolver is required")
	}
	return &Service{resolver: resolver, ignore: ignore, maxFileSize: maxFileSize}
}

// List returns the entries of a workspace directory, sorted by name.
// Hidden entries are skipped except .git and .gitignore. An empty dir lists
// the workspace root.
func (s *Service) List(dir string) ([]Entry, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := s.resolver.Abs(dir)
	if err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(abs)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if isHidden(name) {
			continue
		}

		info, err := de.Info()
		if err != nil {
			continue
		}

		rel, err := s.resolver.Rel(filepath.Join(abs, name))
		if err != nil {
			continue
		}

		entry := Entry{
			Name:    name,
			Path:    rel,
			IsDir:   info.IsDir(),
			ModTime: info.ModTime(),
		}
		if !entry.IsDir {
			entry.Size = info.Size()
			entry.Language = DetectLanguage(name)
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Read returns the text content of a workspace file. Directories and binary
// content are rejected; underlying OS errors are surfaced unchanged.
func (s *Service) Read(path string) (string, error) {
	abs, err := s.resolver.Abs(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}
	if s.maxFileSize > 0 && info.Size() > s.maxFileSize {
		return "", fmt.Errorf("%w: %s (%d bytes)", ErrFileTooLarge, path, info.Size())
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return "", err
	}

	sample := content
	if len(sample) > 8000 {
		sample = sample[:8000]
	}
	if bytes.IndexByte(sample, 0) >= 0 {
		return "", fmt.Errorf("%w: %s", ErrBinaryFile, path)
	}

	return string(content), nil
}

// Write stores content at a workspace path, creating parent directories as
// needed. The write is atomic (temp file + rename) so a crash mid-write
// leaves any existing file intact.
func (s *Service) Write(path, content string) error {
	abs, err := s.resolver.Abs(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return &WriteError{Path: path, Stage: "create parent directories", Cause: err}
	}

	return writeFileAtomic(abs, []byte(content), 0o644)
}

// Create creates a new empty file. Fails if the path already exists.
func (s *Service) Create(path string) error {
	abs, err := s.resolver.Abs(path)
	if err != nil {
		return err
	}

	if _, err := os.Stat(abs); err == nil {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, path)
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return &WriteError{Path: path, Stage: "create parent directories", Cause: err}
	}
	return writeFileAtomic(abs, nil, 0o644)
}

// Mkdir creates a new directory. Fails if the path already exists.
func (s *Service) Mkdir(path string) error {
	abs, err := s.resolver.Abs(path)
	if err != nil {
		return err
	}

	if _, err := os.Stat(abs); err == nil {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, path)
	}

	return os.MkdirAll(abs, 0o755)
}

// Delete removes a file or directory (recursively). The workspace root
// itself cannot be deleted.
func (s *Service) Delete(path string) error {
	abs, err := s.resolver.Abs(path)
	if err != nil {
		return err
	}
	if abs == s.resolver.Root() {
		return workspace.ErrOutsideWorkspace
	}

	info, err := os.Stat(abs)
	if err != nil {
		return err
	}

	if info.IsDir() {
		return os.RemoveAll(abs)
	}
	return os.Remove(abs)
}

// Rename moves a file or directory within the workspace. Fails if the
// destination already exists.
func (s *Service) Rename(oldPath, newPath string) error {
	oldAbs, err := s.resolver.Abs(oldPath)
	if err != nil {
		return err
	}
	newAbs, err := s.resolver.Abs(newPath)
	if err != nil {
		return err
	}

	if _, err := os.Stat(oldAbs); err != nil {
		return err
	}
	if _, err := os.Stat(newAbs); err == nil {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, newPath)
	}

	if err := os.MkdirAll(filepath.Dir(newAbs), 0o755); err != nil {
		return &WriteError{Path: newPath, Stage: "create parent directories", Cause: err}
	}
	return os.Rename(oldAbs, newAbs)
}

// ProjectFiles walks the workspace and returns up to max workspace-relative
// file paths for use as AI context. Hidden and gitignored entries are
// skipped.
func (s *Service) ProjectFiles(max int) ([]string, error) {
	root := s.resolver.Root()
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if path == root {
			return nil
		}

		name := d.Name()
		rel, relErr := s.resolver.Rel(path)
		if relErr != nil {
			return nil
		}

		if d.IsDir() {
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if s.ignore != nil && s.ignore.ShouldIgnore(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") && name != ".gitignore" {
			return nil
		}
		if s.ignore != nil && s.ignore.ShouldIgnore(rel, false) {
			return nil
		}

		files = append(files, rel)
		if len(files) >= max {
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// isHidden reports whether a directory entry should be hidden from
// listings. .git and .gitignore stay visible for the version-control panel.
func isHidden(name string) bool {
	if !strings.HasPrefix(name, ".") {
		return false
	}
	return name != ".git" && name != ".gitignore"
}

// writeFileAtomic writes content using the temp file + rename pattern. The
// temp file lives in the target directory so the rename stays on one
// filesystem.
func writeFileAtomic(path string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return &WriteError{Path: path, Stage: "create temp file", Cause: err}
	}

	tmpPath := tmpFile.Name()
	needsCleanup := true
	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
		}
		if needsCleanup {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(content); err != nil {
		return &WriteError{Path: path, Stage: "write temp file", Cause: err}
	}
	if err := tmpFile.Sync(); err != nil {
		return &WriteError{Path: path, Stage: "sync temp file", Cause: err}
	}
	if err := tmpFile.Close(); err != nil {
		tmpFile = nil
		return &WriteError{Path: path, Stage: "close temp file", Cause: err}
	}
	tmpFile = nil

	if err := os.Rename(tmpPath, path); err != nil {
		return &WriteError{Path: path, Stage: "rename temp file", Cause: err}
	}
	needsCleanup = false

	if err := os.Chmod(path, perm); err != nil {
		return &WriteError{Path: path, Stage: "set permissions", Cause: err}
	}
	return nil
}
