package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pandacode/pandacode/internal/assistant"
	"github.com/pandacode/pandacode/internal/executor"
	"github.com/pandacode/pandacode/internal/fileops"
	"github.com/pandacode/pandacode/internal/gitsvc"
	"github.com/pandacode/pandacode/internal/terminal"
	"github.com/pandacode/pandacode/internal/workspace"
)

type fakeGenerator struct {
	response string
	err      error
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	return f.response, f.err
}

func newTestModel(t *testing.T) (Model, string) {
	t.Helper()

	root, err := workspace.CanonicaliseRoot(t.TempDir())
	require.NoError(t, err)

	resolver := workspace.NewResolver(root)
	runner := executor.NewOSRunner(1<<20, 100*time.Millisecond)

	m := New(
		fileops.NewService(resolver, nil, 1<<20),
		terminal.NewService(resolver, runner, 5*time.Second),
		gitsvc.NewService(root, runner),
		assistant.New(&fakeGenerator{response: "the answer"}),
		nil,
	)
	return m, root
}

// step applies one message and returns the updated model.
func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	next, ok := updated.(Model)
	require.True(t, ok)
	return next, cmd
}

func TestEntriesLoaded(t *testing.T) {
	m, root := newTestModel(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "docs"), 0o755))

	msg := m.loadEntries(".")()
	loaded, ok := msg.(entriesLoadedMsg)
	require.True(t, ok)

	m, _ = step(t, m, loaded)
	require.Len(t, m.entries, 2)
	assert.Equal(t, "docs", m.entries[0].Name)
	assert.Equal(t, "main.go", m.entries[1].Name)
}

func TestTreeOpenFile(t *testing.T) {
	m, root := newTestModel(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main"), 0o644))

	m, _ = step(t, m, m.loadEntries(".")().(entriesLoadedMsg))

	_, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	opened, ok := cmd().(fileOpenedMsg)
	require.True(t, ok)
	assert.Equal(t, "main.go", opened.path)
	assert.Equal(t, "go", opened.language)

	m, _ = step(t, m, opened)
	require.NotNil(t, m.current)
	assert.Equal(t, "package main", m.current.Content)
}

func TestTreeDescendAndParent(t *testing.T) {
	m, root := newTestModel(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "a.py"), []byte("pass"), 0o644))

	m, _ = step(t, m, m.loadEntries(".")().(entriesLoadedMsg))

	// Enter the directory.
	_, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, _ = step(t, m, cmd().(entriesLoadedMsg))
	assert.Equal(t, "src", m.dir)

	// First row is the ".." parent link.
	rows := m.treeRows()
	require.True(t, rows[0].parent)

	_, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, _ = step(t, m, cmd().(entriesLoadedMsg))
	assert.Equal(t, ".", m.dir)
}

func TestTerminalCommand(t *testing.T) {
	m, _ := newTestModel(t)
	m.focus = paneTerminal
	m.termInput.SetValue("echo hello")

	_, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	done, ok := cmd().(terminalDoneMsg)
	require.True(t, ok)
	assert.Equal(t, "hello\n", done.result.Stdout)
	assert.Equal(t, 0, done.result.ExitCode)

	m, _ = step(t, m, done)
	assert.Contains(t, m.termView.View(), "$ echo hello")
}

func TestChatRoundTrip(t *testing.T) {
	m, _ := newTestModel(t)
	m.focus = paneChat
	m.chatInput.SetValue("what is this?")

	m2, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m2.waiting)

	done, ok := cmd().(chatDoneMsg)
	require.True(t, ok)
	assert.Equal(t, "the answer", done.answer)

	m2, _ = step(t, m2, done)
	assert.False(t, m2.waiting)
	require.Len(t, m2.history, 1)
	assert.Equal(t, "what is this?", m2.history[0].User)
}

func TestErrMsgShowsNotice(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = step(t, m, errMsg{err: errors.New("read failed")})
	assert.Equal(t, "read failed", m.notice)
	assert.Contains(t, m.renderStatus(), "read failed")
}

func TestTabCyclesFocus(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Equal(t, paneTree, m.focus)

	for _, want := range []pane{panePreview, paneTerminal, paneChat, paneTree} {
		m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
		assert.Equal(t, want, m.focus)
	}
}

func TestViewRendersPanes(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	out := m.View()
	assert.Contains(t, out, "terminal")
	assert.Contains(t, out, "assistant")
	assert.Contains(t, out, "no file open")
}
