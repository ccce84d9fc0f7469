package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pandacode/pandacode/internal/assistant"
	"github.com/pandacode/pandacode/internal/config"
	"github.com/pandacode/pandacode/internal/executor"
	"github.com/pandacode/pandacode/internal/fileops"
	"github.com/pandacode/pandacode/internal/gitsvc"
	"github.com/pandacode/pandacode/internal/provider"
	"github.com/pandacode/pandacode/internal/terminal"
	"github.com/pandacode/pandacode/internal/workspace"
)

type fakeGenerator struct {
	lastPrompt string
	response   string
	err        error
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	return f.response, f.err
}

func newTestServer(t *testing.T) (*Server, *fakeGenerator, string) {
	t.Helper()

	root, err := workspace.CanonicaliseRoot(t.TempDir())
	require.NoError(t, err)

	resolver := workspace.NewResolver(root)
	runner := executor.NewOSRunner(1<<20, 100*time.Millisecond)
	gen := &fakeGenerator{response: "X"}

	cfg := config.DefaultConfig()
	cfg.Workspace = root

	srv := New(
		cfg,
		fileops.NewService(resolver, nil, 1<<20),
		terminal.NewService(resolver, runner, 5*time.Second),
		gitsvc.NewService(root, runner),
		assistant.New(gen),
		nil,
	)
	return srv, gen, root
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{name: "boundary escape", err: workspace.ErrOutsideWorkspace, code: CodePathEscapesWorkspace},
		{name: "missing file", err: os.ErrNotExist, code: CodeNotFound},
		{name: "already exists", err: fileops.ErrAlreadyExists, code: CodeAlreadyExists},
		{name: "git missing", err: gitsvc.ErrGitNotFound, code: CodeExecutableNotFound},
		{name: "not a repo", err: gitsvc.ErrNotARepository, code: CodeNotAGitRepository},
		{name: "ai auth", err: &provider.Error{Code: provider.ErrorCodeAuth}, code: CodeAIAuthError},
		{name: "ai rate limit", err: &provider.Error{Code: provider.ErrorCodeRateLimit}, code: CodeAIRateLimited},
		{name: "ai network", err: &provider.Error{Code: provider.ErrorCodeNetwork}, code: CodeAINetworkError},
		{name: "spawn failure", err: &executor.SpawnError{Cmd: "x", Cause: errors.New("no")}, code: CodeSpawnFailed},
		{name: "empty prompt", err: assistant.ErrEmptyPrompt, code: CodeInvalidRequest},
		{name: "anything else", err: errors.New("disk on fire"), code: CodeIOError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := classify(tt.err)
			require.NotNil(t, info)
			assert.Equal(t, tt.code, info.Code)
			assert.NotEmpty(t, info.Message)
		})
	}

	assert.Nil(t, classify(nil))
}

func TestDispatchFileRoundTrip(t *testing.T) {
	srv, _, _ := newTestServer(t)
	ctx := context.Background()

	_, err := srv.dispatch(ctx, Request{Type: "fs.write", Payload: map[string]any{
		"path":    "src/main.go",
		"content": "package main",
	}})
	require.NoError(t, err)

	got, err := srv.dispatch(ctx, Request{Type: "fs.read", Payload: map[string]any{
		"path": "src/main.go",
	}})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"path": "src/main.go", "content": "package main"}, got)

	listed, err := srv.dispatch(ctx, Request{Type: "fs.list", Payload: map[string]any{"path": "src"}})
	require.NoError(t, err)
	entries, ok := listed.([]fileops.Entry)
	require.True(t, ok)
	require.Len(t, entries, 1)
	assert.Equal(t, "main.go", entries[0].Name)
	assert.Equal(t, "go", entries[0].Language)
}

func TestDispatchProjectFiles(t *testing.T) {
	srv, _, root := newTestServer(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "a.go"), []byte("package a"), 0o644))

	got, err := srv.dispatch(context.Background(), Request{Type: "fs.project_files"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"files": []string{"src/a.go"}}, got)
}

func TestDispatchBoundaryViolation(t *testing.T) {
	srv, _, _ := newTestServer(t)

	_, err := srv.dispatch(context.Background(), Request{Type: "fs.read", Payload: map[string]any{
		"path": "../../etc/passwd",
	}})
	require.Error(t, err)
	assert.Equal(t, CodePathEscapesWorkspace, classify(err).Code)
}

func TestDispatchTerminalRun(t *testing.T) {
	srv, _, _ := newTestServer(t)

	got, err := srv.dispatch(context.Background(), Request{Type: "terminal.run", Payload: map[string]any{
		"command": "exit 7",
	}})
	require.NoError(t, err)

	res, ok := got.(*terminal.Result)
	require.True(t, ok)
	assert.Equal(t, 7, res.ExitCode)
	assert.Empty(t, res.Stdout)
}

func TestDispatchAIChat(t *testing.T) {
	srv, gen, _ := newTestServer(t)

	got, err := srv.dispatch(context.Background(), Request{Type: "ai.chat", Payload: map[string]any{
		"message": "what is this?",
		"context": map[string]any{
			"current_file": map[string]any{"path": "a.go", "language": "go", "content": "package a"},
		},
	}})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"response": "X"}, got)
	assert.Contains(t, gen.lastPrompt, "what is this?")
	assert.Contains(t, gen.lastPrompt, "a.go")
}

func TestDispatchUnknownType(t *testing.T) {
	srv, _, _ := newTestServer(t)

	_, err := srv.dispatch(context.Background(), Request{Type: "fs.explode"})
	require.Error(t, err)
	assert.Equal(t, CodeInvalidRequest, classify(err).Code)
}

func TestHealthEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEventChannelOverWebsocket(t *testing.T) {
	srv, _, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	err = conn.WriteJSON(Request{ID: "1", Type: "fs.write", Payload: map[string]any{
		"path":    "hello.txt",
		"content": "hi",
	}})
	require.NoError(t, err)

	var resp Response
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "1", resp.ID)
	assert.Equal(t, "fs.write.result", resp.Type)
	assert.Nil(t, resp.Error)

	err = conn.WriteJSON(Request{ID: "2", Type: "fs.read", Payload: map[string]any{
		"path": "../escape",
	}})
	require.NoError(t, err)

	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "2", resp.ID)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodePathEscapesWorkspace, resp.Error.Code)
}

func TestWatcherReportsChanges(t *testing.T) {
	root, err := workspace.CanonicaliseRoot(t.TempDir())
	require.NoError(t, err)
	resolver := workspace.NewResolver(root)

	w, err := NewWatcher(resolver)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	events := make(chan ChangeEvent, 16)
	unsubscribe := w.Subscribe(func(ev ChangeEvent) { events <- ev })
	defer unsubscribe()

	require.NoError(t, os.WriteFile(filepath.Join(root, "new.txt"), []byte("x"), 0o644))

	select {
	case ev := <-events:
		assert.Equal(t, "new.txt", ev.Path)
	case <-time.After(3 * time.Second):
		t.Fatal("no change event received")
	}
}

func TestWatcherIgnoresHiddenPaths(t *testing.T) {
	assert.True(t, isHiddenPath(".git/config"))
	assert.True(t, isHiddenPath("src/.cache"))
	assert.False(t, isHiddenPath("src/main.go"))
}
