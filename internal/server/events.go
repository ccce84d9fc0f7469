package server

import (
	"errors"
	"os"

	"github.com/pandacode/pandacode/internal/assistant"
	"github.com/pandacode/pandacode/internal/executor"
	"github.com/pandacode/pandacode/internal/fileops"
	"github.com/pandacode/pandacode/internal/gitsvc"
	"github.com/pandacode/pandacode/internal/provider"
	"github.com/pandacode/pandacode/internal/workspace"
)

// Request is an inbound event on the channel. Payload shape depends on
// Type and is decoded per handler.
type Request struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// Response is an outbound event. Exactly one of Payload or Error is set.
type Response struct {
	ID      string     `json:"id,omitempty"`
	Type    string     `json:"type"`
	Payload any        `json:"payload,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo renders a service failure for display in the relevant panel.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes exposed on the wire.
const (
	CodePathEscapesWorkspace = "path_escapes_workspace"
	CodeNotFound             = "not_found"
	CodeAlreadyExists        = "already_exists"
	CodeIOError              = "io_error"
	CodeSpawnFailed          = "spawn_failed"
	CodeExecutableNotFound   = "executable_not_found"
	CodeNotAGitRepository    = "not_a_git_repository"
	CodeAIAuthError          = "ai_auth_error"
	CodeAIRateLimited        = "ai_rate_limited"
	CodeAINetworkError       = "ai_network_error"
	CodeInvalidRequest       = "invalid_request"
)

// classify maps a service error onto the wire taxonomy.
func classify(err error) *ErrorInfo {
	if err == nil {
		return nil
	}

	code := CodeIOError
	switch {
	case errors.Is(err, workspace.ErrOutsideWorkspace),
		errors.Is(err, workspace.ErrEmptyPath):
		code = CodePathEscapesWorkspace
	case errors.Is(err, os.ErrNotExist):
		code = CodeNotFound
	case errors.Is(err, fileops.ErrAlreadyExists):
		code = CodeAlreadyExists
	case errors.Is(err, gitsvc.ErrGitNotFound):
		code = CodeExecutableNotFound
	case errors.Is(err, gitsvc.ErrNotARepository):
		code = CodeNotAGitRepository
	case errors.Is(err, provider.ErrAuthentication):
		code = CodeAIAuthError
	case errors.Is(err, provider.ErrRateLimit):
		code = CodeAIRateLimited
	case errors.Is(err, provider.ErrNetwork),
		errors.Is(err, provider.ErrServiceUnavailable):
		code = CodeAINetworkError
	case errors.Is(err, assistant.ErrEmptyPrompt):
		code = CodeInvalidRequest
	default:
		var spawnErr *executor.SpawnError
		var badType *unknownTypeError
		var badPayload *decodeError
		switch {
		case errors.As(err, &spawnErr):
			code = CodeSpawnFailed
		case errors.As(err, &badType), errors.As(err, &badPayload):
			code = CodeInvalidRequest
		}
	}

	return &ErrorInfo{Code: code, Message: err.Error()}
}

// -- Typed request payloads, decoded with mapstructure --

type pathRequest struct {
	Path string `mapstructure:"path"`
}

type writeRequest struct {
	Path    string `mapstructure:"path"`
	Content string `mapstructure:"content"`
}

type renameRequest struct {
	OldPath string `mapstructure:"old_path"`
	NewPath string `mapstructure:"new_path"`
}

type terminalRunRequest struct {
	Session string `mapstructure:"session"`
	Command string `mapstructure:"command"`
}

type terminalResizeRequest struct {
	Session string `mapstructure:"session"`
	Rows    int    `mapstructure:"rows"`
	Cols    int    `mapstructure:"cols"`
}

type gitAddRequest struct {
	Paths []string `mapstructure:"paths"`
}

type gitCommitRequest struct {
	Message string   `mapstructure:"message"`
	Paths   []string `mapstructure:"paths"`
}

type gitRemoteRequest struct {
	Remote string `mapstructure:"remote"`
	Branch string `mapstructure:"branch"`
}

type chatRequest struct {
	Message string                `mapstructure:"message"`
	Context assistant.ChatContext `mapstructure:"context"`
}

type completeRequest struct {
	Prompt  string `mapstructure:"prompt"`
	Context string `mapstructure:"context"`
}

type refactorRequest struct {
	Code        string `mapstructure:"code"`
	Language    string `mapstructure:"language"`
	Instruction string `mapstructure:"instruction"`
}

type testsRequest struct {
	Code     string `mapstructure:"code"`
	Language string `mapstructure:"language"`
}
