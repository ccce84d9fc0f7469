// Package assistant exposes the AI chat, refactor and test-generation
// operations. Refactor and test generation are prompt templates over the
// same single-shot completion; there is no separate algorithm.
package assistant

import (
	"context"
	"errors"
)

// ErrEmptyPrompt is returned when a completion is requested without input.
var ErrEmptyPrompt = errors.New("empty prompt")

// Generator is the completion capability the assistant delegates to.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// FileContext describes one editor file supplied as prompt context.
type FileContext struct {
	Path     string `json:"path"`
	Language string `json:"language"`
	Content  string `json:"content,omitempty"`
}

// Exchange is one past prompt/response pair.
type Exchange struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// ChatContext carries optional editor state into a chat prompt.
type ChatContext struct {
	CurrentFile *FileContext  `json:"current_file,omitempty"`
	OpenFiles   []FileContext `json:"open_files,omitempty"`
	History     []Exchange    `json:"history,omitempty"`
}

// Assistant formats prompts and forwards them to the generator. It holds
// no conversation state of its own; history lives with the caller.
type Assistant struct {
	gen Generator
}

// New creates an Assistant backed by the given generator.
func New(gen Generator) *Assistant {
	if gen == nil {
		panic("generator is required")
	}
	return &Assistant{gen: gen}
}

// Complete sends a prompt with optional free-form context appended and
// returns the response text. Provider failures surface as-is; there is no
// retry.
func (a *Assistant) Complete(ctx context.Context, prompt, extra string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	full := prompt
	if extra != "" {
		full = prompt + "\n\nContext:\n" + extra
	}
	return a.gen.GenerateText(ctx, full)
}

// Chat sends a message with editor context folded into the prompt.
func (a *Assistant) Chat(ctx context.Context, message string, cc ChatContext) (string, error) {
	if message == "" {
		return "", ErrEmptyPrompt
	}
	return a.gen.GenerateText(ctx, buildChatPrompt(message, cc))
}

// Refactor rewrites code according to an instruction.
func (a *Assistant) Refactor(ctx context.Context, code, language, instruction string) (string, error) {
	if code == "" {
		return "", ErrEmptyPrompt
	}
	return a.gen.GenerateText(ctx, buildRefactorPrompt(code, language, instruction))
}

// GenerateTests produces unit tests for the given code.
func (a *Assistant) GenerateTests(ctx context.Context, code, language string) (string, error) {
	if code == "" {
		return "", ErrEmptyPrompt
	}
	return a.gen.GenerateText(ctx, buildTestsPrompt(code, language))
}
