package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pandacode/pandacode/internal/assistant"
	"github.com/pandacode/pandacode/internal/fileops"
	"github.com/pandacode/pandacode/internal/gitsvc"
	"github.com/pandacode/pandacode/internal/terminal"
)

// chatTimeout bounds one assistant round trip from the chat pane.
const chatTimeout = 60 * time.Second

type entriesLoadedMsg struct {
	dir     string
	entries []fileops.Entry
}

type fileOpenedMsg struct {
	path     string
	language string
	content  string
}

type terminalDoneMsg struct {
	command string
	result  *terminal.Result
}

type chatDoneMsg struct {
	question string
	answer   string
}

type gitStatusMsg struct {
	status *gitsvc.Status
}

type errMsg struct {
	err error
}

func (m Model) loadEntries(dir string) tea.Cmd {
	return func() tea.Msg {
		entries, err := m.files.List(dir)
		if err != nil {
			return errMsg{err: err}
		}
		return entriesLoadedMsg{dir: dir, entries: entries}
	}
}

func (m Model) openFile(path, language string) tea.Cmd {
	return func() tea.Msg {
		content, err := m.files.Read(path)
		if err != nil {
			return errMsg{err: err}
		}
		return fileOpenedMsg{path: path, language: language, content: content}
	}
}

func (m Model) runCommand(command string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.term.Execute(context.Background(), terminal.DefaultSession, command)
		if err != nil {
			return errMsg{err: err}
		}
		return terminalDoneMsg{command: command, result: res}
	}
}

func (m Model) sendChat(message string) tea.Cmd {
	cc := assistant.ChatContext{
		CurrentFile: m.current,
		History:     m.history,
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), chatTimeout)
		defer cancel()

		answer, err := m.ai.Chat(ctx, message, cc)
		if err != nil {
			return errMsg{err: err}
		}
		return chatDoneMsg{question: message, answer: answer}
	}
}

func (m Model) loadGitStatus() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		// A workspace without git is normal; the branch cell stays empty.
		isRepo, err := m.git.IsRepo(ctx)
		if err != nil || !isRepo {
			return gitStatusMsg{status: nil}
		}

		status, err := m.git.GetStatus(ctx)
		if err != nil {
			return gitStatusMsg{status: nil}
		}
		return gitStatusMsg{status: status}
	}
}
