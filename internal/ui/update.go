package ui

import (
	"fmt"
	"path"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pandacode/pandacode/internal/assistant"
	"github.com/pandacode/pandacode/internal/fileops"
)

// Init loads the file tree and git status.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.loadEntries(m.dir),
		m.loadGitStatus(),
	)
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case entriesLoadedMsg:
		m.dir = msg.dir
		m.entries = msg.entries
		m.treeIndex = 0
		m.notice = ""
		return m, nil

	case fileOpenedMsg:
		m.current = &assistant.FileContext{
			Path:     msg.path,
			Language: msg.language,
			Content:  msg.content,
		}
		m.preview.SetContent(msg.content)
		m.preview.GotoTop()
		m.notice = ""
		return m, nil

	case terminalDoneMsg:
		m.appendTerminal(msg.command, msg.result.Stdout, msg.result.Stderr, msg.result.ExitCode)
		// The command may have touched the tree or the repo.
		return m, tea.Batch(m.loadEntries(m.dir), m.loadGitStatus())

	case chatDoneMsg:
		m.waiting = false
		m.history = append(m.history, assistant.Exchange{
			User:      msg.question,
			Assistant: msg.answer,
		})
		m.refreshChat()
		return m, nil

	case gitStatusMsg:
		if msg.status != nil {
			m.branch = msg.status.Branch
		} else {
			m.branch = ""
		}
		return m, nil

	case errMsg:
		m.waiting = false
		m.notice = msg.err.Error()
		return m, nil
	}

	return m.updateFocused(msg)
}

// handleKey routes keys to the focused pane. Tab and ctrl+c are global.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.focus = (m.focus + 1) % paneCount
		m.syncFocus()
		return m, nil
	}

	switch m.focus {
	case paneTree:
		return m.handleTreeKey(msg)
	case paneTerminal:
		if msg.String() == "enter" {
			command := strings.TrimSpace(m.termInput.Value())
			if command == "" {
				return m, nil
			}
			m.termInput.SetValue("")
			return m, m.runCommand(command)
		}
	case paneChat:
		if msg.String() == "enter" {
			message := strings.TrimSpace(m.chatInput.Value())
			if message == "" || m.waiting {
				return m, nil
			}
			m.chatInput.SetValue("")
			m.waiting = true
			return m, m.sendChat(message)
		}
	}

	return m.updateFocused(msg)
}

func (m Model) handleTreeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.treeRows()

	switch msg.String() {
	case "up", "k":
		if m.treeIndex > 0 {
			m.treeIndex--
		}
	case "down", "j":
		if m.treeIndex < len(rows)-1 {
			m.treeIndex++
		}
	case "enter":
		if m.treeIndex >= len(rows) {
			return m, nil
		}
		row := rows[m.treeIndex]
		if row.parent {
			return m, m.loadEntries(path.Dir(m.dir))
		}
		if row.entry.IsDir {
			return m, m.loadEntries(row.entry.Path)
		}
		return m, m.openFile(row.entry.Path, row.entry.Language)
	case "r":
		return m, tea.Batch(m.loadEntries(m.dir), m.loadGitStatus())
	}

	return m, nil
}

// treeRow is one selectable line in the file tree: either the ".." parent
// link or a directory entry.
type treeRow struct {
	parent bool
	entry  fileops.Entry
}

func (m Model) treeRows() []treeRow {
	var rows []treeRow
	if m.dir != "." {
		rows = append(rows, treeRow{parent: true})
	}
	for _, e := range m.entries {
		rows = append(rows, treeRow{entry: e})
	}
	return rows
}

// updateFocused forwards a message to the focused pane's component.
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case panePreview:
		m.preview, cmd = m.preview.Update(msg)
	case paneTerminal:
		m.termInput, cmd = m.termInput.Update(msg)
	case paneChat:
		m.chatInput, cmd = m.chatInput.Update(msg)
	}
	return m, cmd
}

// syncFocus moves text input focus to the active pane.
func (m *Model) syncFocus() {
	m.termInput.Blur()
	m.chatInput.Blur()
	switch m.focus {
	case paneTerminal:
		m.termInput.Focus()
	case paneChat:
		m.chatInput.Focus()
	}
}

func (m *Model) appendTerminal(command, stdout, stderr string, exitCode int) {
	m.termLog = append(m.termLog, "$ "+command)
	if stdout != "" {
		m.termLog = append(m.termLog, strings.TrimRight(stdout, "\n"))
	}
	if stderr != "" {
		m.termLog = append(m.termLog, strings.TrimRight(stderr, "\n"))
	}
	if exitCode != 0 {
		m.termLog = append(m.termLog, fmt.Sprintf("exit %d", exitCode))
	}
	m.termView.SetContent(strings.Join(m.termLog, "\n"))
	m.termView.GotoBottom()
}

func (m *Model) refreshChat() {
	var lines []string
	for _, ex := range m.history {
		lines = append(lines, userStyle.Render("You: "+ex.User))
		answer := ex.Assistant
		if m.renderer != nil {
			if rendered, err := m.renderer.Render(answer); err == nil {
				answer = rendered
			}
		}
		lines = append(lines, answer, "")
	}
	m.chatView.SetContent(strings.Join(lines, "\n"))
	m.chatView.GotoBottom()
}

// layout resizes the panes to the window. The tree takes a fixed third of
// the width up to 40 columns; the bottom row splits evenly.
func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}

	treeWidth := m.width / 3
	if treeWidth > 40 {
		treeWidth = 40
	}

	topHeight := (m.height - 4) * 2 / 3
	bottomHeight := m.height - 4 - topHeight

	m.preview.Width = m.width - treeWidth - 4
	m.preview.Height = topHeight

	m.termView.Width = m.width/2 - 2
	m.termView.Height = bottomHeight - 1
	m.termInput.Width = m.termView.Width - 2

	m.chatView.Width = m.width - m.width/2 - 2
	m.chatView.Height = bottomHeight - 1
	m.chatInput.Width = m.chatView.Width - 2
}
