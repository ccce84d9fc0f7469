// Package ui is the terminal frontend: a file tree, an editor preview, a
// command terminal and an AI chat, arranged as four panes with a status
// bar. It drives the same services as the web transport.
package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pandacode/pandacode/internal/assistant"
	"github.com/pandacode/pandacode/internal/fileops"
	"github.com/pandacode/pandacode/internal/gitsvc"
	"github.com/pandacode/pandacode/internal/terminal"
)

// pane identifies the focused panel. Tab cycles through them in order.
type pane int

const (
	paneTree pane = iota
	panePreview
	paneTerminal
	paneChat
	paneCount
)

// MarkdownRenderer renders markdown for the chat pane. Satisfied by
// glamour's TermRenderer; tests substitute a passthrough.
type MarkdownRenderer interface {
	Render(markdown string) (string, error)
}

// Model is the bubbletea model for the whole shell.
type Model struct {
	files    *fileops.Service
	term     *terminal.Service
	git      *gitsvc.Service
	ai       *assistant.Assistant
	renderer MarkdownRenderer

	width  int
	height int
	focus  pane

	// File tree state. dir is workspace-relative, "." at the root.
	dir       string
	entries   []fileops.Entry
	treeIndex int

	// Open file shown in the preview pane.
	current *assistant.FileContext
	preview viewport.Model

	// Terminal pane.
	termInput textinput.Model
	termView  viewport.Model
	termLog   []string

	// Chat pane.
	chatInput textinput.Model
	chatView  viewport.Model
	history   []assistant.Exchange
	waiting   bool
	spinner   spinner.Model

	branch string
	notice string
}

// New creates the shell model over the given services. renderer may be
// nil, in which case chat responses render as plain text.
func New(files *fileops.Service, term *terminal.Service, git *gitsvc.Service, ai *assistant.Assistant, renderer MarkdownRenderer) Model {
	if files == nil || term == nil || git == nil || ai == nil {
		panic("all services are required")
	}

	ti := textinput.New()
	ti.Placeholder = "command"

	ci := textinput.New()
	ci.Placeholder = "ask the assistant"

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		files:     files,
		term:      term,
		git:       git,
		ai:        ai,
		renderer:  renderer,
		dir:       ".",
		preview:   viewport.New(80, 20),
		termInput: ti,
		termView:  viewport.New(80, 8),
		chatInput: ci,
		chatView:  viewport.New(40, 20),
		spinner:   sp,
	}
}

// Run starts the program in the alternate screen.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
