package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.Color("212")
	colorDim     = lipgloss.Color("241")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	userStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)

	focusedPaneStyle = paneStyle.
				BorderForeground(colorPrimary)

	selectedStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
)

// View renders the four panes and the status bar.
func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		m.paneBox(paneTree, m.renderTree()),
		m.paneBox(panePreview, m.renderPreview()),
	)
	bottom := lipgloss.JoinHorizontal(lipgloss.Top,
		m.paneBox(paneTerminal, m.renderTerminal()),
		m.paneBox(paneChat, m.renderChat()),
	)

	return lipgloss.JoinVertical(lipgloss.Left, top, bottom, m.renderStatus())
}

func (m Model) paneBox(p pane, content string) string {
	if m.focus == p {
		return focusedPaneStyle.Render(content)
	}
	return paneStyle.Render(content)
}

func (m Model) renderTree() string {
	var lines []string
	lines = append(lines, titleStyle.Render(m.dir))

	rows := m.treeRows()
	if len(rows) == 0 {
		lines = append(lines, dimStyle.Render("(empty)"))
	}
	for i, row := range rows {
		label := ".."
		if !row.parent {
			label = row.entry.Name
			if row.entry.IsDir {
				label += "/"
			}
		}
		if i == m.treeIndex && m.focus == paneTree {
			lines = append(lines, selectedStyle.Render("▸ "+label))
		} else {
			lines = append(lines, "  "+label)
		}
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderPreview() string {
	header := dimStyle.Render("no file open")
	if m.current != nil {
		header = titleStyle.Render(m.current.Path) + dimStyle.Render(" ("+m.current.Language+")")
	}
	return header + "\n" + m.preview.View()
}

func (m Model) renderTerminal() string {
	return titleStyle.Render("terminal") + "\n" + m.termView.View() + "\n" + m.termInput.View()
}

func (m Model) renderChat() string {
	header := titleStyle.Render("assistant")
	if m.waiting {
		header += " " + m.spinner.View() + dimStyle.Render("thinking")
	}
	return header + "\n" + m.chatView.View() + "\n" + m.chatInput.View()
}

func (m Model) renderStatus() string {
	left := dimStyle.Render("tab: switch pane  ctrl+c: quit")
	if m.notice != "" {
		left = errStyle.Render(m.notice)
	}

	right := ""
	if m.branch != "" {
		right = dimStyle.Render(fmt.Sprintf(" %s", m.branch))
	}

	if right == "" {
		return left
	}
	return left + "  " + right
}
