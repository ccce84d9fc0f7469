package ui

import "github.com/charmbracelet/glamour"

// NewMarkdownRenderer builds the glamour renderer used for chat
// responses, wrapped to the given width.
func NewMarkdownRenderer(width int) (MarkdownRenderer, error) {
	return glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
}
