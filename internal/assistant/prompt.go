package assistant

import (
	"fmt"
	"strings"
)

const (
	systemLine = "You are an expert programming assistant. You help developers with code analysis, refactoring, debugging, and general programming tasks."

	maxContextFileBytes = 2000
	maxOpenFiles        = 5
	maxHistory          = 3
	maxHistoryAnswer    = 200
)

// buildChatPrompt assembles the context-aware prompt for a chat message:
// system line, current file excerpt, open file list, recent history, then
// the user request.
func buildChatPrompt(message string, cc ChatContext) string {
	var parts []string
	parts = append(parts, systemLine)

	if cc.CurrentFile != nil {
		f := cc.CurrentFile
		parts = append(parts, fmt.Sprintf("\nCurrent file: %s (%s)", f.Path, f.Language))
		if f.Content != "" {
			content := f.Content
			suffix := ""
			if len(content) > maxContextFileBytes {
				content = content[:maxContextFileBytes]
				suffix = "..."
			}
			parts = append(parts, fmt.Sprintf("```%s\n%s%s\n```", f.Language, content, suffix))
		}
	}

	if len(cc.OpenFiles) > 0 {
		open := cc.OpenFiles
		if len(open) > maxOpenFiles {
			open = open[:maxOpenFiles]
		}
		lines := make([]string, 0, len(open))
		for _, f := range open {
			lines = append(lines, fmt.Sprintf("- %s (%s)", f.Path, f.Language))
		}
		parts = append(parts, "\nOpen files:\n"+strings.Join(lines, "\n"))
	}

	if len(cc.History) > 0 {
		history := cc.History
		if len(history) > maxHistory {
			history = history[len(history)-maxHistory:]
		}
		parts = append(parts, "\nRecent conversation:")
		for _, ex := range history {
			parts = append(parts, "User: "+ex.User)
			answer := ex.Assistant
			suffix := ""
			if len(answer) > maxHistoryAnswer {
				answer = answer[:maxHistoryAnswer]
				suffix = "..."
			}
			parts = append(parts, "Assistant: "+answer+suffix)
		}
	}

	parts = append(parts, "\nUser request: "+message)
	return strings.Join(parts, "\n")
}

// buildRefactorPrompt wraps code in the fixed refactoring template.
func buildRefactorPrompt(code, language, instruction string) string {
	return fmt.Sprintf(`You are an expert %s developer. Please refactor the following code according to the instruction.

Instruction: %s

Code to refactor:
`+"```%s\n%s\n```"+`

Please provide only the refactored code without additional explanation.`,
		language, instruction, language, code)
}

// buildTestsPrompt wraps code in the fixed test-generation template.
func buildTestsPrompt(code, language string) string {
	return fmt.Sprintf(`You are an expert %s developer. Generate comprehensive unit tests for the following code.

Code to test:
`+"```%s\n%s\n```"+`

Please provide complete unit tests with proper test framework setup and assertions.`,
		language, language, code)
}
