package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View composes the transcript feed, prompt bar, and status bar.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.feed.View(),
		m.renderPromptBar(),
		m.renderStatusBar(),
	)
}

func (m Model) renderEntries() string {
	if len(m.entries) == 0 {
		return welcomeStyle.Render("Welcome! Attach documents with /attach and ask away. /help for commands.")
	}
	rendered := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		rendered = append(rendered, renderEntry(e))
	}
	return strings.Join(rendered, "\n\n")
}

func renderEntry(e entry) string {
	switch e.Role {
	case roleUser:
		return userStyle.Render("You: ") + e.Text
	case roleSystem:
		if e.IsError {
			return errorStyle.Render(e.Text)
		}
		return attachStyle.Render(e.Text)
	default:
		var b strings.Builder
		if e.Routing != nil {
			b.WriteString(routingStyle.Render(fmt.Sprintf("[%s, %s confidence] %s",
				e.Routing.AgentType, e.Routing.Confidence, e.Routing.Reasoning)))
			b.WriteString("\n")
		}
		label := agentStyle.Render("Assistant: ")
		if e.IsError {
			return b.String() + label + errorStyle.Render(e.Text)
		}
		return b.String() + label + e.Text
	}
}

func (m Model) renderPromptBar() string {
	if m.waiting {
		return promptBarStyle.Width(m.width).Render(m.spinner.View() + " thinking...")
	}
	return promptBarStyle.Width(m.width).Render("> " + m.input.View())
}

func (m Model) renderStatusBar() string {
	status := fmt.Sprintf("session %s | %d document(s) attached | /help", m.sessionID, len(m.documents))
	return statusStyle.Width(m.width).Render(status)
}
