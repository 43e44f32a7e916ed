package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.Color("39")
	colorSecondary = lipgloss.Color("86")
	colorSuccess   = lipgloss.Color("42")
	colorError     = lipgloss.Color("196")
	colorDim       = lipgloss.Color("241")

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	agentStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSecondary)

	routingStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	attachStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	promptBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("237")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)
)
