// Package cli renders outreach runs for the terminal.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	navy   = lipgloss.Color("#4A90D9")
	teal   = lipgloss.Color("#4ECDC4")
	yellow = lipgloss.Color("#FFE66D")
	red    = lipgloss.Color("#FF6B6B")
	mint   = lipgloss.Color("#95E1D3")
	gray   = lipgloss.Color("#666666")
	border = lipgloss.Color("#333")

	// ErrorStyle colors failure text.
	ErrorStyle = lipgloss.NewStyle().Foreground(red)

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(navy)
	successStyle = lipgloss.NewStyle().Foreground(teal)
	warningStyle = lipgloss.NewStyle().Foreground(yellow)
	infoStyle    = lipgloss.NewStyle().Foreground(mint)
	subtleStyle  = lipgloss.NewStyle().Foreground(gray)
	promptStyle  = lipgloss.NewStyle().Bold(true).Foreground(navy)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(border)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(1, 2)
)

const (
	successIcon = "✓"
	errorIcon   = "✗"
	warningIcon = "⚠️"
	infoIcon    = "ℹ️"
	mailIcon    = "✉️"
	skipIcon    = "⏭️"
	chartIcon   = "📊"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return successStyle.Render(successIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(errorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return warningStyle.Render(warningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return infoStyle.Render(infoIcon + " " + message)
}

// FormatTitle formats a section title.
func FormatTitle(title string) string {
	return titleStyle.Render(mailIcon + " " + title)
}

func formatPrompt(prompt string) string {
	return promptStyle.Render(prompt + " → ")
}

func renderBox(title, content string) string {
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), content))
}
