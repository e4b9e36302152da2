package theme

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Diagnostics go to stderr, so styles are resolved against its color profile
// rather than stdout's (stdout is usually captured by `eval`).
var renderer = lipgloss.NewRenderer(os.Stderr)

// Java-inspired palette
var (
	Primary   = lipgloss.Color("#f89820") // Java orange
	Secondary = lipgloss.Color("#5382a1") // Java blue

	Success = lipgloss.Color("#00d26a")
	Error   = lipgloss.Color("#ff3b30")
	Warning = lipgloss.Color("#ffcc00")
	Info    = lipgloss.Color("#5ac8fa")

	TextFaint = lipgloss.Color("#8e8e93")
	Highlight = lipgloss.Color("#ff6b35")
)

var (
	Title = renderer.NewStyle().
		Foreground(Primary).
		Bold(true).
		Underline(true)

	Subtitle = renderer.NewStyle().
			Foreground(Secondary).
			Bold(true)

	SuccessStyle = renderer.NewStyle().
			Foreground(Success).
			Bold(true)

	ErrorStyle = renderer.NewStyle().
			Foreground(Error).
			Bold(true)

	WarningStyle = renderer.NewStyle().
			Foreground(Warning).
			Bold(true)

	InfoStyle = renderer.NewStyle().
			Foreground(Info)

	Faint = renderer.NewStyle().
		Foreground(TextFaint).
		Faint(true)

	Code = renderer.NewStyle().
		Foreground(Highlight)

	CurrentStyle = renderer.NewStyle().
			Foreground(Primary).
			Bold(true)

	LabelStyle = renderer.NewStyle().
			Foreground(Secondary).
			Bold(true)

	PathStyle = renderer.NewStyle().
			Foreground(Info)
)

// SuccessMessage returns a formatted success message
func SuccessMessage(msg string) string {
	return SuccessStyle.Render("✓ " + msg)
}

// ErrorMessage returns a formatted error message
func ErrorMessage(msg string) string {
	return ErrorStyle.Render("✗ " + msg)
}

// WarningMessage returns a formatted warning message
func WarningMessage(msg string) string {
	return WarningStyle.Render("⚠ " + msg)
}

// InfoMessage returns a formatted info message
func InfoMessage(msg string) string {
	return InfoStyle.Render("ℹ " + msg)
}
