package tui

import (
	"github.com/charmbracelet/lipgloss"

	"pdf-unwatermark/internal/domain"
)

// Styling functions using lipgloss
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#7b68ee")).
			Bold(true).
			Padding(0, 2).
			MarginBottom(1)

	FileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7b68ee")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#40c060")).
			Bold(true)

	SoftSuccessStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#f0c040")).
				Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e05050")).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// StatusStyle picks the style for a message severity.
func StatusStyle(severity domain.Severity) lipgloss.Style {
	switch severity {
	case domain.SeveritySuccess:
		return SuccessStyle
	case domain.SeveritySoftSuccess:
		return SoftSuccessStyle
	case domain.SeverityError:
		return ErrorStyle
	default:
		return InfoStyle
	}
}
