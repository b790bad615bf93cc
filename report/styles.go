// ABOUTME: Defines lipgloss styles for terminal reports: titles, labels, found/absent markers and severities.
// ABOUTME: Provides StyleForSeverity to map lint diagnostic severities to their display styles.
package report

import "github.com/charmbracelet/lipgloss"

var (
	// Header
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))
	SubtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	// Outcome markers
	FoundStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	AbsentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	// Severity colors
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	InfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))

	// Detail labels
	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(10)
	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
	PathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Italic(true)
)

// StyleForSeverity returns the style for a diagnostic severity.
func StyleForSeverity(severity string) lipgloss.Style {
	switch severity {
	case "error":
		return ErrorStyle
	case "warning":
		return WarningStyle
	default:
		return InfoStyle
	}
}
