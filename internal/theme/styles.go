package theme

import "github.com/charmbracelet/lipgloss"

// Report styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	RunIDStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorSubtle)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	CaseNameStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true)
)

// Error style
var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorError).
	Bold(true)

// StatusStyle returns the style for a case status such as "passed"
func StatusStyle(status string) lipgloss.Style {
	style := lipgloss.NewStyle()
	switch status {
	case "passed":
		return style.Foreground(ColorPassed)
	case "failed":
		return style.Foreground(ColorFailed).Bold(true)
	case "skipped":
		return style.Foreground(ColorSkipped)
	case "expected-failure":
		return style.Foreground(ColorExpectedFailure)
	case "unexpected-pass":
		return style.Foreground(ColorUnexpectedPass).Bold(true)
	default:
		return style.Foreground(ColorMuted)
	}
}

// StatusIcon returns a one-character marker for a case status
func StatusIcon(status string) string {
	switch status {
	case "passed":
		return "✓"
	case "failed", "unexpected-pass":
		return "✗"
	case "skipped":
		return "-"
	case "expected-failure":
		return "x"
	default:
		return "?"
	}
}
