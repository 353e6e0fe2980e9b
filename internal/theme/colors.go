package theme

import "github.com/charmbracelet/lipgloss"

// Color is an alias for lipgloss.Color for convenience
type Color = lipgloss.Color

// Brand colors
const (
	ColorPrimary   Color = "99" // Purple - titles
	ColorSecondary Color = "86" // Cyan - run IDs
)

// Case status colors
const (
	ColorPassed          Color = "2"   // Green
	ColorFailed          Color = "1"   // Red
	ColorSkipped         Color = "3"   // Yellow
	ColorExpectedFailure Color = "141" // Purple
	ColorUnexpectedPass  Color = "208" // Orange
)

// UI semantic colors
const (
	ColorError     Color = "196" // Bright red
	ColorHighlight Color = "255" // White - emphasis
	ColorMuted     Color = "241" // Gray - secondary text
	ColorSubtle    Color = "245" // Light gray - labels
)
