// Package styles holds the lipgloss palette shared by the CLI and the
// watch view.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	// Colors meet WCAG AA contrast (4.5:1) on black and dark surfaces.
	PrimaryColor   = lipgloss.Color("#A78BFA") // Purple
	SecondaryColor = lipgloss.Color("#10B981") // Green
	WarningColor   = lipgloss.Color("#F59E0B") // Amber
	ErrorColor     = lipgloss.Color("#F87171") // Red
	MutedColor     = lipgloss.Color("#9CA3AF") // Gray
	BlueColor      = lipgloss.Color("#60A5FA")
	BorderColor    = lipgloss.Color("#6B7280")

	Primary   = lipgloss.NewStyle().Foreground(PrimaryColor)
	Secondary = lipgloss.NewStyle().Foreground(SecondaryColor)
	Warning   = lipgloss.NewStyle().Foreground(WarningColor)
	Error     = lipgloss.NewStyle().Foreground(ErrorColor)
	Muted     = lipgloss.NewStyle().Foreground(MutedColor)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor)

	Subtitle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	Label = lipgloss.NewStyle().
		Bold(true).
		Width(11)

	Box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 1)

	Help = lipgloss.NewStyle().
		Foreground(MutedColor).
		MarginTop(1)
)

// StatusColor returns the color for a session or item status.
func StatusColor(status string) lipgloss.Color {
	switch status {
	case "running":
		return SecondaryColor
	case "pending":
		return MutedColor
	case "completed":
		return PrimaryColor
	case "failed":
		return ErrorColor
	case "cancelled":
		return WarningColor
	default:
		return MutedColor
	}
}

// StatusIcon returns an icon for a session or item status.
func StatusIcon(status string) string {
	switch status {
	case "running":
		return "●"
	case "pending":
		return "○"
	case "completed":
		return "✓"
	case "failed":
		return "✗"
	case "cancelled":
		return "⏹"
	default:
		return "●"
	}
}

// Status renders the icon and name of status in its color.
func Status(status string) string {
	return lipgloss.NewStyle().Foreground(StatusColor(status)).Render(StatusIcon(status) + " " + status)
}

// Fit truncates s to width visual columns, ending in "..." when cut. It
// is safe on styled strings.
func Fit(s string, width int) string {
	if width <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "...")
}
