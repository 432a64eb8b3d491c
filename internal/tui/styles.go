package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/videojedi/TSL-UMD-Tester/internal/tsl"
)

// Color palette for the tally dashboard
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	RedColor     = lipgloss.Color("#FF5555") // Red tally
	GreenColor   = lipgloss.Color("#43BF6D") // Green tally
	AmberColor   = lipgloss.Color("#FFA500") // Amber tally
	MutedColor   = lipgloss.Color("#626262") // Gray - off lamps, secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// Layout constants
const (
	MinTerminalWidth = 60 // Minimum supported terminal width
	CellWidth        = 22 // Width of one display cell including border
	LogHeight        = 8  // Height of the packet log viewport
)

// Shared styles for the dashboard
var (
	// TitleStyle is for the top bar
	TitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(PrimaryColor).
			Bold(true).
			Padding(0, 1)

	// StatusStyle is for the counters next to the title
	StatusStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			PaddingLeft(1)

	// CellStyle is the border box around one display
	CellStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(MutedColor).
			Width(CellWidth - 2).
			Padding(0, 1)

	// CellLabelStyle is for the display text inside a cell
	CellLabelStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	// CellMetaStyle is for the address/protocol line inside a cell
	CellMetaStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// LogTitleStyle is for the packet log header
	LogTitleStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Bold(true)

	// HelpStyle is for the key hints at the bottom
	HelpStyle = lipgloss.NewStyle().
			Foreground(MutedColor)
)

// LampChar is the glyph used for one tally lamp.
const LampChar = "●"

// TallyStyle returns the lamp style for a tally state.
func TallyStyle(s tsl.TallyState) lipgloss.Style {
	switch s {
	case tsl.TallyRed:
		return lipgloss.NewStyle().Foreground(RedColor)
	case tsl.TallyGreen:
		return lipgloss.NewStyle().Foreground(GreenColor)
	case tsl.TallyAmber:
		return lipgloss.NewStyle().Foreground(AmberColor)
	default:
		return lipgloss.NewStyle().Foreground(MutedColor)
	}
}

// GetTerminalSize returns the current terminal width and height with
// fallbacks for non-terminal outputs.
func GetTerminalSize() (int, int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth, 24
	}
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}
	return width, height
}
