package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/drip/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StateStyle colors connected elements green and disconnected ones red.
func StateStyle(state domain.VisualState) lipgloss.Style {
	switch state {
	case domain.StateConnected:
		return StyleGreen
	case domain.StateDisconnected:
		return StyleRed
	default:
		return StyleDim
	}
}

// StateIndicator returns "● connected" or "● disconnected" in the state color.
func StateIndicator(state domain.VisualState) string {
	label := string(state)
	if label == "" {
		label = "unknown"
	}
	return StateStyle(state).Render("● " + label)
}

// KindStyle gives each node kind its palette color.
func KindStyle(kind domain.NodeKind) lipgloss.Style {
	switch kind {
	case domain.NodeTrigger:
		return StyleHeader
	case domain.NodeDelay:
		return StyleYellow
	case domain.NodeEmail:
		return StyleBlue
	case domain.NodeCondition:
		return StylePurple
	default:
		return StyleDim
	}
}

func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}

// Error renders an error line for terminal output.
func Error(err error) string {
	return StyleRed.Render("Error: " + err.Error())
}
