package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/schoolops/rollover/internal/domain"
	"github.com/schoolops/rollover/internal/transition"
)

// Gruvbox-inspired color palette.
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

// WarningStyle returns the style a simulation finding is rendered with.
func WarningStyle(kind transition.WarningKind) lipgloss.Style {
	switch kind {
	case transition.WarnOverCapacity, transition.WarnConflict:
		return StyleRed
	case transition.WarnUnderCapacity:
		return StyleYellow
	default:
		return StyleGreen
	}
}

// WarningBadge returns a short colored label such as "▲ OVER".
func WarningBadge(kind transition.WarningKind) string {
	switch kind {
	case transition.WarnOverCapacity:
		return StyleRed.Render("▲ OVER")
	case transition.WarnUnderCapacity:
		return StyleYellow.Render("▼ UNDER")
	case transition.WarnConflict:
		return StyleRed.Render("✖ CONFLICT")
	default:
		return StyleGreen.Render("● OK")
	}
}

// RunStatusPill returns a colored indicator for a transition run status.
func RunStatusPill(status domain.RunStatus) string {
	switch status {
	case domain.RunCompleted:
		return StyleGreen.Render("✔ Completed")
	case domain.RunFailed:
		return StyleRed.Render("✖ Failed")
	case domain.RunRunning:
		return StyleYellow.Render("● Running")
	default:
		return StyleDim.Render(string(status))
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
