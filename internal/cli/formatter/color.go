package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/goalplan/internal/domain"
	"github.com/alexanderramin/goalplan/internal/validation"
	"github.com/charmbracelet/lipgloss"
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

// DifficultyLabel colors a task difficulty. Unknown values are shown in red
// so a rejected candidate stands out.
func DifficultyLabel(d domain.Difficulty) string {
	switch d {
	case domain.DifficultyEasy:
		return StyleGreen.Render(string(d))
	case domain.DifficultyModerate:
		return StyleYellow.Render(string(d))
	case domain.DifficultyChallenging:
		return StylePurple.Render(string(d))
	default:
		return StyleRed.Render(fmt.Sprintf("%q", string(d)))
	}
}

func SeverityIndicator(s validation.Severity) string {
	switch s {
	case validation.SeverityError:
		return StyleRed.Render("● ERROR")
	case validation.SeverityWarning:
		return StyleYellow.Render("● WARN")
	default:
		return StyleDim.Render("● " + strings.ToUpper(string(s)))
	}
}

// Header renders a section header with an underline.
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
