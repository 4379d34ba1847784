package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ghgantt/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox palette.
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

// ChangeStyle colours a change kind: green for new items, yellow for
// modified ones and red for orphans.
func ChangeStyle(kind domain.ChangeKind) lipgloss.Style {
	switch kind {
	case domain.ChangeCreate:
		return StyleGreen
	case domain.ChangeUpdate:
		return StyleYellow
	case domain.ChangeOrphaned:
		return StyleRed
	default:
		return StyleDim
	}
}

// ChangeLabel is the Type column of the status table.
func ChangeLabel(kind domain.ChangeKind) string {
	switch kind {
	case domain.ChangeCreate:
		return ChangeStyle(kind).Render("+ new")
	case domain.ChangeUpdate:
		return ChangeStyle(kind).Render("~ modified")
	case domain.ChangeOrphaned:
		return ChangeStyle(kind).Render("! orphaned")
	default:
		return Dim(string(kind))
	}
}

// StatePill renders an issue state.
func StatePill(s domain.State) string {
	if s == domain.StateClosed {
		return StylePurple.Render("● closed")
	}
	return StyleGreen.Render("● open")
}

// OutcomePill renders a journal outcome.
func OutcomePill(o domain.Outcome) string {
	switch o {
	case domain.OutcomeCreated:
		return StyleGreen.Render(string(o))
	case domain.OutcomeUpdated:
		return StyleBlue.Render(string(o))
	case domain.OutcomeFailed:
		return StyleRed.Render(string(o))
	case domain.OutcomeSkipped:
		return StyleYellow.Render(string(o))
	default:
		return Dim(string(o))
	}
}

// Header renders an uppercase section header with an underline.
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

// Check renders a passed validation line.
func Check(text string) string {
	return StyleGreen.Render("✓") + " " + text
}

// Bang renders a failed validation line.
func Bang(text string) string {
	return StyleRed.Render("!") + " " + text
}
