package theme

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

var ErrInvalid = errors.New("invalid theme")

// hasDarkBackground asks the terminal for its background colour.
var hasDarkBackground = lipgloss.HasDarkBackground

func Parse(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, nil
	case Dark:
		return Dark, nil
	}
	return "", fmt.Errorf("%w: %q (use light or dark)", ErrInvalid, s)
}

func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

func (t Theme) String() string { return string(t) }

// Detect reports the theme the terminal is already using. It stands in for
// the OS colour-scheme preference when nothing has been saved.
func Detect() Theme {
	if hasDarkBackground() {
		return Dark
	}
	return Light
}

type Palette struct {
	Header   lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style
	Input    lipgloss.Style
	Output   lipgloss.Style
	Title    lipgloss.Style
	Error    lipgloss.Style
	Muted    lipgloss.Style
	Active   lipgloss.Style
	Inactive lipgloss.Style
	Copied   lipgloss.Style
}

func PaletteFor(t Theme) Palette {
	fg, muted, accent, border := lipgloss.Color("235"), lipgloss.Color("243"), lipgloss.Color("25"), lipgloss.Color("250")
	if t == Dark {
		fg, muted, accent, border = lipgloss.Color("252"), lipgloss.Color("245"), lipgloss.Color("75"), lipgloss.Color("238")
	}
	return Palette{
		Header:   lipgloss.NewStyle().Foreground(fg).Bold(true),
		Subtitle: lipgloss.NewStyle().Foreground(muted),
		Label:    lipgloss.NewStyle().Foreground(muted).Bold(true),
		Input:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1),
		Output:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Foreground(fg).Padding(0, 1),
		Title:    lipgloss.NewStyle().Foreground(accent).Bold(true),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Muted:    lipgloss.NewStyle().Foreground(muted),
		Active:   lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(accent).Bold(true).Padding(0, 1),
		Inactive: lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
		Copied:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	}
}
