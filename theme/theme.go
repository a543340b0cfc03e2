package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Slider and meter bars
	BarFull  rune // █ filled part
	BarEmpty rune // ░ unfilled part

	// Slider list
	Cursor   rune // ▶ selected slider
	NoCursor rune // space

	// Note stack
	Sounding rune // ● tail note, the one that sounds
	Held     rune // ○ held underneath
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			BarFull:  '█',
			BarEmpty: '░',

			Cursor:   '▶',
			NoCursor: ' ',

			Sounding: '●',
			Held:     '○',
		},
	}
}

// Default uses the built-in palette
func Default() *Theme {
	return New(DefaultPalette())
}

// Color roles mapped to palette positions (0-1)
const (
	RoleMuted  = 0.2 // purple-magenta
	RoleFG     = 0.4 // pink-purple (readable)
	RoleAccent = 0.5 // vivid magenta
	RoleCursor = 0.6 // rose pink
)

// Style helpers

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Cursor() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleCursor))
}

// Color returns lipgloss color for any normalized value 0-1 (meter heat)
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
