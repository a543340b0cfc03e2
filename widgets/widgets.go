package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderBar renders a horizontal bar width cells wide, filled to norm (0-1)
func RenderBar(norm float64, width int, full, empty rune, color lipgloss.Color) string {
	if norm < 0 {
		norm = 0
	}
	if norm > 1 {
		norm = 1
	}
	filled := int(norm*float64(width) + 0.5)
	style := lipgloss.NewStyle().Foreground(color)
	return style.Render(strings.Repeat(string(full), filled)) +
		strings.Repeat(string(empty), width-filled)
}

// RenderSliderRow renders "▶ Name          [bar]  value"
func RenderSliderRow(cursor rune, name string, bar string, value float64) string {
	return fmt.Sprintf("%c %-24s %s %9s", cursor, name, bar, FormatValue(value))
}

// FormatValue prints a slider value with precision suited to its magnitude
func FormatValue(v float64) string {
	switch {
	case v >= 100:
		return fmt.Sprintf("%.0f", v)
	case v >= 10:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.3f", v)
	}
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
