package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-monosynth/config"
	"go-monosynth/debug"
	"go-monosynth/engine"
	"go-monosynth/midi"
	"go-monosynth/synth"
	"go-monosynth/theme"
	"go-monosynth/widgets"
)

const (
	refreshRate = 50 * time.Millisecond
	barWidth    = 24
	coarseSteps = 10
)

type Model struct {
	Engine     *engine.Engine
	DeviceMgr  *midi.DeviceManager // may be nil
	Config     *config.Config
	ConfigPath string
	Theme      *theme.Theme

	selected   int
	controller midi.Controller // current controller (may be nil)
	status     string
	quitting   bool
}

type TickMsg time.Time

type DeviceEventMsg midi.DeviceEvent

func NewModel(eng *engine.Engine, deviceMgr *midi.DeviceManager, cfg *config.Config, cfgPath string, th *theme.Theme) Model {
	m := Model{
		Engine:     eng,
		DeviceMgr:  deviceMgr,
		Config:     cfg,
		ConfigPath: cfgPath,
		Theme:      th,
	}
	if sel := cfg.UI.LastSelected; sel >= 0 && sel < eng.Bank().Len() {
		m.selected = sel
	}
	return m
}

func tick() tea.Cmd {
	return tea.Tick(refreshRate, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	if m.DeviceMgr == nil {
		return tick()
	}
	return tea.Batch(tick(), ListenForDevices(m.DeviceMgr))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	bank := m.Engine.Bank()

	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.status = ""
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.Engine.Mono().AllNotesOff()
			return m, tea.Quit

		case "j", "down":
			m.selected = (m.selected + 1) % bank.Len()

		case "k", "up":
			m.selected = (m.selected + bank.Len() - 1) % bank.Len()

		case "l", "right":
			bank.Nudge(m.selected, 1)

		case "h", "left":
			bank.Nudge(m.selected, -1)

		case "L", "shift+right":
			bank.Nudge(m.selected, coarseSteps)

		case "H", "shift+left":
			bank.Nudge(m.selected, -coarseSteps)

		case "r":
			bank.ResetSlider(m.selected)

		case "R":
			bank.Reset()
			m.status = "all parameters reset"

		case "p":
			m.Engine.Mono().AllNotesOff()
			m.status = "all notes off"

		case "s":
			m.status = m.save()
		}

	case TickMsg:
		return m, tick()

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		if event.Type == midi.DeviceConnected {
			m.controller = event.Controller
			m.status = "connected " + event.ID

			// Feed the voice from the new controller
			go midi.Pump(event.Controller, m.Engine.Mono(), m.Config.MIDI.Channel())
		} else if event.Type == midi.DeviceDisconnected {
			if m.controller != nil && m.controller.ID() == event.ID {
				m.controller = nil
			}
			m.status = "disconnected " + event.ID
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

func (m Model) save() string {
	m.Config.Params = m.Engine.Bank().Values()
	m.Config.UI.LastSelected = m.selected
	if err := m.Config.SaveTo(m.ConfigPath); err != nil {
		debug.Log("tui", "save config: %v", err)
		return "save failed: " + err.Error()
	}
	return "saved " + m.ConfigPath
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	cursorStyle := lipgloss.NewStyle().Foreground(m.Theme.Cursor()).Bold(true)
	statusStyle := lipgloss.NewStyle().
		Foreground(m.Theme.FG()).
		Background(m.Theme.Muted()).
		Padding(0, 1)

	voice := m.Engine.Mono().Voice()

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(headerStyle.Render(m.headerLine(voice)))
	out.WriteString("\n")
	out.WriteString(m.stackLine(voice))
	out.WriteString("\n\n")

	bank := m.Engine.Bank()
	for i := 0; i < bank.Len(); i++ {
		s := bank.Slider(i)
		v := bank.Value(i)
		bar := widgets.RenderBar(s.Norm(v), barWidth, m.Theme.Symbols.BarFull, m.Theme.Symbols.BarEmpty, m.Theme.Accent())
		cursor := m.Theme.Symbols.NoCursor
		if i == m.selected {
			cursor = m.Theme.Symbols.Cursor
		}
		row := widgets.RenderSliderRow(cursor, s.Name, bar, v)
		if i == m.selected {
			row = cursorStyle.Render(row)
		}
		out.WriteString(row)
		out.WriteString("\n")
	}

	out.WriteString("\n")
	out.WriteString(m.meterView())
	out.WriteString("\n\n")
	out.WriteString(dimStyle.Render(widgets.RenderKeyHelp([]widgets.KeySection{
		{Keys: []widgets.KeyBinding{
			{Key: "j / k", Desc: "select parameter"},
			{Key: "h / l", Desc: "adjust (H / L coarse)"},
			{Key: "r / R", Desc: "reset parameter / all"},
			{Key: "p", Desc: "all notes off"},
			{Key: "s", Desc: "save parameters"},
			{Key: "q", Desc: "quit"},
		}},
	})))

	if m.status != "" {
		out.WriteString("\n\n")
		out.WriteString(statusStyle.Render(m.status))
	}

	return out.String()
}

func (m Model) headerLine(v *synth.Voice) string {
	device := "no MIDI input"
	if m.controller != nil {
		device = m.controller.ID()
	}
	if !v.Sounding() {
		return fmt.Sprintf("go-monosynth  %s  [%s]", device, m.Engine.Mono().Policy())
	}
	top := v.Notes[len(v.Notes)-1]
	return fmt.Sprintf("go-monosynth  %s  %-4s %8.2f Hz  bend %+5d  [%s]",
		device, synth.NoteName(top), v.BentFrequency(), v.Bend, m.Engine.Mono().Policy())
}

func (m Model) stackLine(v *synth.Voice) string {
	var out strings.Builder
	out.WriteString(fmt.Sprintf("held %2d/%d ", len(v.Notes), synth.MaxNotes))
	for i, n := range v.Notes {
		sym := m.Theme.Symbols.Held
		if i == len(v.Notes)-1 {
			sym = m.Theme.Symbols.Sounding
		}
		out.WriteString(fmt.Sprintf(" %c%s", sym, synth.NoteName(n)))
	}
	return out.String()
}

func (m Model) meterView() string {
	lv := m.Engine.Meter().Levels()
	rows := []struct {
		name string
		norm float64
	}{
		{"Output", lv.Output},
		{"Amplitude", lv.Amplitude},
		{"Filter envelope", lv.FilterControl},
	}
	var lines []string
	for _, r := range rows {
		bar := widgets.RenderBar(r.norm, barWidth, m.Theme.Symbols.BarFull, m.Theme.Symbols.BarEmpty, m.Theme.Color(r.norm))
		lines = append(lines, fmt.Sprintf("  %-24s %s", r.name, bar))
	}
	lines = append(lines, fmt.Sprintf("  %-24s %s", "Envelope stage", lv.Stage))
	return strings.Join(lines, "\n")
}
