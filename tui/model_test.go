package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"go-monosynth/config"
	"go-monosynth/dsp"
	"go-monosynth/engine"
	"go-monosynth/params"
	"go-monosynth/theme"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	eng := engine.New(48000, params.NewDefaultBank(), dsp.SawtoothTable(64, 8))
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	return NewModel(eng, nil, config.DefaultConfig(), cfgPath, theme.Default())
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestSelectionWraps(t *testing.T) {
	m := newTestModel(t)
	n := m.Engine.Bank().Len()

	m = update(t, m, key("k"))
	if m.selected != n-1 {
		t.Fatalf("up from top selected %d, want %d", m.selected, n-1)
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.selected != 0 {
		t.Fatalf("down from bottom selected %d, want 0", m.selected)
	}
}

func TestAdjustAndReset(t *testing.T) {
	m := newTestModel(t)
	bank := m.Engine.Bank()
	m = update(t, m, key("j"), key("j"), key("j")) // Amplitude Release

	s := bank.Slider(params.AmpRelease)
	m = update(t, m, key("l"))
	if got, want := bank.Value(params.AmpRelease), s.Default+s.Step; !approx(got, want) {
		t.Fatalf("after l = %v, want %v", got, want)
	}
	m = update(t, m, key("H"))
	if got, want := bank.Value(params.AmpRelease), s.Clamp(s.Default+s.Step-coarseSteps*s.Step); !approx(got, want) {
		t.Fatalf("after H = %v, want %v", got, want)
	}
	m = update(t, m, key("r"))
	if got := bank.Value(params.AmpRelease); got != s.Default {
		t.Fatalf("after r = %v, want default %v", got, s.Default)
	}
}

func TestPanicSilencesVoice(t *testing.T) {
	m := newTestModel(t)
	m.Engine.Mono().NoteOn(60, 100)
	m.Engine.Mono().NoteOn(64, 100)

	m = update(t, m, key("p"))
	if m.Engine.Mono().Voice().Sounding() {
		t.Fatal("voice still sounding after panic")
	}
	if m.status == "" {
		t.Fatal("expected status message")
	}
}

func TestSaveWritesParams(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, key("j"), key("l"), key("s"))

	loaded, err := config.LoadFrom(m.ConfigPath)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.UI.LastSelected != 1 {
		t.Errorf("LastSelected = %d, want 1", loaded.UI.LastSelected)
	}
	bank := params.NewDefaultBank()
	if err := bank.Load(loaded.Params); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, want := bank.Value(1), m.Engine.Bank().Value(1); !approx(got, want) {
		t.Errorf("saved value = %v, want %v", got, want)
	}
}

func TestViewShowsSlidersAndHeldNotes(t *testing.T) {
	m := newTestModel(t)
	m.Engine.Mono().NoteOn(69, 100)

	view := m.View()
	for _, s := range m.Engine.Bank().Sliders() {
		if !strings.Contains(view, s.Name) {
			t.Errorf("view missing slider %q", s.Name)
		}
	}
	if !strings.Contains(view, "A4") {
		t.Error("view missing sounding note name")
	}
	if !strings.Contains(view, "440.00 Hz") {
		t.Error("view missing frequency")
	}
}

func TestQuitClearsView(t *testing.T) {
	m := newTestModel(t)
	m.Engine.Mono().NoteOn(60, 100)

	next, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	m = next.(Model)
	if m.View() != "" {
		t.Error("view should be empty after quit")
	}
	if m.Engine.Mono().Voice().Sounding() {
		t.Error("quit should release held notes")
	}
}

func approx(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
