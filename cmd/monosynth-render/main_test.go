package main

import (
	"math"
	"path/filepath"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-monosynth/dsp"
	"go-monosynth/engine"
	"go-monosynth/midi"
	"go-monosynth/params"
)

const testRate = 48000

func newTestEngine() *engine.Engine {
	return engine.New(testRate, params.NewDefaultBank(), dsp.SawtoothTable(dsp.DefaultTableSize, dsp.DefaultHarmonics))
}

func peak(samples []float32) float64 {
	var p float64
	for _, s := range samples {
		p = math.Max(p, math.Abs(float64(s)))
	}
	return p
}

func TestMicrosToFrame(t *testing.T) {
	tests := []struct {
		us   int64
		rate int
		want int
	}{
		{0, 48000, 0},
		{1_000_000, 48000, 48000},
		{500_000, 44100, 22050},
		{20, 48000, 0},
	}
	for _, tt := range tests {
		if got := microsToFrame(tt.us, tt.rate); got != tt.want {
			t.Errorf("microsToFrame(%d, %d) = %d, want %d", tt.us, tt.rate, got, tt.want)
		}
	}
}

func TestRenderLengthIncludesTail(t *testing.T) {
	events := []timedEvent{
		{frame: 0, ev: midi.Event{Type: midi.NoteOn, Note: 60, Velocity: 100}},
		{frame: 4800, ev: midi.Event{Type: midi.NoteOff, Note: 60}},
	}
	out := render(newTestEngine(), events, midi.OmniChannel, 2, 256, testRate)
	if want := (4800 + testRate) * 2; len(out) != want {
		t.Fatalf("len = %d, want %d", len(out), want)
	}
}

func TestRenderAppliesEventsAtBlockBoundaries(t *testing.T) {
	events := []timedEvent{
		{frame: 1000, ev: midi.Event{Type: midi.NoteOn, Note: 69, Velocity: 127}},
		{frame: 9600, ev: midi.Event{Type: midi.NoteOff, Note: 69}},
	}
	const block = 512
	out := render(newTestEngine(), events, midi.OmniChannel, 1, block, testRate)

	// The note-on falls inside the second block, so the first stays silent.
	if p := peak(out[:block]); p != 0 {
		t.Errorf("first block peak = %.4f, want silence", p)
	}
	if p := peak(out[block:9600]); p < 0.05 {
		t.Errorf("held note peak = %.4f, want audible", p)
	}
	if p := peak(out[len(out)-block:]); p > 1e-6 {
		t.Errorf("tail peak = %.6f, want silence after release", p)
	}
}

func TestRenderFiltersChannel(t *testing.T) {
	events := []timedEvent{
		{frame: 0, ev: midi.Event{Type: midi.NoteOn, Channel: 3, Note: 60, Velocity: 100}},
	}
	out := render(newTestEngine(), events, 0, 1, 256, 4096)
	if p := peak(out); p != 0 {
		t.Fatalf("event on another channel produced peak %.4f", p)
	}
}

func TestLoadEventsOrdersAcrossTracks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "melody.mid")

	s := smf.New() // 960 ticks per quarter
	var tempo smf.Track
	tempo.Add(0, smf.MetaTempo(120))
	tempo.Close(0)

	var notes smf.Track
	notes.Add(0, gomidi.NoteOn(0, 60, 100))
	notes.Add(960, gomidi.NoteOff(0, 60))
	notes.Add(0, gomidi.Pitchbend(0, 4096))
	notes.Close(0)

	if err := s.Add(tempo); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(notes); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteFile(path); err != nil {
		t.Fatal(err)
	}

	events, err := loadEvents(path, testRate)
	if err != nil {
		t.Fatalf("loadEvents: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3: %v", len(events), events)
	}

	want := []struct {
		frame int
		typ   uint8
	}{
		{0, midi.NoteOn},
		{testRate / 2, midi.NoteOff}, // one beat at 120 bpm
		{testRate / 2, midi.PitchBend},
	}
	for i, w := range want {
		if events[i].frame != w.frame || events[i].ev.Type != w.typ {
			t.Errorf("event %d = frame %d %s, want frame %d type 0x%02X",
				i, events[i].frame, events[i].ev, w.frame, w.typ)
		}
	}
}

func TestLoadEventsMissingFile(t *testing.T) {
	if _, err := loadEvents(filepath.Join(t.TempDir(), "nope.mid"), testRate); err == nil {
		t.Fatal("expected error for missing file")
	}
}
