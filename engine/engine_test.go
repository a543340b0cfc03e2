package engine

import (
	"math"
	"testing"
	"time"

	"go-monosynth/dsp"
	"go-monosynth/params"
	"go-monosynth/synth"
)

const testRate = 48000

func newTestEngine(opts ...synth.Option) *Engine {
	table := dsp.SawtoothTable(dsp.DefaultTableSize, dsp.DefaultHarmonics)
	return New(testRate, params.NewDefaultBank(), table, opts...)
}

func peak(samples []float32) float64 {
	var p float64
	for _, s := range samples {
		p = math.Max(p, math.Abs(float64(s)))
	}
	return p
}

func TestSilentUntilNoteOn(t *testing.T) {
	e := newTestEngine()
	out := e.RenderFrames(512, 2)
	if p := peak(out); p != 0 {
		t.Fatalf("idle engine produced peak %.4f", p)
	}
}

func TestNoteProducesSoundOnEveryChannel(t *testing.T) {
	e := newTestEngine()
	e.Mono().NoteOn(60, 127)

	const channels = 3
	out := e.RenderFrames(4096, channels)

	if p := peak(out); p < 0.01 {
		t.Fatalf("note-on produced peak %.4f", p)
	}
	for n := 0; n < len(out)/channels; n++ {
		for ch := 1; ch < channels; ch++ {
			if out[n*channels+ch] != out[n*channels] {
				t.Fatalf("frame %d: channel %d differs", n, ch)
			}
		}
	}
	lv := e.Meter().Levels()
	if lv.Output <= 0 || lv.Amplitude <= 0 || lv.FilterControl <= 0 {
		t.Errorf("meter not updated: %+v", lv)
	}
}

func TestReleaseDecaysToSilence(t *testing.T) {
	e := newTestEngine()
	e.Bank().Set(params.AmpRelease, 0.01)
	e.Mono().NoteOn(64, 100)
	e.RenderFrames(4800, 1)

	e.Mono().NoteOff(64)
	e.RenderFrames(4800, 1)

	if lv := e.Meter().Levels(); lv.Stage != dsp.StageIdle {
		t.Fatalf("envelope stage %s after release", lv.Stage)
	}
	if p := peak(e.RenderFrames(512, 1)); p > 1e-3 {
		t.Errorf("tail after release peak %.5f", p)
	}
}

func TestVelocityScalesOutput(t *testing.T) {
	loud := newTestEngine()
	soft := newTestEngine()
	loud.Mono().NoteOn(57, 127)
	soft.Mono().NoteOn(57, 1)

	pl := peak(loud.RenderFrames(8192, 1))
	ps := peak(soft.RenderFrames(8192, 1))

	ratio := ps / pl
	if math.Abs(ratio-0.01) > 0.002 {
		t.Errorf("velocity 1/127 level ratio %.4f, want ~0.01", ratio)
	}
}

func TestLegatoKeepsEnvelopeRunning(t *testing.T) {
	e := newTestEngine()
	e.Mono().NoteOn(60, 100)
	e.RenderFrames(testRate/2, 1)
	if st := e.Meter().Levels().Stage; st != dsp.StageSustain {
		t.Fatalf("stage %s, want sustain", st)
	}

	e.Mono().NoteOn(67, 100)
	e.RenderFrames(64, 1)

	if st := e.Meter().Levels().Stage; st != dsp.StageSustain {
		t.Errorf("legato note moved envelope to %s", st)
	}
}

func TestBendChangesOscillatorOnly(t *testing.T) {
	e := newTestEngine()
	e.Mono().NoteOn(69, 100)
	e.Mono().PitchBend(-synth.BendMax)
	e.RenderFrames(64, 1)

	if got := e.osc.Frequency(); math.Abs(got-392) > 0.01 {
		t.Errorf("oscillator at %.3f Hz, want ~392", got)
	}
	if got := e.Mono().Voice().Frequency; got != 440 {
		t.Errorf("centre frequency %.3f", got)
	}
}

func TestParametersPolledPerBlock(t *testing.T) {
	e := newTestEngine()
	e.Bank().Set(params.FilterQ, 7)
	e.RenderFrames(1, 1)
	if got := e.filter.Q(); got != 7 {
		t.Errorf("filter Q %.2f after block, want 7", got)
	}
}

func TestNoteOnMidBlockAttacksAtNewPitch(t *testing.T) {
	e := newTestEngine()
	e.Mono().NoteOn(48, 100)
	e.RenderFrames(4800, 1)
	e.Mono().NoteOff(48)
	e.RenderFrames(testRate, 1)
	if lv := e.Meter().Levels(); lv.Stage != dsp.StageIdle || lv.Amplitude != 0 {
		t.Fatalf("voice not silent before the next note: %+v", lv)
	}

	want := synth.NoteToFrequency(72)
	go func() {
		time.Sleep(time.Millisecond)
		e.Mono().NoteOn(72, 100)
	}()

	for block := 0; block < 2000; block++ {
		e.RenderFrames(testRate, 1)
		if lv := e.Meter().Levels(); lv.Amplitude > 0 {
			if got := e.osc.Frequency(); math.Abs(got-want) > 0.01 {
				t.Fatalf("attack (peak amp %.4f) with oscillator at %.2f Hz, want %.2f Hz", lv.Amplitude, got, want)
			}
			return
		}
	}
	t.Fatal("note-on never reached the envelope")
}

func TestVoiceChangeAppliesWithinBlock(t *testing.T) {
	e := newTestEngine()
	e.Mono().NoteOn(60, 100)
	e.RenderFrames(256, 1)
	e.Mono().NoteOn(67, 100) // legato: no retrigger, pitch only
	e.RenderFrames(1, 1)

	if got, want := e.osc.Frequency(), synth.NoteToFrequency(67); math.Abs(got-want) > 1e-9 {
		t.Errorf("oscillator at %.3f Hz after one sample, want %.3f", got, want)
	}
}
