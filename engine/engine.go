// Package engine renders the mono synth voice: a wavetable oscillator into a
// resonant lowpass, with one envelope on amplitude and one on cutoff.
package engine

import (
	"go-monosynth/dsp"
	"go-monosynth/params"
	"go-monosynth/synth"
)

// outputGain keeps a full-scale oscillator with resonance out of clipping.
const outputGain = 0.5

// Engine owns the DSP chain and renders it block by block. Render must only be
// called from one goroutine (the audio thread); everything else is safe to
// call concurrently.
type Engine struct {
	sampleRate int
	bank       *params.Bank
	mono       *synth.Mono
	voice      *synth.Voice // last snapshot applied to the oscillator

	osc       *dsp.Wavetable
	filter    *dsp.Lowpass
	ampEnv    *dsp.ADSR
	filterEnv *dsp.ADSR

	meter Meter
}

// New builds the DSP chain and the note stack driving it. bank must use the
// params.DefaultSliders layout.
func New(sampleRate int, bank *params.Bank, table []float64, opts ...synth.Option) *Engine {
	sr := float64(sampleRate)
	e := &Engine{
		sampleRate: sampleRate,
		bank:       bank,
		osc:        dsp.NewWavetable(sr, table),
		filter:     dsp.NewLowpass(sr),
		ampEnv:     dsp.NewADSR(sr),
		filterEnv:  dsp.NewADSR(sr),
	}
	opts = append(opts, synth.WithEnvelopes(e.ampEnv, e.filterEnv))
	e.mono = synth.NewMono(opts...)
	return e
}

func (e *Engine) SampleRate() int    { return e.sampleRate }
func (e *Engine) Mono() *synth.Mono  { return e.mono }
func (e *Engine) Bank() *params.Bank { return e.bank }
func (e *Engine) Meter() *Meter      { return &e.meter }

// Render writes frames of audio into out, interleaved over channels. The same
// mono sample goes to every channel. Parameters are read once per call, the
// voice snapshot once per sample.
func (e *Engine) Render(out []float32, frames, channels int) {
	p := e.bank.Snapshot()
	e.ampEnv.SetAttackTime(p.AmpAttack)
	e.ampEnv.SetDecayTime(p.AmpDecay)
	e.ampEnv.SetSustainLevel(p.AmpSustain)
	e.ampEnv.SetReleaseTime(p.AmpRelease)
	e.filterEnv.SetAttackTime(p.FilterAttack)
	e.filterEnv.SetDecayTime(p.FilterDecay)
	e.filterEnv.SetSustainLevel(p.FilterSustain)
	e.filterEnv.SetReleaseTime(p.FilterRelease)
	e.filter.SetQ(p.FilterQ)

	var peakOut, peakAmp, peakCtrl float64
	for n := 0; n < frames; n++ {
		env := e.ampEnv.Process()
		control := e.filterEnv.Process()

		// Load after the envelopes: Mono publishes before gating, so a
		// trigger seen above always comes with its own pitch.
		if v := e.mono.Voice(); v != e.voice {
			e.voice = v
			e.osc.SetFrequency(v.BentFrequency())
		}
		amplitude := e.voice.Amplitude * env
		e.filter.SetFrequency(p.FilterBase + p.FilterSensitivity*control)

		sample := outputGain * e.filter.Process(e.osc.Process()*amplitude)
		for ch := 0; ch < channels; ch++ {
			out[n*channels+ch] = float32(sample)
		}

		peakOut = max(peakOut, abs(sample))
		peakAmp = max(peakAmp, amplitude)
		peakCtrl = max(peakCtrl, control)
	}
	e.meter.store(peakOut, peakAmp, peakCtrl, e.ampEnv.Stage())
}

// RenderFrames allocates and renders frames of interleaved audio.
func (e *Engine) RenderFrames(frames, channels int) []float32 {
	out := make([]float32, frames*channels)
	e.Render(out, frames, channels)
	return out
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
