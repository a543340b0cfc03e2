package dsp

import "math"

const minCutoff = 10.0

// Lowpass is a resonant two-pole lowpass (RBJ cookbook biquad, Direct Form I).
// Coefficients are recomputed only when frequency or Q change.
type Lowpass struct {
	sampleRate float64
	frequency  float64
	q          float64
	dirty      bool

	b0, b1, b2 float64
	a1, a2     float64

	x1, x2 float64
	y1, y2 float64
}

// NewLowpass creates a filter at 1 kHz with Q 0.707.
func NewLowpass(sampleRate float64) *Lowpass {
	f := &Lowpass{sampleRate: sampleRate, frequency: 1000, q: math.Sqrt2 / 2}
	f.update()
	return f
}

// SetFrequency sets the cutoff in Hz, clamped below Nyquist.
func (f *Lowpass) SetFrequency(hz float64) {
	hz = clamp(hz, minCutoff, 0.45*f.sampleRate)
	if hz != f.frequency {
		f.frequency = hz
		f.dirty = true
	}
}

// SetQ sets the resonance. Values below 0.1 are raised to 0.1.
func (f *Lowpass) SetQ(q float64) {
	if q < 0.1 {
		q = 0.1
	}
	if q != f.q {
		f.q = q
		f.dirty = true
	}
}

func (f *Lowpass) Frequency() float64 { return f.frequency }
func (f *Lowpass) Q() float64         { return f.q }

// Process filters one sample.
func (f *Lowpass) Process(in float64) float64 {
	if f.dirty {
		f.update()
	}
	out := f.b0*in + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2

	f.x2 = f.x1
	f.x1 = in
	f.y2 = f.y1
	f.y1 = out
	return out
}

// Reset clears the filter history.
func (f *Lowpass) Reset() {
	f.x1, f.x2 = 0, 0
	f.y1, f.y2 = 0, 0
}

func (f *Lowpass) update() {
	w0 := 2 * math.Pi * f.frequency / f.sampleRate
	alpha := math.Sin(w0) / (2 * f.q)
	cosw0 := math.Cos(w0)

	a0 := 1 + alpha
	f.b0 = (1 - cosw0) / 2 / a0
	f.b1 = (1 - cosw0) / a0
	f.b2 = (1 - cosw0) / 2 / a0
	f.a1 = -2 * cosw0 / a0
	f.a2 = (1 - alpha) / a0
	f.dirty = false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
