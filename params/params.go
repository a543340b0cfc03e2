// Package params holds the bank of live-tunable synth parameters. The UI
// writes slider values at any time; the audio thread polls a Patch once per
// render block.
package params

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Slider describes one tunable value.
type Slider struct {
	Key     string // stable identifier used in config files
	Name    string
	Min     float64
	Max     float64
	Step    float64
	Default float64
}

// Clamp limits v to the slider range.
func (s Slider) Clamp(v float64) float64 {
	return math.Max(s.Min, math.Min(s.Max, v))
}

// Norm returns v as a fraction of the slider range.
func (s Slider) Norm(v float64) float64 {
	if s.Max == s.Min {
		return 0
	}
	return (v - s.Min) / (s.Max - s.Min)
}

// Slider indices in the default bank.
const (
	AmpAttack = iota
	AmpDecay
	AmpSustain
	AmpRelease
	FilterBase
	FilterSensitivity
	FilterQ
	FilterAttack
	FilterDecay
	FilterSustain
	FilterRelease
	numSliders
)

// DefaultSliders is the stock bank layout.
func DefaultSliders() []Slider {
	return []Slider{
		AmpAttack:         {Key: "ampAttack", Name: "Amplitude Attack time", Min: 0.001, Max: 0.1, Step: 0.001, Default: 0.01},
		AmpDecay:          {Key: "ampDecay", Name: "Amplitude Decay time", Min: 0.01, Max: 0.3, Step: 0.005, Default: 0.05},
		AmpSustain:        {Key: "ampSustain", Name: "Amplitude Sustain level", Min: 0, Max: 1, Step: 0.01, Default: 0.3},
		AmpRelease:        {Key: "ampRelease", Name: "Amplitude Release time", Min: 0.001, Max: 2, Step: 0.01, Default: 0.2},
		FilterBase:        {Key: "filterBase", Name: "Filter base frequency", Min: 50, Max: 1000, Step: 10, Default: 200},
		FilterSensitivity: {Key: "filterSensitivity", Name: "Filter sensitivity", Min: 0, Max: 10000, Step: 100, Default: 3000},
		FilterQ:           {Key: "filterQ", Name: "Filter Q", Min: 0.5, Max: 10, Step: 0.1, Default: 4},
		FilterAttack:      {Key: "filterAttack", Name: "Filter Attack time", Min: 0.001, Max: 0.1, Step: 0.001, Default: 0.05},
		FilterDecay:       {Key: "filterDecay", Name: "Filter Decay time", Min: 0.01, Max: 0.3, Step: 0.005, Default: 0.1},
		FilterSustain:     {Key: "filterSustain", Name: "Filter Sustain level", Min: 0, Max: 1, Step: 0.01, Default: 0.6},
		FilterRelease:     {Key: "filterRelease", Name: "Filter Release time", Min: 0.001, Max: 2, Step: 0.01, Default: 0.3},
	}
}

// Patch is one block's worth of parameter values.
type Patch struct {
	AmpAttack, AmpDecay, AmpSustain, AmpRelease             float64
	FilterBase, FilterSensitivity, FilterQ                  float64
	FilterAttack, FilterDecay, FilterSustain, FilterRelease float64
}

// Bank is a fixed set of sliders whose values can be read and written from
// different goroutines without locking.
type Bank struct {
	sliders []Slider
	values  []atomic.Uint64 // float64 bits
}

// NewBank creates a bank with every slider at its default.
func NewBank(sliders []Slider) *Bank {
	b := &Bank{
		sliders: sliders,
		values:  make([]atomic.Uint64, len(sliders)),
	}
	b.Reset()
	return b
}

// NewDefaultBank creates the stock eleven-slider bank.
func NewDefaultBank() *Bank {
	return NewBank(DefaultSliders())
}

func (b *Bank) Len() int            { return len(b.sliders) }
func (b *Bank) Slider(i int) Slider { return b.sliders[i] }
func (b *Bank) Value(i int) float64 { return math.Float64frombits(b.values[i].Load()) }
func (b *Bank) Sliders() []Slider   { return append([]Slider(nil), b.sliders...) }

// Set stores v clamped to the slider range and returns the stored value.
func (b *Bank) Set(i int, v float64) float64 {
	v = b.sliders[i].Clamp(v)
	b.values[i].Store(math.Float64bits(v))
	return v
}

// Nudge moves slider i by steps increments.
func (b *Bank) Nudge(i, steps int) float64 {
	return b.Set(i, b.Value(i)+float64(steps)*b.sliders[i].Step)
}

// ResetSlider restores slider i to its default.
func (b *Bank) ResetSlider(i int) {
	b.Set(i, b.sliders[i].Default)
}

// Reset restores every slider to its default.
func (b *Bank) Reset() {
	for i := range b.sliders {
		b.ResetSlider(i)
	}
}

// Index finds a slider by key.
func (b *Bank) Index(key string) (int, bool) {
	for i, s := range b.sliders {
		if s.Key == key {
			return i, true
		}
	}
	return -1, false
}

// Values returns the current values keyed by slider key.
func (b *Bank) Values() map[string]float64 {
	out := make(map[string]float64, len(b.sliders))
	for i, s := range b.sliders {
		out[s.Key] = b.Value(i)
	}
	return out
}

// Load applies saved values. Unknown keys are an error; missing keys keep
// their current value.
func (b *Bank) Load(values map[string]float64) error {
	for key, v := range values {
		i, ok := b.Index(key)
		if !ok {
			return fmt.Errorf("unknown parameter %q", key)
		}
		b.Set(i, v)
	}
	return nil
}

// Snapshot reads the stock parameters into a Patch. The bank must use the
// DefaultSliders layout.
func (b *Bank) Snapshot() Patch {
	return Patch{
		AmpAttack:         b.Value(AmpAttack),
		AmpDecay:          b.Value(AmpDecay),
		AmpSustain:        b.Value(AmpSustain),
		AmpRelease:        b.Value(AmpRelease),
		FilterBase:        b.Value(FilterBase),
		FilterSensitivity: b.Value(FilterSensitivity),
		FilterQ:           b.Value(FilterQ),
		FilterAttack:      b.Value(FilterAttack),
		FilterDecay:       b.Value(FilterDecay),
		FilterSustain:     b.Value(FilterSustain),
		FilterRelease:     b.Value(FilterRelease),
	}
}
