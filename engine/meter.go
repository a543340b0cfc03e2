package engine

import (
	"math"
	"sync/atomic"

	"go-monosynth/dsp"
)

// Levels are the peaks of the last rendered block.
type Levels struct {
	Output        float64
	Amplitude     float64 // velocity gain times amplitude envelope
	FilterControl float64 // filter envelope, 0..1
	Stage         dsp.Stage
}

// Meter publishes per-block peaks from the audio thread to readers.
type Meter struct {
	output    atomic.Uint64
	amplitude atomic.Uint64
	control   atomic.Uint64
	stage     atomic.Int32
}

func (m *Meter) store(out, amp, ctrl float64, stage dsp.Stage) {
	m.output.Store(math.Float64bits(out))
	m.amplitude.Store(math.Float64bits(amp))
	m.control.Store(math.Float64bits(ctrl))
	m.stage.Store(int32(stage))
}

// Levels returns the most recent block peaks.
func (m *Meter) Levels() Levels {
	return Levels{
		Output:        math.Float64frombits(m.output.Load()),
		Amplitude:     math.Float64frombits(m.amplitude.Load()),
		FilterControl: math.Float64frombits(m.control.Load()),
		Stage:         dsp.Stage(m.stage.Load()),
	}
}
