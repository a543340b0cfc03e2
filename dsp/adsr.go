package dsp

import "sync/atomic"

// Stage is the current segment of an ADSR envelope.
type Stage int

const (
	StageIdle Stage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	}
	return "unknown"
}

// ADSR is a linear attack/decay/sustain/release envelope in [0,1].
//
// Trigger and Release may be called from any goroutine: they only record the
// gate change, which Process picks up on the audio thread. Everything else
// belongs to the audio thread.
type ADSR struct {
	sampleRate float64

	attackTime  float64
	decayTime   float64
	sustain     float64
	releaseTime float64

	stage       Stage
	level       float64
	releaseStep float64

	triggers atomic.Uint64
	gate     atomic.Bool
	seen     uint64
}

// NewADSR creates an idle envelope with short default times.
func NewADSR(sampleRate float64) *ADSR {
	return &ADSR{
		sampleRate:  sampleRate,
		attackTime:  0.01,
		decayTime:   0.05,
		sustain:     0.5,
		releaseTime: 0.2,
	}
}

func (e *ADSR) SetAttackTime(seconds float64)  { e.attackTime = seconds }
func (e *ADSR) SetDecayTime(seconds float64)   { e.decayTime = seconds }
func (e *ADSR) SetReleaseTime(seconds float64) { e.releaseTime = seconds }

// SetSustainLevel clamps level to [0,1].
func (e *ADSR) SetSustainLevel(level float64) { e.sustain = clamp(level, 0, 1) }

// Trigger starts the attack from the current level.
func (e *ADSR) Trigger() {
	e.gate.Store(true)
	e.triggers.Add(1)
}

// Release starts the release from the current level toward zero.
func (e *ADSR) Release() {
	e.gate.Store(false)
}

func (e *ADSR) Stage() Stage   { return e.stage }
func (e *ADSR) Level() float64 { return e.level }

// Process advances one sample and returns the new level.
func (e *ADSR) Process() float64 {
	e.pollGate()

	switch e.stage {
	case StageAttack:
		e.level += e.step(1, e.attackTime)
		if e.level >= 1 {
			e.level = 1
			e.stage = StageDecay
		}
	case StageDecay:
		e.level -= e.step(1-e.sustain, e.decayTime)
		if e.level <= e.sustain {
			e.level = e.sustain
			e.stage = StageSustain
		}
	case StageSustain:
		e.level = e.sustain
	case StageRelease:
		e.level -= e.releaseStep
		if e.level <= 0 {
			e.level = 0
			e.stage = StageIdle
		}
	}
	return e.level
}

// Reset returns to idle at zero. Audio thread only.
func (e *ADSR) Reset() {
	e.stage = StageIdle
	e.level = 0
	e.seen = e.triggers.Load()
	e.gate.Store(false)
}

func (e *ADSR) pollGate() {
	if n := e.triggers.Load(); n != e.seen {
		e.seen = n
		e.stage = StageAttack
	}
	if !e.gate.Load() && e.stage != StageIdle && e.stage != StageRelease {
		e.stage = StageRelease
		e.releaseStep = e.step(e.level, e.releaseTime)
		if e.releaseStep <= 0 {
			e.level = 0
			e.stage = StageIdle
		}
	}
}

// step is the per-sample increment covering distance in seconds.
func (e *ADSR) step(distance, seconds float64) float64 {
	samples := seconds * e.sampleRate
	if samples < 1 {
		return distance
	}
	return distance / samples
}
