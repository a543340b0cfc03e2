package synth

import (
	"sync"
	"sync/atomic"
)

// Envelope is the gate side of an envelope generator.
type Envelope interface {
	Trigger()
	Release()
}

// Voice is an immutable snapshot of the performance state. The audio thread
// reads it once per block; it is never modified after being published.
type Voice struct {
	Frequency float64 // centre frequency, before pitch bend
	Amplitude float64
	Bend      int16
	BendRange float64 // semitones at full wheel deflection
	Notes     []uint8 // held notes, oldest first
}

// Sounding reports whether any note is held.
func (v *Voice) Sounding() bool { return len(v.Notes) > 0 }

// BentFrequency is the oscillator frequency with pitch bend applied.
func (v *Voice) BentFrequency() float64 {
	return v.Frequency * BendRatio(v.Bend, v.BendRange)
}

// Mono tracks held notes for a single last-note-priority voice. Writers (MIDI
// handlers, the UI) are serialised by a mutex; the audio thread only calls
// Voice, which never blocks.
type Mono struct {
	mu        sync.Mutex
	stack     NoteStack
	policy    StealPolicy
	bendRange float64
	envelopes []Envelope

	frequency float64
	amplitude float64
	bend      int16

	current atomic.Pointer[Voice]
}

// Option configures a Mono.
type Option func(*Mono)

// WithPolicy selects what happens to note-ons beyond MaxNotes.
func WithPolicy(p StealPolicy) Option {
	return func(m *Mono) { m.policy = p }
}

// WithBendRange sets the pitch wheel range in semitones.
func WithBendRange(semitones float64) Option {
	return func(m *Mono) { m.bendRange = semitones }
}

// WithEnvelopes sets the generators triggered on the first held note and
// released when the last one lifts.
func WithEnvelopes(envs ...Envelope) Option {
	return func(m *Mono) { m.envelopes = envs }
}

// NewMono creates an idle voice at 440 Hz with zero amplitude.
func NewMono(opts ...Option) *Mono {
	m := &Mono{
		policy:    RejectNew,
		bendRange: 2,
		frequency: 440,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.publish()
	return m
}

// Policy returns the configured steal policy.
func (m *Mono) Policy() StealPolicy { return m.policy }

// NoteOn handles a key press. Velocity 0 must be routed to NoteOff by the
// caller.
func (m *Mono) NoteOn(note, velocity uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stack.Full() {
		if m.policy != StealOldest {
			return
		}
		m.stack.DropOldest()
	}
	m.stack.Push(note)

	m.frequency = NoteToFrequency(note)
	m.amplitude = VelocityToAmplitude(velocity)

	// Publish before gating so a reader that sees the trigger sees the pitch.
	m.publish()
	if m.stack.Len() == 1 {
		for _, env := range m.envelopes {
			env.Trigger()
		}
	}
}

// NoteOff handles a key release, removing every held copy of note. Any
// note-off that leaves the stack empty releases the envelopes.
func (m *Mono) NoteOff(note uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed, topRemoved := m.stack.Remove(note)
	top, held := m.stack.Top()
	if held && topRemoved {
		// Glide to the previous note; envelope and amplitude carry on.
		m.frequency = NoteToFrequency(top)
	}
	if removed > 0 {
		m.publish()
	}

	// An empty stack always releases, even for a note that was never held.
	if !held {
		for _, env := range m.envelopes {
			env.Release()
		}
	}
}

// PitchBend sets the wheel position, relative form in [-8192, 8191].
func (m *Mono) PitchBend(value int16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bend = value
	m.publish()
}

// AllNotesOff empties the stack and releases the envelopes if anything was
// held.
func (m *Mono) AllNotesOff() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stack.Len() == 0 {
		return
	}
	m.stack.Clear()
	m.publish()
	for _, env := range m.envelopes {
		env.Release()
	}
}

// Voice returns the latest published snapshot. Safe from any goroutine.
func (m *Mono) Voice() *Voice {
	return m.current.Load()
}

// publish must be called with mu held.
func (m *Mono) publish() {
	m.current.Store(&Voice{
		Frequency: m.frequency,
		Amplitude: m.amplitude,
		Bend:      m.bend,
		BendRange: m.bendRange,
		Notes:     m.stack.Notes(),
	})
}
