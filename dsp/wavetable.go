package dsp

import "math"

// DefaultTableSize and DefaultHarmonics describe the stock sawtooth table.
const (
	DefaultTableSize = 512
	DefaultHarmonics = 48
)

// SawtoothTable builds one cycle of a band-limited sawtooth from the first
// harmonics partials.
func SawtoothTable(size, harmonics int) []float64 {
	table := make([]float64, size)
	for n := range table {
		for h := 1; h <= harmonics; h++ {
			table[n] += 0.5 * math.Sin(2*math.Pi*float64(h)*float64(n)/float64(size)) / float64(h)
		}
	}
	return table
}

// Wavetable is a linearly interpolating table oscillator.
type Wavetable struct {
	table      []float64
	sampleRate float64
	frequency  float64
	phase      float64 // read position in samples
	increment  float64
}

// NewWavetable creates an oscillator over table. The table is not copied.
func NewWavetable(sampleRate float64, table []float64) *Wavetable {
	return &Wavetable{
		table:      table,
		sampleRate: sampleRate,
	}
}

// SetFrequency sets the oscillator pitch in Hz.
func (w *Wavetable) SetFrequency(hz float64) {
	w.frequency = hz
	w.increment = hz * float64(len(w.table)) / w.sampleRate
}

func (w *Wavetable) Frequency() float64 { return w.frequency }

// Process returns the next sample.
func (w *Wavetable) Process() float64 {
	size := len(w.table)
	if size == 0 {
		return 0
	}
	i := int(w.phase)
	frac := w.phase - float64(i)
	a := w.table[i]
	b := w.table[(i+1)%size]
	out := a + frac*(b-a)

	w.phase += w.increment
	for w.phase >= float64(size) {
		w.phase -= float64(size)
	}
	for w.phase < 0 {
		w.phase += float64(size)
	}
	return out
}
