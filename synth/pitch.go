package synth

import (
	"fmt"
	"math"
)

const (
	// MinVelocityDB is the level of the softest note-on (velocity 1).
	MinVelocityDB = -40.0

	// BendMax is a full pitch wheel deflection in gomidi's relative form.
	BendMax = 8192
)

// NoteToFrequency converts a MIDI note number to Hz (A4 = 69 = 440 Hz).
func NoteToFrequency(note uint8) float64 {
	return 440.0 * math.Pow(2, (float64(note)-69)/12.0)
}

// VelocityToAmplitude maps velocity 1..127 onto -40..0 dB and returns the
// linear gain.
func VelocityToAmplitude(velocity uint8) float64 {
	db := mapRange(float64(velocity), 1, 127, MinVelocityDB, 0)
	return math.Pow(10, db/20.0)
}

// BendRatio returns the frequency multiplier for a relative pitch wheel value
// in [-8192, 8191] and a bend range in semitones.
func BendRatio(bend int16, rangeSemitones float64) float64 {
	if bend == 0 || rangeSemitones == 0 {
		return 1
	}
	semis := float64(bend) / BendMax * rangeSemitones
	return math.Pow(2, semis/12.0)
}

func mapRange(x, inMin, inMax, outMin, outMax float64) float64 {
	return outMin + (x-inMin)*(outMax-outMin)/(inMax-inMin)
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName formats a MIDI note as scientific pitch, middle C = C4.
func NoteName(note uint8) string {
	return fmt.Sprintf("%s%d", noteNames[note%12], int(note)/12-1)
}
