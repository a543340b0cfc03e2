package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// MIDI message types
const (
	NoteOn    uint8 = 0x90
	NoteOff   uint8 = 0x80
	CC        uint8 = 0xB0
	PitchBend uint8 = 0xE0
)

// Controller numbers handled by the synth
const (
	CCAllSoundOff uint8 = 120
	CCAllNotesOff uint8 = 123
)

// Event is a decoded channel message
type Event struct {
	Type     uint8 // NoteOn, NoteOff, CC, PitchBend
	Channel  uint8
	Note     uint8 // note number, or controller number for CC
	Velocity uint8 // velocity, or controller value for CC
	Bend     int16 // relative pitch wheel value for PitchBend
}

func (e Event) String() string {
	switch e.Type {
	case NoteOn:
		return fmt.Sprintf("ch%-2d note-on   %3d vel %3d", e.Channel+1, e.Note, e.Velocity)
	case NoteOff:
		return fmt.Sprintf("ch%-2d note-off  %3d", e.Channel+1, e.Note)
	case CC:
		return fmt.Sprintf("ch%-2d cc        %3d val %3d", e.Channel+1, e.Note, e.Velocity)
	case PitchBend:
		return fmt.Sprintf("ch%-2d pitchbend %+5d", e.Channel+1, e.Bend)
	}
	return fmt.Sprintf("type 0x%02X", e.Type)
}

// Decode converts a raw message into an Event. A note-on with velocity 0 comes
// back as NoteOff. Messages the synth ignores report false.
func Decode(msg gomidi.Message) (Event, bool) {
	var channel, key, velocity, cc, value uint8
	var rel int16
	var abs uint16

	switch {
	case msg.GetNoteStart(&channel, &key, &velocity):
		return Event{Type: NoteOn, Channel: channel, Note: key, Velocity: velocity}, true
	case msg.GetNoteEnd(&channel, &key):
		return Event{Type: NoteOff, Channel: channel, Note: key}, true
	case msg.GetPitchBend(&channel, &rel, &abs):
		return Event{Type: PitchBend, Channel: channel, Bend: rel}, true
	case msg.GetControlChange(&channel, &cc, &value):
		return Event{Type: CC, Channel: channel, Note: cc, Velocity: value}, true
	}
	return Event{}, false
}
