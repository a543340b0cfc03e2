package midi

// Voice receives performance events. synth.Mono implements it.
type Voice interface {
	NoteOn(note, velocity uint8)
	NoteOff(note uint8)
	PitchBend(value int16)
	AllNotesOff()
}

// OmniChannel accepts events on every channel.
const OmniChannel = -1

// Dispatch applies ev to v if it arrived on channel (or channel is
// OmniChannel). It reports whether the event was used.
func Dispatch(v Voice, channel int, ev Event) bool {
	if channel != OmniChannel && int(ev.Channel) != channel {
		return false
	}

	switch ev.Type {
	case NoteOn:
		// Velocity 0 is a note-off in running-status streams.
		if ev.Velocity == 0 {
			v.NoteOff(ev.Note)
		} else {
			v.NoteOn(ev.Note, ev.Velocity)
		}
	case NoteOff:
		v.NoteOff(ev.Note)
	case PitchBend:
		v.PitchBend(ev.Bend)
	case CC:
		if ev.Note != CCAllNotesOff && ev.Note != CCAllSoundOff {
			return false
		}
		v.AllNotesOff()
	default:
		return false
	}
	return true
}

// Pump dispatches events from c until its channel closes, then silences the
// voice so a vanished keyboard cannot leave a note hanging.
func Pump(c Controller, v Voice, channel int) {
	for ev := range c.Events() {
		Dispatch(v, channel, ev)
	}
	v.AllNotesOff()
}
