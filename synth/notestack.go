package synth

import "fmt"

// MaxNotes is how many held notes the stack tracks at once.
const MaxNotes = 16

// StealPolicy decides what happens to a note-on when the stack is full.
type StealPolicy int

const (
	// RejectNew drops the incoming note and leaves the stack untouched.
	RejectNew StealPolicy = iota
	// StealOldest evicts the earliest held note to make room.
	StealOldest
)

func (p StealPolicy) String() string {
	switch p {
	case RejectNew:
		return "reject-new"
	case StealOldest:
		return "steal-oldest"
	default:
		return fmt.Sprintf("StealPolicy(%d)", int(p))
	}
}

// ParseStealPolicy maps a config string to a policy. Empty means RejectNew.
func ParseStealPolicy(s string) (StealPolicy, error) {
	switch s {
	case "", "reject-new":
		return RejectNew, nil
	case "steal-oldest":
		return StealOldest, nil
	}
	return RejectNew, fmt.Errorf("unknown steal policy %q", s)
}

// NoteStack holds pressed notes in the order they arrived. The last entry is
// the one that sounds. Duplicates are allowed; Remove drops every copy.
type NoteStack struct {
	notes [MaxNotes]uint8
	count int
}

func (s *NoteStack) Len() int   { return s.count }
func (s *NoteStack) Full() bool { return s.count == MaxNotes }

// Push appends note at the tail. It reports false if the stack is full.
func (s *NoteStack) Push(note uint8) bool {
	if s.Full() {
		return false
	}
	s.notes[s.count] = note
	s.count++
	return true
}

// DropOldest removes the head entry, if any.
func (s *NoteStack) DropOldest() {
	if s.count == 0 {
		return
	}
	copy(s.notes[:], s.notes[1:s.count])
	s.count--
}

// Top returns the most recently pushed note.
func (s *NoteStack) Top() (uint8, bool) {
	if s.count == 0 {
		return 0, false
	}
	return s.notes[s.count-1], true
}

// Remove deletes every entry equal to note, keeping the rest in order.
// topRemoved reports whether the tail entry was one of them.
func (s *NoteStack) Remove(note uint8) (removed int, topRemoved bool) {
	for i := s.count - 1; i >= 0; i-- {
		if s.notes[i] != note {
			continue
		}
		if i == s.count-1 {
			topRemoved = true
		}
		copy(s.notes[i:], s.notes[i+1:s.count])
		s.count--
		removed++
	}
	return removed, topRemoved
}

func (s *NoteStack) Clear() { s.count = 0 }

// Notes returns a copy of the held notes, oldest first.
func (s *NoteStack) Notes() []uint8 {
	out := make([]uint8, s.count)
	copy(out, s.notes[:s.count])
	return out
}
