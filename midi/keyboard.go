package midi

import (
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-monosynth/debug"
)

// eventBuffer is deep enough that a burst of chords never drops a note-off.
const eventBuffer = 256

// KeyboardController handles a standard MIDI keyboard
type KeyboardController struct {
	id       string
	inPort   drivers.In
	stopFunc func()

	mu     sync.Mutex // guards events against send after close
	closed bool
	events chan Event
}

// NewKeyboardController creates a keyboard controller (input only)
func NewKeyboardController(id string, inPort drivers.In) (*KeyboardController, error) {
	kb := &KeyboardController{
		id:     id,
		inPort: inPort,
		events: make(chan Event, eventBuffer),
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, kb.handle)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		kb.stopFunc = stop
	}

	return kb, nil
}

// OpenKeyboard opens the input port with the given name.
func OpenKeyboard(name string) (*KeyboardController, error) {
	in, err := gomidi.FindInPort(name)
	if err != nil {
		return nil, fmt.Errorf("find input %q: %w", name, err)
	}
	return NewKeyboardController(in.String(), in)
}

func (kb *KeyboardController) handle(msg gomidi.Message, timestampms int32) {
	ev, ok := Decode(msg)
	if !ok {
		return
	}
	kb.mu.Lock()
	defer kb.mu.Unlock()
	if kb.closed {
		return
	}
	select {
	case kb.events <- ev:
	default:
		debug.LogEvery(10, "midi", "event buffer full, dropped %s", ev)
	}
}

func (kb *KeyboardController) ID() string {
	return kb.id
}

func (kb *KeyboardController) Events() <-chan Event {
	return kb.events
}

func (kb *KeyboardController) Close() error {
	if kb.stopFunc != nil {
		kb.stopFunc()
	}
	var err error
	if kb.inPort != nil {
		err = kb.inPort.Close()
	}
	kb.mu.Lock()
	if !kb.closed {
		kb.closed = true
		close(kb.events)
	}
	kb.mu.Unlock()
	return err
}
