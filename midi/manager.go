package midi

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-monosynth/debug"
)

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// Selection decides which input port the synth listens to.
type Selection struct {
	PortName  string   // exact port name; wins over patterns
	Preferred []string // case-insensitive substrings tried in order
	Excluded  []string // case-insensitive substrings never auto-connected
}

// Pick returns the port to connect to, if any. With no exact name and no
// preferred match, the only non-excluded port is used.
func (s Selection) Pick(ports []string) (string, bool) {
	if s.PortName != "" {
		for _, p := range ports {
			if p == s.PortName {
				return p, true
			}
		}
		return "", false
	}

	var candidates []string
	for _, p := range ports {
		if !containsAny(p, s.Excluded) {
			candidates = append(candidates, p)
		}
	}
	for _, pat := range s.Preferred {
		for _, p := range candidates {
			if containsAny(p, []string{pat}) {
				return p, true
			}
		}
	}
	if len(candidates) == 1 {
		return candidates[0], true
	}
	return "", false
}

// DeviceManager handles hot-plug detection of the keyboard feeding the synth.
// At most one controller is connected at a time. A driver must be registered
// by the program (see main.go).
type DeviceManager struct {
	selection Selection
	active    Controller
	ports     []string
	mu        sync.RWMutex
	events    chan DeviceEvent
	pollRate  time.Duration
}

// NewDeviceManager creates a new device manager
func NewDeviceManager(sel Selection) *DeviceManager {
	return &DeviceManager{
		selection: sel,
		events:    make(chan DeviceEvent, 16),
		pollRate:  time.Second,
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Active returns the connected controller (or nil)
func (dm *DeviceManager) Active() Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.active
}

// Ports returns the input port names seen in the last scan
func (dm *DeviceManager) Ports() []string {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return append([]string(nil), dm.ports...)
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeActive()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) scan() {
	inPorts, ok := listInPorts(3 * time.Second)
	if !ok {
		debug.Log("midi", "port scan timed out")
		return
	}

	names := make([]string, len(inPorts))
	for i, p := range inPorts {
		names[i] = p.String()
	}

	dm.mu.Lock()
	dm.ports = names
	active := dm.active
	dm.mu.Unlock()

	if active != nil {
		for _, n := range names {
			if n == active.ID() {
				return // still there
			}
		}
		debug.Log("midi", "device disappeared: %s", active.ID())
		dm.closeActive()
		dm.events <- DeviceEvent{Type: DeviceDisconnected, ID: active.ID()}
		return
	}

	name, ok := dm.selection.Pick(names)
	if !ok {
		return
	}
	var port drivers.In
	for _, p := range inPorts {
		if p.String() == name {
			port = p
			break
		}
	}

	kb, err := NewKeyboardController(name, port)
	if err != nil {
		debug.Log("midi", "connect %s failed: %v", name, err)
		return
	}
	debug.Log("midi", "connected %s", name)

	dm.mu.Lock()
	dm.active = kb
	dm.mu.Unlock()

	dm.events <- DeviceEvent{
		Type:       DeviceConnected,
		Controller: kb,
		ID:         name,
	}
}

// InPortNames lists the input ports the driver currently sees.
func InPortNames() ([]string, error) {
	inPorts, ok := listInPorts(3 * time.Second)
	if !ok {
		return nil, errors.New("timed out listing MIDI inputs")
	}
	names := make([]string, len(inPorts))
	for i, p := range inPorts {
		names[i] = p.String()
	}
	return names, nil
}

// listInPorts asks the driver for inputs, giving up after timeout (CoreMIDI
// can hang).
func listInPorts(timeout time.Duration) ([]drivers.In, bool) {
	ch := make(chan []drivers.In, 1)
	go func() {
		ch <- gomidi.GetInPorts()
	}()

	select {
	case ports := <-ch:
		return ports, true
	case <-time.After(timeout):
		return nil, false
	}
}

func (dm *DeviceManager) closeActive() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if dm.active != nil {
		dm.active.Close()
		dm.active = nil
	}
}

func containsAny(name string, patterns []string) bool {
	name = strings.ToLower(name)
	for _, p := range patterns {
		if p != "" && strings.Contains(name, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
