package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// MIDIConfig selects the keyboard feeding the synth
type MIDIConfig struct {
	PortName     string   `json:"portName,omitempty"`  // exact port; empty = auto
	Preferred    []string `json:"preferred,omitempty"` // substrings tried first
	Excluded     []string `json:"excluded,omitempty"`  // substrings never auto-connected
	InputChannel int      `json:"inputChannel"`        // 1-16, 0 = omni
}

// AudioConfig describes the output device
type AudioConfig struct {
	SampleRate   int `json:"sampleRate"`
	Channels     int `json:"channels"`
	BufferFrames int `json:"bufferFrames"`
}

// SynthConfig holds voice settings fixed at startup
type SynthConfig struct {
	StealPolicy string  `json:"stealPolicy"` // "reject-new" or "steal-oldest"
	BendRange   float64 `json:"bendRange"`   // semitones
	TableSize   int     `json:"tableSize"`
	Harmonics   int     `json:"harmonics"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	PalettePath  string `json:"palettePath,omitempty"` // GIMP .gpl file; empty = built-in
	LastSelected int    `json:"lastSelected,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	MIDI   MIDIConfig         `json:"midi"`
	Audio  AudioConfig        `json:"audio"`
	Synth  SynthConfig        `json:"synth"`
	Params map[string]float64 `json:"params,omitempty"` // saved slider values by key
	UI     UIConfig           `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		MIDI: MIDIConfig{
			Preferred: []string{"Launchkey", "KeyStep", "Keystation"},
			Excluded:  []string{"Midi Through", "Through Port", "Dummy"},
		},
		Audio: AudioConfig{
			SampleRate:   48000,
			Channels:     2,
			BufferFrames: 256,
		},
		Synth: SynthConfig{
			StealPolicy: "reject-new",
			BendRange:   2,
			TableSize:   512,
			Harmonics:   48,
		},
	}
}

// Validate rejects settings the synth cannot run with
func (c *Config) Validate() error {
	var errs []error
	if c.MIDI.InputChannel < 0 || c.MIDI.InputChannel > 16 {
		errs = append(errs, fmt.Errorf("midi.inputChannel %d out of range 0-16", c.MIDI.InputChannel))
	}
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("audio.sampleRate %d out of range", c.Audio.SampleRate))
	}
	if c.Audio.Channels < 1 || c.Audio.Channels > 8 {
		errs = append(errs, fmt.Errorf("audio.channels %d out of range 1-8", c.Audio.Channels))
	}
	if c.Audio.BufferFrames < 0 {
		errs = append(errs, fmt.Errorf("audio.bufferFrames %d is negative", c.Audio.BufferFrames))
	}
	switch c.Synth.StealPolicy {
	case "", "reject-new", "steal-oldest":
	default:
		errs = append(errs, fmt.Errorf("synth.stealPolicy %q unknown", c.Synth.StealPolicy))
	}
	if c.Synth.BendRange < 0 || c.Synth.BendRange > 24 {
		errs = append(errs, fmt.Errorf("synth.bendRange %v out of range 0-24", c.Synth.BendRange))
	}
	if c.Synth.TableSize < 16 {
		errs = append(errs, fmt.Errorf("synth.tableSize %d too small", c.Synth.TableSize))
	}
	if c.Synth.Harmonics < 1 || c.Synth.Harmonics > c.Synth.TableSize/2 {
		errs = append(errs, fmt.Errorf("synth.harmonics %d out of range 1-%d", c.Synth.Harmonics, c.Synth.TableSize/2))
	}
	return errors.Join(errs...)
}

// Channel returns the zero-based MIDI channel to listen on, or -1 for omni.
func (m MIDIConfig) Channel() int {
	if m.InputChannel == 0 {
		return -1
	}
	return m.InputChannel - 1
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-monosynth"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from the default path, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. Fields missing from the file keep their
// defaults; a missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
