package main

import (
	"cmp"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-monosynth/config"
	"go-monosynth/dsp"
	"go-monosynth/engine"
	"go-monosynth/midi"
	"go-monosynth/params"
	"go-monosynth/synth"
)

// timedEvent is a decoded MIDI event scheduled at an absolute frame.
type timedEvent struct {
	frame int
	ev    midi.Event
}

func main() {
	input := flag.String("input", "", "Standard MIDI File to render")
	output := flag.String("output", "output.wav", "Output WAV file path")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz")
	blockSize := flag.Int("block-size", 256, "Frames per render block; events land on block boundaries")
	channels := flag.Int("channels", 1, "Output channel count")
	tail := flag.Float64("tail", 1.0, "Seconds rendered after the last event")
	configPath := flag.String("config", "", "Config file for parameters and voice settings (default ~/.config/go-monosynth/config.json)")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Error: -input is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	bank := params.NewDefaultBank()
	if err := bank.Load(cfg.Params); err != nil {
		fmt.Fprintf(os.Stderr, "Error restoring parameters: %v\n", err)
		os.Exit(1)
	}
	policy, err := synth.ParseStealPolicy(cfg.Synth.StealPolicy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	events, err := loadEvents(*input, *sampleRate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %q: %v\n", *input, err)
		os.Exit(1)
	}

	fmt.Printf("Rendering %s: %d events at %d Hz, %d channel(s), policy %s...\n",
		*input, len(events), *sampleRate, *channels, policy)

	eng := engine.New(*sampleRate, bank, dsp.SawtoothTable(cfg.Synth.TableSize, cfg.Synth.Harmonics),
		synth.WithPolicy(policy),
		synth.WithBendRange(cfg.Synth.BendRange),
	)
	tailFrames := int(float64(*sampleRate) * (*tail))
	samples := render(eng, events, cfg.MIDI.Channel(), *channels, *blockSize, tailFrames)
	totalFrames := len(samples) / *channels

	// Write to WAV file
	file, err := os.Create(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	// Create encoder with 16-bit PCM (audioFormat = 1)
	encoder := wav.NewEncoder(file, *sampleRate, 16, *channels, 1)
	defer encoder.Close()

	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  *sampleRate,
			NumChannels: *channels,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}

	if err := encoder.Write(buf); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing WAV file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully wrote %s (%d frames, %.2fs)\n", *output, totalFrames, float64(totalFrames)/float64(*sampleRate))
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

// loadEvents reads every track of an SMF and returns the events the synth
// understands, ordered by time.
func loadEvents(path string, sampleRate int) ([]timedEvent, error) {
	var events []timedEvent
	err := smf.ReadTracks(path).Do(func(te smf.TrackEvent) {
		ev, ok := midi.Decode(gomidi.Message(te.Event.Message))
		if !ok {
			return
		}
		events = append(events, timedEvent{
			frame: microsToFrame(te.AbsMicroSeconds, sampleRate),
			ev:    ev,
		})
	}).Error()
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(events, func(a, b timedEvent) int {
		return cmp.Compare(a.frame, b.frame)
	})
	return events, nil
}

func microsToFrame(us int64, sampleRate int) int {
	return int(us * int64(sampleRate) / 1_000_000)
}

// render plays events through eng block by block. Events due inside a block
// are applied at its start. Rendering continues tailFrames past the last
// event.
func render(eng *engine.Engine, events []timedEvent, midiChannel, channels, blockSize, tailFrames int) []float32 {
	if blockSize < 1 {
		blockSize = 1
	}
	totalFrames := tailFrames
	if len(events) > 0 {
		totalFrames += events[len(events)-1].frame
	}

	samples := make([]float32, totalFrames*channels)
	next := 0
	for pos := 0; pos < totalFrames; pos += blockSize {
		frames := min(blockSize, totalFrames-pos)
		for next < len(events) && events[next].frame < pos+frames {
			midi.Dispatch(eng.Mono(), midiChannel, events[next].ev)
			next++
		}
		eng.Render(samples[pos*channels:(pos+frames)*channels], frames, channels)
	}
	return samples
}
