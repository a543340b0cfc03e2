package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-monosynth/config"
	"go-monosynth/debug"
	"go-monosynth/dsp"
	"go-monosynth/engine"
	"go-monosynth/engine/output"
	"go-monosynth/midi"
	"go-monosynth/params"
	"go-monosynth/synth"
	"go-monosynth/theme"
	"go-monosynth/tui"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.config/go-monosynth/config.json)")
	port := flag.String("port", "", "MIDI input port name (overrides config)")
	debugLog := flag.Bool("debug", false, "write debug log to ~/.config/go-monosynth/debug.log")
	headless := flag.Bool("headless", false, "run without the terminal UI")
	flag.Parse()

	if err := run(*configPath, *port, *debugLog, *headless); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, port string, debugLog, headless bool) error {
	if configPath == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return fmt.Errorf("locate config: %w", err)
		}
		configPath = p
	}
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return err
	}
	if port != "" {
		cfg.MIDI.PortName = port
	}

	if debugLog {
		if err := debug.Enable(); err != nil {
			return fmt.Errorf("enable debug log: %w", err)
		}
		defer debug.Disable()
	}

	palette, err := theme.LoadOrDefault(cfg.UI.PalettePath)
	if err != nil {
		return fmt.Errorf("load palette: %w", err)
	}
	th := theme.New(palette)

	bank := params.NewDefaultBank()
	if err := bank.Load(cfg.Params); err != nil {
		return fmt.Errorf("restore parameters: %w", err)
	}

	policy, err := synth.ParseStealPolicy(cfg.Synth.StealPolicy)
	if err != nil {
		return err
	}
	table := dsp.SawtoothTable(cfg.Synth.TableSize, cfg.Synth.Harmonics)
	eng := engine.New(cfg.Audio.SampleRate, bank, table,
		synth.WithPolicy(policy),
		synth.WithBendRange(cfg.Synth.BendRange),
	)

	// An explicit port must exist at startup; auto-selection may wait for one
	if port != "" {
		names, err := midi.InPortNames()
		if err != nil {
			return err
		}
		if !slices.Contains(names, port) {
			return fmt.Errorf("MIDI input %q not found (available: %v)", port, names)
		}
	}

	player, err := output.New(cfg.Audio.SampleRate, cfg.Audio.Channels, cfg.Audio.BufferFrames)
	if err != nil {
		return err
	}
	defer player.Close()
	player.Attach(eng)
	player.Start()
	debug.Log("main", "audio started: %d Hz, %d ch, policy %s", cfg.Audio.SampleRate, cfg.Audio.Channels, policy)

	deviceMgr := midi.NewDeviceManager(midi.Selection{
		PortName:  cfg.MIDI.PortName,
		Preferred: cfg.MIDI.Preferred,
		Excluded:  cfg.MIDI.Excluded,
	})

	// Start device manager in background
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go deviceMgr.Run(ctx)

	if headless {
		return runHeadless(ctx, deviceMgr, eng.Mono(), cfg.MIDI.Channel())
	}

	m := tui.NewModel(eng, deviceMgr, cfg, configPath, th)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// runHeadless plays whatever keyboard the device manager connects until
// interrupted.
func runHeadless(ctx context.Context, deviceMgr *midi.DeviceManager, mono *synth.Mono, channel int) error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	fmt.Println("go-monosynth")
	fmt.Println("Connect a MIDI keyboard any time - it will be detected automatically")
	fmt.Println("Ctrl+C to exit")

	for {
		select {
		case <-sig:
			mono.AllNotesOff()
			return nil
		case <-ctx.Done():
			return nil
		case ev, ok := <-deviceMgr.Events():
			if !ok {
				return nil
			}
			switch ev.Type {
			case midi.DeviceConnected:
				fmt.Printf("connected: %s\n", ev.ID)
				go midi.Pump(ev.Controller, mono, channel)
			case midi.DeviceDisconnected:
				fmt.Printf("disconnected: %s\n", ev.ID)
			}
		}
	}
}
