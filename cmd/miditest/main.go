package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	synthmidi "go-monosynth/midi"
	"go-monosynth/synth"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "monitor":
		monitor(strings.Join(os.Args[2:], " "))
	case "poll":
		pollDevices()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list            - List all MIDI input ports")
	fmt.Println("  monitor [port]  - Print decoded messages (first port if none given)")
	fmt.Println("  poll            - Poll for device changes")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	ch := make(chan []drivers.In, 1)
	go func() {
		ch <- midi.GetInPorts()
	}()

	select {
	case ins := <-ch:
		if len(ins) == 0 {
			fmt.Println("  (none)")
		}
		for i, p := range ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
	}
}

func monitor(name string) {
	if name == "" {
		ins := midi.GetInPorts()
		if len(ins) == 0 {
			fmt.Println("No MIDI inputs found")
			os.Exit(1)
		}
		name = ins[0].String()
	}

	kb, err := synthmidi.OpenKeyboard(name)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer kb.Close()

	fmt.Printf("Monitoring %s. Ctrl+C to exit.\n", kb.ID())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	for {
		select {
		case <-sig:
			return
		case ev, ok := <-kb.Events():
			if !ok {
				return
			}
			line := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05.000"), ev)
			if ev.Type == synthmidi.NoteOn || ev.Type == synthmidi.NoteOff {
				line += fmt.Sprintf("  %s %.2f Hz", synth.NoteName(ev.Note), synth.NoteToFrequency(ev.Note))
			}
			fmt.Println(line)
		}
	}
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect a keyboard to test. Ctrl+C to exit.")

	last := ""

	for {
		names, err := synthmidi.InPortNames()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			time.Sleep(2 * time.Second)
			continue
		}

		current := strings.Join(names, ",")
		if current != last {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", names)
			last = current
		}

		time.Sleep(2 * time.Second)
	}
}
