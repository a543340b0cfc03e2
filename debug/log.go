// Package debug is an opt-in file logger. The TUI owns the terminal, so
// nothing is ever printed to stdout.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	mu       sync.Mutex
	out      io.Writer // nil while disabled
	closer   io.Closer
	counters = make(map[string]int)
)

// Enable starts debug logging to ~/.config/go-monosynth/debug.log
func Enable() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("locate home: %w", err)
	}
	return EnableAt(filepath.Join(homeDir, ".config", "go-monosynth", "debug.log"))
}

// EnableAt starts debug logging to path, truncating it and creating its
// directory. Nothing may log from the audio thread.
func EnableAt(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	SetOutput(f)
	return nil
}

// SetOutput sends log lines to w, closing the previous sink. A nil w
// disables logging.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	if closer != nil {
		closer.Close()
	}
	out, closer = w, nil
	if c, ok := w.(io.Closer); ok {
		closer = c
	}
	clear(counters)

	if out != nil {
		writeLine("debug", "=== Debug logging started ===")
	}
}

// Disable stops debug logging
func Disable() {
	SetOutput(nil)
}

// Enabled reports whether a sink is set.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return out != nil
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if out == nil {
		return
	}
	writeLine(category, fmt.Sprintf(format, args...))
}

// LogEvery logs only every n-th call with the same category and format
// (use for high-frequency events).
func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if out == nil {
		return
	}
	key := category + "\x00" + format
	counters[key]++
	if count := counters[key]; n <= 1 || count%n == 0 {
		writeLine(category, fmt.Sprintf(format, args...)+fmt.Sprintf(" (every %d, count=%d)", n, count))
	}
}

// writeLine must be called with mu held.
func writeLine(category, msg string) {
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(out, "[%s] %-10s %s\n", ts, category, msg)
	if f, ok := out.(*os.File); ok {
		f.Sync() // flush immediately so we see logs even on crash
	}
}
