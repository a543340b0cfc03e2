package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogWritesCategoryLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "debug.log")
	if err := EnableAt(path); err != nil {
		t.Fatal(err)
	}
	defer Disable()

	Log("midi", "connected %s", "KeyStep")
	for i := 0; i < 6; i++ {
		LogEvery(3, "engine", "xrun")
	}
	Disable()
	Log("midi", "after disable")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "midi       connected KeyStep") {
		t.Errorf("missing category line:\n%s", out)
	}
	if n := strings.Count(out, "xrun (every 3"); n != 2 {
		t.Errorf("LogEvery wrote %d lines, want 2:\n%s", n, out)
	}
	if strings.Contains(out, "after disable") {
		t.Error("logged after Disable")
	}
}

func TestSetOutputResetsCounters(t *testing.T) {
	var buf strings.Builder
	SetOutput(&buf)
	defer Disable()

	if !Enabled() {
		t.Fatal("Enabled() = false after SetOutput")
	}
	LogEvery(2, "midi", "dropped")
	SetOutput(&buf)
	LogEvery(2, "midi", "dropped")
	if strings.Contains(buf.String(), "dropped") {
		t.Errorf("counter survived SetOutput:\n%s", buf.String())
	}
	LogEvery(2, "midi", "dropped")
	if n := strings.Count(buf.String(), "dropped (every 2, count=2)"); n != 1 {
		t.Errorf("got %d lines, want 1:\n%s", n, buf.String())
	}

	Disable()
	if Enabled() {
		t.Fatal("Enabled() = true after Disable")
	}
}
