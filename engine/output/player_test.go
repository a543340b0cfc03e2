package output

import (
	"encoding/binary"
	"math"
	"testing"

	"go-monosynth/dsp"
	"go-monosynth/engine"
	"go-monosynth/params"
)

func TestReadWithoutEngineIsSilence(t *testing.T) {
	p := &Player{channels: 2}
	buf := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}
	n, err := p.Read(buf)
	if err != nil || n != 8 {
		t.Fatalf("Read = %d, %v, want 8 bytes", n, err)
	}
	for i, b := range buf[:n] {
		if b != 0 {
			t.Fatalf("byte %d = %d, want 0", i, b)
		}
	}
}

func TestReadEncodesFloat32Frames(t *testing.T) {
	e := engine.New(48000, params.NewDefaultBank(), dsp.SawtoothTable(dsp.DefaultTableSize, dsp.DefaultHarmonics))
	e.Mono().NoteOn(69, 127)

	p := &Player{channels: 2}
	p.engine.Store(e)

	// 100 stereo frames plus a partial frame.
	buf := make([]byte, 100*8+3)
	for i := 800; i < len(buf); i++ {
		buf[i] = 0xAA
	}
	n, err := p.Read(buf)
	if err != nil || n != 800 {
		t.Fatalf("Read = %d, %v, want 800 bytes", n, err)
	}

	var nonZero bool
	for f := 0; f < 100; f++ {
		l := math.Float32frombits(binary.LittleEndian.Uint32(buf[f*8:]))
		r := math.Float32frombits(binary.LittleEndian.Uint32(buf[f*8+4:]))
		if l != r {
			t.Fatalf("frame %d: left %v right %v", f, l, r)
		}
		if l != 0 {
			nonZero = true
		}
	}
	if !nonZero {
		t.Error("no audio rendered")
	}
	for _, b := range buf[800:] {
		if b != 0xAA {
			t.Fatal("partial frame was written")
		}
	}
}

func TestReadKeepsChannelAlignment(t *testing.T) {
	e := engine.New(48000, params.NewDefaultBank(), dsp.SawtoothTable(dsp.DefaultTableSize, dsp.DefaultHarmonics))
	e.Mono().NoteOn(57, 127)

	p := &Player{channels: 2}
	p.engine.Store(e)

	// Reads of odd sizes, the way an io.Reader consumer may issue them.
	var stream []byte
	for _, size := range []int{13, 64, 7, 1, 250, 33} {
		buf := make([]byte, size)
		n, err := p.Read(buf)
		if err != nil {
			t.Fatal(err)
		}
		if n%8 != 0 {
			t.Fatalf("Read(%d bytes) returned %d, not a whole frame", size, n)
		}
		stream = append(stream, buf[:n]...)
	}

	for f := 0; f+8 <= len(stream); f += 8 {
		l := binary.LittleEndian.Uint32(stream[f:])
		r := binary.LittleEndian.Uint32(stream[f+4:])
		if l != r {
			t.Fatalf("frame at byte %d: channels differ", f)
		}
	}
}
