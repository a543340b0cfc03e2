// Package output plays an engine through the system audio device with oto.
package output

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"

	"go-monosynth/engine"
)

const bytesPerSample = 4 // float32LE

// Player pulls blocks from an Engine whenever oto asks for more audio.
type Player struct {
	ctx      *oto.Context
	player   *oto.Player
	channels int

	engine    atomic.Pointer[engine.Engine] // lock-free for Read
	sampleBuf []float32                     // audio thread only

	started bool
	mutex   sync.Mutex // setup and control only
}

// New opens the audio device. bufferFrames sets the device buffer; zero
// leaves it to oto.
func New(sampleRate, channels, bufferFrames int) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
	}
	if bufferFrames > 0 {
		op.BufferSize = time.Duration(bufferFrames) * time.Second / time.Duration(sampleRate)
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	return &Player{
		ctx:       ctx,
		channels:  channels,
		sampleBuf: make([]float32, 4096),
	}, nil
}

// Attach sets the engine to render from and creates the oto player.
func (p *Player) Attach(e *engine.Engine) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.engine.Store(e)
	if p.player == nil {
		p.player = p.ctx.NewPlayer(p)
	}
}

// Read implements io.Reader for oto. Only whole frames are written, so a
// trailing partial frame is left for the next call and channels stay aligned.
func (p *Player) Read(buf []byte) (int, error) {
	frameBytes := bytesPerSample * p.channels
	frames := len(buf) / frameBytes
	n := frames * p.channels
	size := n * bytesPerSample

	e := p.engine.Load()
	if e == nil {
		clear(buf[:size])
		return size, nil
	}
	if frames == 0 {
		return 0, nil
	}

	if len(p.sampleBuf) < n {
		p.sampleBuf = make([]float32, n)
	}
	samples := p.sampleBuf[:n]
	e.Render(samples, frames, p.channels)

	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[i*bytesPerSample:], math.Float32bits(s))
	}
	return size, nil
}

// Start begins playback.
func (p *Player) Start() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.started && p.player != nil {
		p.player.Play()
		p.started = true
	}
}

// Stop pauses playback.
func (p *Player) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.started && p.player != nil {
		p.player.Pause()
		p.started = false
	}
}

// Close stops playback and releases the player.
func (p *Player) Close() error {
	p.Stop()
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.player == nil {
		return nil
	}
	err := p.player.Close()
	p.player = nil
	return err
}

func (p *Player) IsStarted() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.started
}
