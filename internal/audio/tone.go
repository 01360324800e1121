// internal/audio/tone.go
// Package audio produces the keying sidetone and captures input for the
// audio keyer.
package audio

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// Tone backends
const (
	BackendMalgo = "malgo"
	BackendBeep  = "beep"
	BackendNone  = "none"
)

// ErrUnknownBackend indicates the configured backend does not exist
var ErrUnknownBackend = errors.New("unknown audio backend")

// ToneConfig holds sidetone settings.
type ToneConfig struct {
	Backend     string
	Frequency   float64 // Hz
	Volume      float64 // 0.0-1.0
	SampleRate  uint32
	DeviceIndex int // -1 for default device (malgo only)
}

// DefaultToneConfig returns a 600 Hz sine at gain 0.1.
func DefaultToneConfig() ToneConfig {
	return ToneConfig{
		Backend:     BackendMalgo,
		Frequency:   600,
		Volume:      0.1,
		SampleRate:  48000,
		DeviceIndex: -1,
	}
}

// rampTime is the attack and release of the keying envelope.
const rampTime = 5 * time.Millisecond

// Player is a sidetone that owns audio resources.
type Player interface {
	Start()
	Stop()
	Close() error
}

// OpenTone initializes the configured backend.
func OpenTone(cfg ToneConfig) (Player, error) {
	switch cfg.Backend {
	case BackendMalgo, "":
		s := NewSidetone(cfg)
		if err := s.Init(); err != nil {
			return nil, err
		}
		return s, nil
	case BackendBeep:
		b := NewBeepTone(cfg)
		if err := b.Init(); err != nil {
			return nil, err
		}
		return b, nil
	case BackendNone:
		return Silent{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// Silent is a Player that makes no sound.
type Silent struct{}

func (Silent) Start()       {}
func (Silent) Stop()        {}
func (Silent) Close() error { return nil }

// gate is the key state shared between the caller and the audio thread.
// A single oscillator behind it means at most one tone ever sounds.
type gate struct {
	on atomic.Bool
}

// Start opens the gate. Calling it while sounding keeps the same tone.
func (g *gate) Start() { g.on.Store(true) }

// Stop closes the gate. It is a no-op when already silent.
func (g *gate) Stop() { g.on.Store(false) }

// Sidetone plays the tone on a miniaudio playback device.
type Sidetone struct {
	gate
	config ToneConfig
	osc    *Oscillator

	mu     sync.Mutex
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	buf    []float32
}

// NewSidetone creates an uninitialized malgo sidetone.
func NewSidetone(cfg ToneConfig) *Sidetone {
	return &Sidetone{
		config: cfg,
		osc:    NewOscillator(cfg.Frequency, cfg.SampleRate, cfg.Volume, rampTime),
	}
}

// Init opens the playback device and starts streaming silence.
func (s *Sidetone) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("init audio context: %w", err)
	}
	s.ctx = ctx

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.SampleRate = s.config.SampleRate
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = 1

	if s.config.DeviceIndex >= 0 {
		id, err := deviceID(ctx, malgo.Playback, s.config.DeviceIndex)
		if err != nil {
			_ = freeContext(&s.ctx)
			return err
		}
		deviceConfig.Playback.DeviceID = id.Pointer()
	}

	onSendFrames := func(outputSamples, _ []byte, frameCount uint32) {
		n := int(frameCount)
		if cap(s.buf) < n {
			s.buf = make([]float32, n)
		}
		buf := s.buf[:n]
		s.osc.Fill(buf, s.on.Load())
		encodeFloat32(outputSamples, buf)
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, malgo.DeviceCallbacks{Data: onSendFrames})
	if err != nil {
		_ = freeContext(&s.ctx)
		return fmt.Errorf("init playback device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		_ = freeContext(&s.ctx)
		return fmt.Errorf("start playback device: %w", err)
	}
	s.device = device
	return nil
}

// Close stops playback and releases the device.
func (s *Sidetone) Close() error {
	s.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.device != nil {
		_ = s.device.Stop()
		s.device.Uninit()
		s.device = nil
	}
	return freeContext(&s.ctx)
}

// BeepTone plays the tone through the gopxl/beep speaker.
type BeepTone struct {
	gate
	config ToneConfig
	osc    *Oscillator
}

// NewBeepTone creates an uninitialized beep sidetone.
func NewBeepTone(cfg ToneConfig) *BeepTone {
	return &BeepTone{
		config: cfg,
		osc:    NewOscillator(cfg.Frequency, cfg.SampleRate, cfg.Volume, rampTime),
	}
}

// Init starts the speaker with an endless gated streamer.
func (b *BeepTone) Init() error {
	sr := beep.SampleRate(b.config.SampleRate)
	if err := speaker.Init(sr, sr.N(time.Second/20)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(beep.StreamerFunc(b.stream))
	return nil
}

func (b *BeepTone) stream(samples [][2]float64) (int, bool) {
	on := b.on.Load()
	for i := range samples {
		v := b.osc.Next(on)
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

// Close silences and shuts the speaker down.
func (b *BeepTone) Close() error {
	b.Stop()
	speaker.Clear()
	speaker.Close()
	return nil
}
