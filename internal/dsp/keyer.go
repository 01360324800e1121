// internal/dsp/keyer.go
package dsp

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrInvalidThreshold indicates threshold must be between 0 and 1
	ErrInvalidThreshold = errors.New("threshold must be between 0.0 and 1.0")
	// ErrInvalidHysteresis indicates hysteresis must be non-negative
	ErrInvalidHysteresis = errors.New("hysteresis must be non-negative")
	// ErrInvalidOverlap indicates overlap percentage must be 0-99
	ErrInvalidOverlap = errors.New("overlap percentage must be between 0 and 99")
	// ErrInvalidAGCDecay indicates AGC decay must be between 0 and 1
	ErrInvalidAGCDecay = errors.New("agc decay must be between 0.0 and 1.0")
	// ErrInvalidAGCAttack indicates AGC attack must be between 0 and 1
	ErrInvalidAGCAttack = errors.New("agc attack must be between 0.0 and 1.0")
	// ErrInvalidAGCWarmup indicates AGC warmup blocks must be non-negative
	ErrInvalidAGCWarmup = errors.New("agc warmup blocks must be non-negative")
	// ErrKeyRequired indicates the keyer has nowhere to send events
	ErrKeyRequired = errors.New("key is required")
)

// Key receives the debounced tone edges. The trainer satisfies it.
type Key interface {
	OnPress(now time.Time)
	OnRelease(now time.Time)
}

// KeyerConfig holds the detection settings (config keys in parentheses).
type KeyerConfig struct {
	ToneFrequency   float64 // Hz (tone_frequency)
	SampleRate      float64 // Hz (sample_rate)
	BlockSize       int     // samples per measurement (block_size)
	Threshold       float64 // 0.0-1.0 (threshold)
	Hysteresis      int     // consecutive blocks to confirm a change (hysteresis)
	OverlapPct      int     // 0-99 (overlap_pct)
	AGCEnabled      bool    // (agc_enabled)
	AGCDecay        float64 // peak decay per block (agc_decay)
	AGCAttack       float64 // (agc_attack)
	AGCWarmupBlocks int     // blocks used to calibrate before detecting (agc_warmup_blocks)
}

// DefaultKeyerConfig matches the config file defaults.
func DefaultKeyerConfig() KeyerConfig {
	return KeyerConfig{
		ToneFrequency:   600,
		SampleRate:      48000,
		BlockSize:       512,
		Threshold:       0.4,
		Hysteresis:      2,
		OverlapPct:      50,
		AGCEnabled:      true,
		AGCDecay:        0.9995,
		AGCAttack:       0.1,
		AGCWarmupBlocks: 0,
	}
}

// Validate checks the detection settings.
func (c KeyerConfig) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return ErrInvalidThreshold
	}
	if c.Hysteresis < 0 {
		return ErrInvalidHysteresis
	}
	if c.OverlapPct < 0 || c.OverlapPct >= 100 {
		return ErrInvalidOverlap
	}
	if c.AGCDecay < 0 || c.AGCDecay > 1 {
		return ErrInvalidAGCDecay
	}
	if c.AGCAttack < 0 || c.AGCAttack > 1 {
		return ErrInvalidAGCAttack
	}
	if c.AGCWarmupBlocks < 0 {
		return ErrInvalidAGCWarmup
	}
	return nil
}

// Keyer is an input channel driven by audio. It runs Goertzel blocks over
// the sample stream and reports each confirmed tone edge to a Key.
//
// Edge times come from the sample position, anchored to the clock on the
// first Process call, so durations are exact regardless of how the audio
// backend batches callbacks.
type Keyer struct {
	filter *Goertzel
	key    Key
	cfg    KeyerConfig

	mu       sync.Mutex
	now      func() time.Time
	agc      agc
	deb      debouncer
	buf      []float32
	hop      int
	epoch    time.Time
	blockEnd int64 // stream position in samples of the next block's end
	lastEdge time.Time
}

// NewKeyer validates cfg and creates a keyer feeding key.
func NewKeyer(cfg KeyerConfig, key Key) (*Keyer, error) {
	if key == nil {
		return nil, ErrKeyRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	filter, err := NewGoertzel(cfg.ToneFrequency, cfg.SampleRate, cfg.BlockSize)
	if err != nil {
		return nil, err
	}

	hop := cfg.BlockSize - cfg.BlockSize*cfg.OverlapPct/100
	return &Keyer{
		filter:   filter,
		key:      key,
		cfg:      cfg,
		now:      time.Now,
		agc:      newAGC(cfg.AGCAttack, cfg.AGCDecay, cfg.AGCWarmupBlocks),
		deb:      debouncer{need: cfg.Hysteresis},
		buf:      make([]float32, 0, 2*cfg.BlockSize),
		hop:      hop,
		blockEnd: int64(cfg.BlockSize),
	}, nil
}

// SetClock replaces the clock that anchors the stream. Call before the
// first Process.
func (k *Keyer) SetClock(now func() time.Time) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.now = now
}

// Process consumes mono samples. It is the capture callback and must stay
// fast.
func (k *Keyer) Process(samples []float32) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.epoch.IsZero() {
		k.epoch = k.now()
	}

	k.buf = append(k.buf, samples...)
	size := k.filter.BlockSize()
	for len(k.buf) >= size {
		k.block(k.buf[:size])

		n := copy(k.buf, k.buf[k.hop:])
		k.buf = k.buf[:n]
		k.blockEnd += int64(k.hop)
	}
}

func (k *Keyer) block(samples []float32) {
	mag := k.filter.magnitude(samples)
	if k.cfg.AGCEnabled {
		if k.agc.calibrating(mag) {
			return
		}
		mag = k.agc.apply(mag)
	}

	at, flipped := k.deb.step(mag > k.cfg.Threshold, k.streamTime(k.blockEnd))
	if !flipped {
		return
	}
	k.lastEdge = at
	if k.deb.state {
		k.key.OnPress(at)
	} else {
		k.key.OnRelease(at)
	}
}

func (k *Keyer) streamTime(pos int64) time.Time {
	return k.epoch.Add(time.Duration(float64(pos) / k.cfg.SampleRate * float64(time.Second)))
}

// Down reports whether the tone is currently confirmed on.
func (k *Keyer) Down() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.deb.state
}

// Close releases a key that is still down so the trainer does not stay
// in a press when capture stops.
func (k *Keyer) Close() {
	k.mu.Lock()
	defer k.mu.Unlock()

	if !k.deb.state {
		return
	}
	k.deb = debouncer{need: k.cfg.Hysteresis}
	at := k.streamTime(k.blockEnd - int64(k.hop))
	if at.Before(k.lastEdge) {
		at = k.lastEdge
	}
	k.key.OnRelease(at)
}
