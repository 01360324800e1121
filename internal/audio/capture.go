// internal/audio/capture.go
package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

var (
	ErrNotInitialized = errors.New("audio capture not initialized")
	ErrAlreadyRunning = errors.New("audio capture already running")
	ErrNotRunning     = errors.New("audio capture not running")
)

// CaptureConfig holds input device settings for the audio keyer.
type CaptureConfig struct {
	DeviceIndex int    // -1 for default device
	SampleRate  uint32 // e.g., 48000
	BufferSize  uint32 // frames per callback
}

// DefaultCaptureConfig returns mono 48 kHz on the default device.
func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{
		DeviceIndex: -1,
		SampleRate:  48000,
		BufferSize:  512,
	}
}

// SampleCallback receives mono float32 samples on the audio thread.
// Must be non-blocking and fast.
type SampleCallback func(samples []float32)

// Capture reads mono samples from an input device.
type Capture struct {
	config CaptureConfig

	mu     sync.Mutex
	ctx    *malgo.AllocatedContext
	device *malgo.Device

	running     atomic.Bool
	callbackPtr atomic.Pointer[SampleCallback]
}

// NewCapture creates an uninitialized capture.
func NewCapture(cfg CaptureConfig) *Capture {
	return &Capture{config: cfg}
}

// SetCallback sets the sample consumer. Set before Start.
func (c *Capture) SetCallback(cb SampleCallback) {
	if cb == nil {
		c.callbackPtr.Store(nil)
		return
	}
	c.callbackPtr.Store(&cb)
}

// Init opens the audio backend.
func (c *Capture) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("init audio context: %w", err)
	}
	c.ctx = ctx
	return nil
}

// Start begins capture. Capture stops when ctx is cancelled.
func (c *Capture) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx == nil {
		return ErrNotInitialized
	}
	if c.running.Load() {
		return ErrAlreadyRunning
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.SampleRate = c.config.SampleRate
	deviceConfig.PeriodSizeInFrames = c.config.BufferSize
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = 1

	if c.config.DeviceIndex >= 0 {
		id, err := deviceID(c.ctx, malgo.Capture, c.config.DeviceIndex)
		if err != nil {
			return err
		}
		deviceConfig.Capture.DeviceID = id.Pointer()
	}

	onRecvFrames := func(_, inputSamples []byte, _ uint32) {
		if len(inputSamples) == 0 {
			return
		}
		if cb := c.callbackPtr.Load(); cb != nil {
			(*cb)(decodeFloat32(inputSamples))
		}
	}

	device, err := malgo.InitDevice(c.ctx.Context, deviceConfig, malgo.DeviceCallbacks{Data: onRecvFrames})
	if err != nil {
		return fmt.Errorf("init capture device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("start capture device: %w", err)
	}

	c.device = device
	c.running.Store(true)

	go func() {
		<-ctx.Done()
		_ = c.Stop()
	}()
	return nil
}

// Stop halts capture.
func (c *Capture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running.Load() {
		return ErrNotRunning
	}
	if c.device != nil {
		_ = c.device.Stop()
		c.device.Uninit()
		c.device = nil
	}
	c.running.Store(false)
	return nil
}

// Close stops capture and releases the backend.
func (c *Capture) Close() error {
	_ = c.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	return freeContext(&c.ctx)
}

// IsRunning returns true if capture is active.
func (c *Capture) IsRunning() bool {
	return c.running.Load()
}
