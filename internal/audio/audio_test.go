package audio

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func TestDefaultToneConfig(t *testing.T) {
	cfg := DefaultToneConfig()

	if cfg.Backend != BackendMalgo {
		t.Errorf("Backend = %q, want %q", cfg.Backend, BackendMalgo)
	}
	if cfg.Frequency != 600 {
		t.Errorf("Frequency = %v, want 600", cfg.Frequency)
	}
	if cfg.Volume != 0.1 {
		t.Errorf("Volume = %v, want 0.1", cfg.Volume)
	}
	if cfg.DeviceIndex != -1 {
		t.Errorf("DeviceIndex = %d, want -1", cfg.DeviceIndex)
	}
}

func TestOpenTone_None(t *testing.T) {
	cfg := DefaultToneConfig()
	cfg.Backend = BackendNone

	p, err := OpenTone(cfg)
	if err != nil {
		t.Fatalf("OpenTone() error = %v", err)
	}
	p.Start()
	p.Start()
	p.Stop()
	p.Stop()
	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestOpenTone_UnknownBackend(t *testing.T) {
	cfg := DefaultToneConfig()
	cfg.Backend = "theremin"

	_, err := OpenTone(cfg)
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("OpenTone() error = %v, want ErrUnknownBackend", err)
	}
}

func TestGate_Idempotent(t *testing.T) {
	s := NewSidetone(DefaultToneConfig())

	s.Stop()
	if s.on.Load() {
		t.Error("Stop() on a silent tone opened the gate")
	}
	s.Start()
	s.Start()
	if !s.on.Load() {
		t.Error("Start() did not open the gate")
	}
	s.Stop()
	s.Stop()
	if s.on.Load() {
		t.Error("Stop() did not close the gate")
	}
}

func TestOscillator_SilentWhenClosed(t *testing.T) {
	o := NewOscillator(600, 48000, 0.1, rampTime)

	buf := make([]float32, 1024)
	o.Fill(buf, false)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %d = %v with the gate closed, want 0", i, v)
		}
	}
	if !o.Silent() {
		t.Error("Silent() = false for a closed oscillator")
	}
}

func TestOscillator_AmplitudeBound(t *testing.T) {
	o := NewOscillator(600, 48000, 0.1, rampTime)

	buf := make([]float32, 48000)
	o.Fill(buf, true)

	peak := 0.0
	for _, v := range buf {
		peak = math.Max(peak, math.Abs(float64(v)))
	}
	if peak > 0.1+1e-6 {
		t.Errorf("peak = %v, want <= 0.1", peak)
	}
	if peak < 0.09 {
		t.Errorf("peak = %v, want close to 0.1", peak)
	}
}

func TestOscillator_Frequency(t *testing.T) {
	o := NewOscillator(600, 48000, 1, 0)

	buf := make([]float32, 48000)
	o.Fill(buf, true)

	// Rising zero crossings over one second equal the frequency
	crossings := 0
	for i := 1; i < len(buf); i++ {
		if buf[i-1] < 0 && buf[i] >= 0 {
			crossings++
		}
	}
	if crossings < 599 || crossings > 601 {
		t.Errorf("rising zero crossings = %d, want about 600", crossings)
	}
}

func TestOscillator_Ramp(t *testing.T) {
	o := NewOscillator(600, 48000, 1, 5*time.Millisecond)
	rampSamples := 240

	first := make([]float32, rampSamples/2)
	o.Fill(first, true)
	if o.env <= 0 || o.env >= 1 {
		t.Errorf("envelope = %v halfway through attack, want between 0 and 1", o.env)
	}

	rest := make([]float32, rampSamples)
	o.Fill(rest, true)
	if o.env != 1 {
		t.Errorf("envelope = %v after attack, want 1", o.env)
	}

	release := make([]float32, rampSamples+1)
	o.Fill(release, false)
	if !o.Silent() {
		t.Errorf("envelope = %v after release, want 0", o.env)
	}
}

func TestFloat32Codec(t *testing.T) {
	in := []float32{0, 1, -1, 0.5, float32(math.Inf(1)), -0.25}
	buf := make([]byte, len(in)*4)

	if n := encodeFloat32(buf, in); n != len(in) {
		t.Fatalf("encodeFloat32() wrote %d samples, want %d", n, len(in))
	}
	out := decodeFloat32(buf)
	if len(out) != len(in) {
		t.Fatalf("decodeFloat32() returned %d samples, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("sample %d = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestDecodeFloat32_PartialBytes(t *testing.T) {
	if got := decodeFloat32([]byte{0, 0, 128}); len(got) != 0 {
		t.Errorf("decodeFloat32(3 bytes) returned %d samples, want 0", len(got))
	}
	if got := decodeFloat32([]byte{0, 0, 128, 63, 1}); len(got) != 1 || got[0] != 1 {
		t.Errorf("decodeFloat32(5 bytes) = %v, want [1]", got)
	}
}

func TestEncodeFloat32_ShortBuffer(t *testing.T) {
	buf := make([]byte, 8)
	if n := encodeFloat32(buf, []float32{1, 2, 3}); n != 2 {
		t.Errorf("encodeFloat32() = %d, want 2", n)
	}
}

func TestCapture_NotInitialized(t *testing.T) {
	c := NewCapture(DefaultCaptureConfig())

	if err := c.Start(context.Background()); err != ErrNotInitialized {
		t.Errorf("Start() error = %v, want ErrNotInitialized", err)
	}
	if err := c.Stop(); err != ErrNotRunning {
		t.Errorf("Stop() error = %v, want ErrNotRunning", err)
	}
	if c.IsRunning() {
		t.Error("IsRunning() = true for a new capture")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestCapture_SetCallback(t *testing.T) {
	c := NewCapture(DefaultCaptureConfig())

	c.SetCallback(func([]float32) {})
	if c.callbackPtr.Load() == nil {
		t.Error("SetCallback() did not set callback")
	}
	c.SetCallback(nil)
	if c.callbackPtr.Load() != nil {
		t.Error("SetCallback(nil) should clear callback")
	}
}
