// internal/dsp/goertzel_test.go
package dsp

import (
	"math"
	"testing"
)

const (
	testSampleRate = 48000.0
	testFrequency  = 600.0
	testBlockSize  = 512
)

func sine(frequency float64, n int, amplitude float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = amplitude * float32(math.Sin(2*math.Pi*frequency*float64(i)/testSampleRate))
	}
	return out
}

func newTestGoertzel(t *testing.T) *Goertzel {
	t.Helper()
	g, err := NewGoertzel(testFrequency, testSampleRate, testBlockSize)
	if err != nil {
		t.Fatalf("NewGoertzel() error = %v", err)
	}
	return g
}

func TestNewGoertzel_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		frequency float64
		rate      float64
		block     int
		wantErr   error
	}{
		{"zero block", testFrequency, testSampleRate, 0, ErrInvalidBlockSize},
		{"negative block", testFrequency, testSampleRate, -1, ErrInvalidBlockSize},
		{"zero rate", testFrequency, 0, testBlockSize, ErrInvalidSampleRate},
		{"zero frequency", 0, testSampleRate, testBlockSize, ErrInvalidFrequency},
		{"at nyquist", 24000, testSampleRate, testBlockSize, ErrInvalidFrequency},
		{"above nyquist", 30000, testSampleRate, testBlockSize, ErrInvalidFrequency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGoertzel(tt.frequency, tt.rate, tt.block)
			if err != tt.wantErr {
				t.Errorf("NewGoertzel() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGoertzel_Magnitude(t *testing.T) {
	g := newTestGoertzel(t)

	tests := []struct {
		name    string
		samples []float32
		min     float64
		max     float64
	}{
		{"full scale on frequency", sine(testFrequency, testBlockSize, 1), 0.9, 1.1},
		{"half scale on frequency", sine(testFrequency, testBlockSize, 0.5), 0.45, 0.55},
		{"silence", make([]float32, testBlockSize), 0, 1e-9},
		{"far off frequency", sine(3000, testBlockSize, 1), 0, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.Magnitude(tt.samples)
			if err != nil {
				t.Fatalf("Magnitude() error = %v", err)
			}
			if got < tt.min || got > tt.max {
				t.Errorf("Magnitude() = %v, want in [%v, %v]", got, tt.min, tt.max)
			}
		})
	}
}

func TestGoertzel_InsufficientSamples(t *testing.T) {
	g := newTestGoertzel(t)

	if _, err := g.Magnitude(make([]float32, testBlockSize-1)); err != ErrInsufficientSamples {
		t.Errorf("Magnitude() error = %v, want ErrInsufficientSamples", err)
	}
}

func TestGoertzel_ExtraSamplesIgnored(t *testing.T) {
	g := newTestGoertzel(t)

	block := sine(testFrequency, testBlockSize, 1)
	longer := append(append([]float32{}, block...), make([]float32, 100)...)

	a, _ := g.Magnitude(block)
	b, _ := g.Magnitude(longer)
	if a != b {
		t.Errorf("Magnitude() with trailing samples = %v, want %v", b, a)
	}
}

func BenchmarkGoertzel_Magnitude(b *testing.B) {
	g, _ := NewGoertzel(testFrequency, testSampleRate, testBlockSize)
	samples := sine(testFrequency, testBlockSize, 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.magnitude(samples)
	}
}
