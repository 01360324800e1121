// internal/dsp/goertzel.go
// Package dsp turns a keyed audio tone into key-down and key-up events.
package dsp

import (
	"errors"
	"math"
)

var (
	// ErrInvalidBlockSize indicates block size must be positive
	ErrInvalidBlockSize = errors.New("block size must be positive")
	// ErrInvalidSampleRate indicates sample rate must be positive
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	// ErrInvalidFrequency indicates frequency must be positive and below Nyquist
	ErrInvalidFrequency = errors.New("tone frequency must be positive and less than Nyquist frequency")
	// ErrInsufficientSamples indicates not enough samples for the block size
	ErrInsufficientSamples = errors.New("insufficient samples for block size")
)

// Goertzel measures the energy of one frequency bin over a fixed block.
// It is cheaper than an FFT when only the sidetone frequency matters.
type Goertzel struct {
	blockSize int
	coeff     float64 // 2*cos(omega)
	scale     float64 // 2/N so a full-scale sine reads ~1.0
}

// NewGoertzel tunes a filter to frequency for blocks of blockSize samples.
func NewGoertzel(frequency, sampleRate float64, blockSize int) (*Goertzel, error) {
	if blockSize <= 0 {
		return nil, ErrInvalidBlockSize
	}
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if frequency <= 0 || frequency >= sampleRate/2 {
		return nil, ErrInvalidFrequency
	}

	omega := 2 * math.Pi * frequency / sampleRate
	return &Goertzel{
		blockSize: blockSize,
		coeff:     2 * math.Cos(omega),
		scale:     2 / float64(blockSize),
	}, nil
}

// BlockSize returns the number of samples per measurement.
func (g *Goertzel) BlockSize() int {
	return g.blockSize
}

// Magnitude returns the normalised magnitude of the first BlockSize
// samples.
func (g *Goertzel) Magnitude(samples []float32) (float64, error) {
	if len(samples) < g.blockSize {
		return 0, ErrInsufficientSamples
	}
	return g.magnitude(samples), nil
}

// magnitude is the hot path. Caller guarantees len(samples) >= blockSize.
func (g *Goertzel) magnitude(samples []float32) float64 {
	var s1, s2 float64
	for _, x := range samples[:g.blockSize] {
		s0 := float64(x) + g.coeff*s1 - s2
		s2 = s1
		s1 = s0
	}

	power := s1*s1 + s2*s2 - g.coeff*s1*s2
	if power < 0 {
		power = 0
	}
	return math.Sqrt(power) * g.scale
}
