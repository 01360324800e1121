// internal/audio/oscillator.go
package audio

import (
	"math"
	"time"
)

// Oscillator is a gated sine source with a linear attack/release ramp so
// keying does not click. Not safe for concurrent use; it lives on the
// audio thread.
type Oscillator struct {
	step  float64 // phase increment per sample, in cycles
	gain  float64
	ramp  float64 // envelope increment per sample
	phase float64
	env   float64
}

// NewOscillator returns a silent oscillator.
func NewOscillator(frequency float64, sampleRate uint32, gain float64, ramp time.Duration) *Oscillator {
	rampSamples := ramp.Seconds() * float64(sampleRate)
	rampStep := 1.0
	if rampSamples >= 1 {
		rampStep = 1 / rampSamples
	}
	return &Oscillator{
		step: frequency / float64(sampleRate),
		gain: gain,
		ramp: rampStep,
	}
}

// Next returns the next sample with the gate open or closed.
func (o *Oscillator) Next(on bool) float64 {
	if on {
		o.env = math.Min(1, o.env+o.ramp)
	} else {
		o.env = math.Max(0, o.env-o.ramp)
	}
	if o.env == 0 {
		o.phase = 0
		return 0
	}

	v := math.Sin(2*math.Pi*o.phase) * o.gain * o.env
	o.phase += o.step
	if o.phase >= 1 {
		o.phase -= 1
	}
	return v
}

// Fill writes len(out) samples.
func (o *Oscillator) Fill(out []float32, on bool) {
	for i := range out {
		out[i] = float32(o.Next(on))
	}
}

// Silent reports whether the envelope has fully closed.
func (o *Oscillator) Silent() bool {
	return o.env == 0
}
