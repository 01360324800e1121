// internal/dsp/agc.go
package dsp

import "time"

// minPeak keeps the normaliser away from zero on silence.
const minPeak = 0.001

// agc normalises block magnitudes against a decaying peak so the keyer
// threshold works for quiet and loud inputs alike.
type agc struct {
	attack float64
	decay  float64
	warmup int

	peak   float64
	blocks int
}

func newAGC(attack, decay float64, warmup int) agc {
	// Start high so nothing triggers before the peak has been measured.
	return agc{attack: attack, decay: decay, warmup: warmup, peak: 1}
}

// calibrating reports whether mag was consumed by the warmup phase. During
// warmup the peak tracks the loudest block and never decays.
func (a *agc) calibrating(mag float64) bool {
	if a.blocks >= a.warmup {
		return false
	}
	a.blocks++
	if mag > minPeak && (mag > a.peak || a.blocks == 1) {
		a.peak = mag
	}
	return true
}

func (a *agc) apply(mag float64) float64 {
	if mag > a.peak {
		a.peak += a.attack * (mag - a.peak)
	} else {
		a.peak *= a.decay
	}
	if a.peak < minPeak {
		a.peak = minPeak
	}
	return min(mag/a.peak, 1)
}

// debouncer confirms a level change only after it held for need
// consecutive blocks. The confirmed change is dated to the first block of
// the run, not the block that confirmed it.
type debouncer struct {
	need int

	state   bool
	pending bool
	count   int
	since   time.Time
}

// step feeds the level of the block ending at at. It reports whether the
// confirmed state flipped and when the new state began.
func (d *debouncer) step(level bool, at time.Time) (time.Time, bool) {
	if level == d.state {
		d.pending = d.state
		d.count = 0
		return time.Time{}, false
	}
	if level == d.pending && d.count > 0 {
		d.count++
	} else {
		d.pending = level
		d.count = 1
		d.since = at
	}
	if d.count < d.need {
		return time.Time{}, false
	}
	d.state = d.pending
	d.count = 0
	return d.since, true
}
