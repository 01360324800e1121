// internal/trainer/trainer.go
// Package trainer turns press/release events into morse symbols and
// commits them to letters after a pause.
package trainer

import (
	"sync"
	"time"

	"github.com/ColonelBlimp/morsetap/internal/morse"
	"github.com/ColonelBlimp/morsetap/internal/settings"
	"github.com/ColonelBlimp/morsetap/internal/timer"
)

// EventKind tells observers what changed.
type EventKind int

const (
	// EventSymbol is sent after a release appended a symbol
	EventSymbol EventKind = iota
	// EventCommit is sent after the pause committed a letter
	EventCommit
	// EventClear is sent after the output was cleared
	EventClear
)

// Event describes one accepted state change.
type Event struct {
	Kind     EventKind
	Symbol   morse.Symbol // EventSymbol only
	Duration time.Duration
	Sequence string // sequence after a symbol, committed sequence on commit
	Letter   rune   // EventCommit only; morse.Unknown for misses
}

// Config holds the trainer's collaborators. Nil collaborators are
// replaced with silent ones and a nil Output with a Transcript.
type Config struct {
	Settings  settings.Settings
	Tone      Tone
	Renderer  Renderer
	Output    Output
	Scheduler timer.Scheduler
	// OnEvent is called after each accepted change, outside the trainer's
	// lock. It may run on the scheduler's goroutine and must not block.
	OnEvent func(Event)
}

// Snapshot is a consistent copy of the trainer state.
type Snapshot struct {
	Pressing bool
	Sequence string
	Output   string
	Settings settings.Settings
}

// Trainer is the press/release state machine.
type Trainer struct {
	mu sync.Mutex

	settings settings.Settings
	tone     Tone
	renderer Renderer
	output   Output
	onEvent  func(Event)

	pending *timer.Slot
	armed   uint64

	pressing  bool
	pressedAt time.Time
	sequence  []byte
}

// New creates a trainer. It fails only on invalid settings.
func New(cfg Config) (*Trainer, error) {
	if err := cfg.Settings.Validate(); err != nil {
		return nil, err
	}

	t := &Trainer{
		settings: cfg.Settings,
		tone:     cfg.Tone,
		renderer: cfg.Renderer,
		output:   cfg.Output,
		onEvent:  cfg.OnEvent,
		pending:  timer.NewSlot(cfg.Scheduler),
	}
	if t.tone == nil {
		t.tone = nopTone{}
	}
	if t.renderer == nil {
		t.renderer = nopRenderer{}
	}
	if t.output == nil {
		t.output = &Transcript{}
	}
	return t, nil
}

// OnPress starts a press. It is ignored while a press is already active,
// which coalesces overlapping input channels into one key.
func (t *Trainer) OnPress(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pressing {
		return
	}
	t.pressing = true
	t.pressedAt = now
	t.tone.Start()
}

// OnRelease ends the active press, appends its symbol and restarts the
// pause timer. It is ignored when no press is active.
func (t *Trainer) OnRelease(now time.Time) {
	t.mu.Lock()

	if !t.pressing {
		t.mu.Unlock()
		return
	}
	t.pressing = false

	duration := now.Sub(t.pressedAt)
	if duration < 0 {
		duration = 0
	}
	sym := morse.Classify(duration, t.settings.Unit())
	t.sequence = append(t.sequence, byte(sym))
	seq := string(t.sequence)

	t.tone.Stop()
	t.renderer.Highlight(seq)
	t.renderer.StartMark()
	t.armed++
	gen := t.armed
	t.pending.Arm(t.settings.Pause(), func() { t.pauseElapsed(gen) })

	t.mu.Unlock()

	t.emit(Event{Kind: EventSymbol, Symbol: sym, Duration: duration, Sequence: seq})
}

// pauseElapsed commits the sequence armed as generation gen. A fire that
// raced with a newer release finds a newer generation and does nothing.
func (t *Trainer) pauseElapsed(gen uint64) {
	t.mu.Lock()

	if gen != t.armed || len(t.sequence) == 0 {
		t.mu.Unlock()
		return
	}
	seq := string(t.sequence)
	letter := morse.Letter(seq)

	t.output.Append(string(letter) + " ")
	t.sequence = t.sequence[:0]
	t.renderer.Reset()

	t.mu.Unlock()

	t.emit(Event{Kind: EventCommit, Sequence: seq, Letter: letter})
}

// ClearOutput empties the output and resets the renderer. It does nothing
// and returns false while a letter is still being built.
func (t *Trainer) ClearOutput() bool {
	t.mu.Lock()

	if len(t.sequence) > 0 {
		t.mu.Unlock()
		return false
	}
	t.output.Clear()
	t.renderer.Reset()

	t.mu.Unlock()

	t.emit(Event{Kind: EventClear})
	return true
}

// ApplySettings replaces the committed settings. The new unit applies to
// the next release and the new pause to the next timer arm.
func (t *Trainer) ApplySettings(s settings.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.settings = s
	return nil
}

// Settings returns the committed settings.
func (t *Trainer) Settings() settings.Settings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.settings
}

// Sequence returns the in-progress sequence.
func (t *Trainer) Sequence() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.sequence)
}

// Pressing reports whether a press is active.
func (t *Trainer) Pressing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pressing
}

// Snapshot returns the full state at once.
func (t *Trainer) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		Pressing: t.pressing,
		Sequence: string(t.sequence),
		Output:   t.output.Text(),
		Settings: t.settings,
	}
}

// Close cancels a pending commit and silences the tone.
func (t *Trainer) Close() {
	t.pending.Cancel()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.armed++
	if t.pressing {
		t.pressing = false
		t.tone.Stop()
	}
}

func (t *Trainer) emit(e Event) {
	if t.onEvent != nil {
		t.onEvent(e)
	}
}
