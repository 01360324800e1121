// internal/replay/replay.go
// Package replay drives the trainer from a timed script on a virtual
// clock, without a terminal or audio.
//
// A script has one event per line:
//
//	# comment
//	0    press
//	120  release
//	300  down      (alias of press)
//	340  up        (alias of release)
//	2000 clear
//
// Times are milliseconds from the start and must not decrease.
package replay

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ColonelBlimp/morsetap/internal/settings"
	"github.com/ColonelBlimp/morsetap/internal/timer"
	"github.com/ColonelBlimp/morsetap/internal/trainer"
)

var (
	// ErrSyntax indicates a line is not "<ms> <action>"
	ErrSyntax = errors.New("expected \"<ms> <action>\"")
	// ErrBadTime indicates the time is negative, not an integer, or too large
	ErrBadTime = errors.New("time must be a non-negative integer of milliseconds")
	// ErrTimeOrder indicates a time earlier than the previous line
	ErrTimeOrder = errors.New("time goes backwards")
	// ErrUnknownAction indicates an action other than press, release or clear
	ErrUnknownAction = errors.New("unknown action")
)

// maxMillis is the largest time that converts to a time.Duration.
const maxMillis = math.MaxInt64 / int64(time.Millisecond)

// Action is what a step does to the trainer.
type Action int

const (
	Press Action = iota
	Release
	Clear
)

func (a Action) String() string {
	switch a {
	case Press:
		return "press"
	case Release:
		return "release"
	case Clear:
		return "clear"
	}
	return "Action(" + strconv.Itoa(int(a)) + ")"
}

var actions = map[string]Action{
	"press":   Press,
	"down":    Press,
	"release": Release,
	"up":      Release,
	"clear":   Clear,
}

// Step is one parsed script line.
type Step struct {
	At     time.Duration
	Action Action
	Line   int
}

// Parse reads a script. Errors name the offending line.
func Parse(r io.Reader) ([]Step, error) {
	var steps []Step
	var last time.Duration

	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: %w, got %q", n, ErrSyntax, strings.TrimSpace(line))
		}

		ms, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil || ms < 0 || ms > maxMillis {
			return nil, fmt.Errorf("line %d: %w, got %q", n, ErrBadTime, fields[0])
		}
		at := time.Duration(ms) * time.Millisecond
		if at < last {
			return nil, fmt.Errorf("line %d: %w (%dms after %dms)", n, ErrTimeOrder, ms, last.Milliseconds())
		}
		last = at

		action, ok := actions[strings.ToLower(fields[1])]
		if !ok {
			return nil, fmt.Errorf("line %d: %w %q", n, ErrUnknownAction, fields[1])
		}
		steps = append(steps, Step{At: at, Action: action, Line: n})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return steps, nil
}

// Result is the outcome of a run.
type Result struct {
	Text     string
	Events   []trainer.Event
	Pressing bool // the script ended with the key held
}

// epoch anchors virtual time. Its value is irrelevant.
var epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Run plays steps against a fresh trainer. Commits that fall due between
// steps fire before the next step, and a final pause flushes the last
// letter.
func Run(steps []Step, s settings.Settings) (Result, error) {
	clock := timer.NewManual(epoch)
	out := &trainer.Transcript{}

	var events []trainer.Event
	t, err := trainer.New(trainer.Config{
		Settings:  s,
		Output:    out,
		Scheduler: clock,
		OnEvent:   func(e trainer.Event) { events = append(events, e) },
	})
	if err != nil {
		return Result{}, err
	}
	defer t.Close()

	for _, step := range steps {
		clock.AdvanceTo(epoch.Add(step.At))
		now := clock.Now()
		switch step.Action {
		case Press:
			t.OnPress(now)
		case Release:
			t.OnRelease(now)
		case Clear:
			t.ClearOutput()
		}
	}
	clock.Advance(s.Pause())

	return Result{
		Text:     out.Text(),
		Events:   events,
		Pressing: t.Pressing(),
	}, nil
}

// RunScript parses and runs a script in one go.
func RunScript(r io.Reader, s settings.Settings) (Result, error) {
	steps, err := Parse(r)
	if err != nil {
		return Result{}, err
	}
	return Run(steps, s)
}
