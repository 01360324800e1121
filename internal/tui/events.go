// internal/tui/events.go
package tui

import (
	"github.com/ColonelBlimp/morsetap/internal/trainer"
	tea "github.com/charmbracelet/bubbletea"
)

// Events carries trainer events, including commits fired on the timer
// goroutine, into the program through a buffer read by a command.
type Events chan trainer.Event

// NewEvents returns a buffer of size n.
func NewEvents(n int) Events {
	return make(Events, n)
}

// Send queues e without blocking. When the buffer is full the event is
// dropped; the next redraw reads the trainer state anyway.
func (e Events) Send(ev trainer.Event) {
	select {
	case e <- ev:
	default:
	}
}

type eventMsg trainer.Event

// wait returns a command that delivers the next event.
func (e Events) wait() tea.Cmd {
	if e == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-e
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}
