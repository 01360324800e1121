// internal/trainer/collaborators.go
package trainer

import (
	"strings"
	"sync"
)

// Tone is the audible feedback while a press is held.
// Implementations must make Stop a no-op when silent and make Start
// replace any tone that is already sounding.
type Tone interface {
	Start()
	Stop()
}

// Renderer shows the in-progress sequence.
type Renderer interface {
	// Highlight marks the node for seq. Unrecognised sequences are ignored.
	Highlight(seq string)
	// StartMark marks the origin node.
	StartMark()
	// Reset restores the neutral look.
	Reset()
}

// Output receives committed letters.
type Output interface {
	Append(s string)
	Clear()
	Text() string
}

type nopTone struct{}

func (nopTone) Start() {}
func (nopTone) Stop()  {}

type nopRenderer struct{}

func (nopRenderer) Highlight(string) {}
func (nopRenderer) StartMark()       {}
func (nopRenderer) Reset()           {}

// Transcript is an in-memory Output, safe for concurrent use.
type Transcript struct {
	mu  sync.Mutex
	buf strings.Builder
}

// Append adds s to the end of the transcript.
func (t *Transcript) Append(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf.WriteString(s)
}

// Clear empties the transcript.
func (t *Transcript) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf.Reset()
}

// Text returns everything appended since the last Clear.
func (t *Transcript) Text() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.String()
}
