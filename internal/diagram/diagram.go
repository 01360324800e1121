// internal/diagram/diagram.go
// Package diagram draws the morse tree and highlights the path of the
// sequence being keyed.
package diagram

import (
	"strings"
	"sync"

	"github.com/ColonelBlimp/morsetap/internal/morse"
	"github.com/charmbracelet/lipgloss"
)

// Palette colours
const (
	ColorBlack          = lipgloss.Color("#000000")
	ColorDark           = lipgloss.Color("#181C14")
	ColorLight          = lipgloss.Color("#303828")
	ColorHighlightOuter = lipgloss.Color("#FCA311")
	ColorHighlightInner = lipgloss.Color("#FDC05D")
)

// cellWidth is the width of one leaf cell. Each level up doubles it.
const cellWidth = 4

const (
	originGlyph = "●"
	emptyGlyph  = "·"
)

// Styles groups the lipgloss styles used by View.
type Styles struct {
	Node      lipgloss.Style
	Empty     lipgloss.Style
	Highlight lipgloss.Style
	Origin    lipgloss.Style
	Active    lipgloss.Style
}

// DefaultStyles returns the neutral/highlight palette.
func DefaultStyles() Styles {
	return Styles{
		Node:      lipgloss.NewStyle().Foreground(ColorLight).Background(ColorDark),
		Empty:     lipgloss.NewStyle().Foreground(ColorDark),
		Highlight: lipgloss.NewStyle().Foreground(ColorBlack).Background(ColorHighlightOuter).Bold(true),
		Origin:    lipgloss.NewStyle().Foreground(ColorLight),
		Active:    lipgloss.NewStyle().Foreground(ColorHighlightInner).Bold(true),
	}
}

// Diagram is a Renderer backed by the morse heap tree. Marks accumulate
// until Reset, so each prefix of a sequence stays lit.
type Diagram struct {
	styles Styles

	mu     sync.RWMutex
	marked [len(morse.Tree)]bool
	origin bool
}

// New returns a diagram in the neutral state.
func New(styles Styles) *Diagram {
	return &Diagram{styles: styles}
}

// Highlight marks the node of seq. Sequences with no letter are ignored.
func (d *Diagram) Highlight(seq string) {
	idx, ok := morse.Index(seq)
	if !ok || morse.Tree[idx] == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.marked[idx] = true
}

// StartMark lights the origin node.
func (d *Diagram) StartMark() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.origin = true
}

// Reset clears every mark.
func (d *Diagram) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.marked = [len(morse.Tree)]bool{}
	d.origin = false
}

// Marked reports whether the node of seq is lit.
func (d *Diagram) Marked(seq string) bool {
	idx, ok := morse.Index(seq)
	if !ok {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.marked[idx]
}

// Started reports whether the origin is lit.
func (d *Diagram) Started() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.origin
}

// Width is the rendered width in cells.
func Width() int {
	return cellWidth << morse.MaxDepth
}

// View renders the tree, one row per depth, dot branches on the left.
func (d *Diagram) View() string {
	d.mu.RLock()
	marked := d.marked
	origin := d.origin
	d.mu.RUnlock()

	total := Width()
	rows := make([]string, 0, morse.MaxDepth+1)

	originStyle := d.styles.Origin
	if origin {
		originStyle = d.styles.Active
	}
	rows = append(rows, lipgloss.PlaceHorizontal(total, lipgloss.Center, originStyle.Render(originGlyph)))

	for depth := 1; depth <= morse.MaxDepth; depth++ {
		first := 1 << depth
		count := 1 << depth
		width := total / count

		var row strings.Builder
		for idx := first; idx < first+count; idx++ {
			row.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, d.node(idx, marked[idx])))
		}
		rows = append(rows, row.String())
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (d *Diagram) node(idx int, lit bool) string {
	r := morse.Tree[idx]
	if r == 0 {
		return d.styles.Empty.Render(emptyGlyph)
	}
	if lit {
		return d.styles.Highlight.Render(string(r))
	}
	return d.styles.Node.Render(string(r))
}
