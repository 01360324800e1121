// internal/tui/model.go
// Package tui is the terminal front end of the trainer: a tap button,
// keyboard keying, the morse tree and a settings form.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ColonelBlimp/morsetap/internal/diagram"
	"github.com/ColonelBlimp/morsetap/internal/morse"
	"github.com/ColonelBlimp/morsetap/internal/settings"
	"github.com/ColonelBlimp/morsetap/internal/trainer"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Trainer is the part of the trainer the program drives.
type Trainer interface {
	OnPress(now time.Time)
	OnRelease(now time.Time)
	ClearOutput() bool
	ApplySettings(s settings.Settings) error
	Snapshot() trainer.Snapshot
}

// Saver persists committed settings.
type Saver interface {
	Save(s settings.Settings) error
}

// Options wires the model. Only Trainer is required.
type Options struct {
	Trainer Trainer
	Diagram *diagram.Diagram
	Store   Saver
	Events  Events
	// Notices are shown as a banner, e.g. a sidetone that failed to open.
	Notices []string
	Clock   func() time.Time
}

// releaseMsg ends a press synthesised by the dot and dash keys.
type releaseMsg struct {
	id uint64
	at time.Time
}

// Model is the bubbletea model.
type Model struct {
	trainer Trainer
	diagram *diagram.Diagram
	store   Saver
	events  Events
	notices []string
	now     func() time.Time

	keys   KeyMap
	help   help.Model
	styles styles

	editing bool
	form    form

	mouseDown bool   // press started on the button
	latched   bool   // press started by space
	synth     uint64 // id of the synthesised press in flight, 0 if none
	synthSeq  uint64

	status string
	width  int
}

// New builds the model.
func New(opts Options) Model {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return Model{
		trainer: opts.Trainer,
		diagram: opts.Diagram,
		store:   opts.Store,
		events:  opts.Events,
		notices: opts.Notices,
		now:     now,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		styles:  defaultStyles(),
	}
}

// Run starts the program on the alternate screen with mouse reporting
// and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, m Model, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}, opts...)

	_, err := tea.NewProgram(m, opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return m.events.wait()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case eventMsg:
		m.onEvent(trainer.Event(msg))
		return m, m.events.wait()

	case releaseMsg:
		// A tick only ends the press it started. Presses from other
		// channels reset synth, so their ticks arrive stale.
		if m.synth != 0 && m.synth == msg.id {
			m.synth = 0
			m.trainer.OnRelease(msg.at)
		}
		return m, nil

	case tea.MouseMsg:
		if m.editing {
			return m, nil
		}
		return m.handleMouse(msg), nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateForm(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) onEvent(e trainer.Event) {
	switch e.Kind {
	case trainer.EventCommit:
		m.status = fmt.Sprintf("%c  %s", e.Letter, e.Sequence)
	case trainer.EventClear:
		m.status = "cleared"
	case trainer.EventSymbol:
		m.status = fmt.Sprintf("%c  %dms", e.Symbol, e.Duration.Milliseconds())
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m = m.releaseAll()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Tap):
		// Terminals report no key release, so space toggles.
		if m.latched {
			m.latched = false
			m.trainer.OnRelease(m.now())
		} else if !m.trainer.Snapshot().Pressing {
			m.latched = true
			m.synth = 0
			m.trainer.OnPress(m.now())
		}
		return m, nil

	case key.Matches(msg, m.keys.Dot):
		return m.synthesize(1)

	case key.Matches(msg, m.keys.Dash):
		return m.synthesize(morse.DashRatio)

	case key.Matches(msg, m.keys.Clear):
		if !m.trainer.ClearOutput() {
			m.status = "finish the letter before clearing"
		}
		return m, nil

	case key.Matches(msg, m.keys.Settings):
		m = m.releaseAll()
		m.form = newForm(m.trainer.Snapshot().Settings)
		m.editing = true
		return m, nil
	}
	return m, nil
}

// synthesize presses the key for units unit durations, so '.' and '-'
// always land on the intended side of the boundary.
func (m Model) synthesize(units int) (tea.Model, tea.Cmd) {
	snap := m.trainer.Snapshot()
	if snap.Pressing {
		return m, nil
	}

	d := time.Duration(units) * snap.Settings.Unit()
	start := m.now()
	m.trainer.OnPress(start)
	m.synthSeq++
	m.synth = m.synthSeq

	msg := releaseMsg{id: m.synth, at: start.Add(d)}
	return m, tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

// releaseAll ends whichever press this model started.
func (m Model) releaseAll() Model {
	if m.latched || m.mouseDown || m.synth != 0 {
		m.trainer.OnRelease(m.now())
	}
	m.latched = false
	m.mouseDown = false
	m.synth = 0
	return m
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !m.overButton(msg.X, msg.Y) {
			return m
		}
		// Another channel holds the key; its release ends the press.
		if m.trainer.Snapshot().Pressing {
			return m
		}
		m.mouseDown = true
		m.synth = 0
		m.trainer.OnPress(m.now())
	case tea.MouseActionRelease:
		// Releasing off the button still ends the press.
		if !m.mouseDown {
			return m
		}
		m.mouseDown = false
		m.trainer.OnRelease(m.now())
	}
	return m
}

func (m Model) overButton(x, y int) bool {
	top := 0
	for _, s := range m.above(m.trainer.Snapshot()) {
		top += lipgloss.Height(s)
	}
	return x >= 0 && x < buttonWidth && y >= top && y < top+buttonHeight
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		m.editing = false
		m.status = "settings unchanged"
		return m, nil

	case key.Matches(msg, m.keys.Save):
		draft := m.form.draft()
		if err := draft.Validate(); err != nil {
			m.form.err = err
			return m, nil
		}
		if m.store != nil {
			if err := m.store.Save(draft); err != nil {
				m.form.err = fmt.Errorf("save settings: %w", err)
				return m, nil
			}
		}
		if err := m.trainer.ApplySettings(draft); err != nil {
			m.form.err = err
			return m, nil
		}
		m.editing = false
		m.status = fmt.Sprintf("saved: unit %dms, pause %dms", draft.UnitDuration, draft.PauseDuration)
		return m, nil
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg, m.keys)
	return m, cmd
}

// above returns the sections drawn above the tap button.
func (m Model) above(snap trainer.Snapshot) []string {
	st := m.styles
	header := st.Title.Render("morsetap") + "  " +
		st.Dim.Render(fmt.Sprintf("unit %dms  pause %dms", snap.Settings.UnitDuration, snap.Settings.PauseDuration))

	sections := []string{header}
	for _, n := range m.notices {
		sections = append(sections, st.Notice.Render(n))
	}
	sections = append(sections, "")
	if m.diagram != nil {
		sections = append(sections, m.diagram.View(), "")
	}
	return sections
}

func (m Model) View() string {
	snap := m.trainer.Snapshot()
	st := m.styles

	if m.editing {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.above(snap)[0],
			"",
			m.form.view(st),
			m.help.View(formKeys{m.keys}),
		)
	}

	button := st.Button
	if snap.Pressing {
		button = st.Pressed
	}

	sections := m.above(snap)
	sections = append(sections,
		button.Render("TAP"),
		"",
		st.Label.Render("Sequence")+snap.Sequence,
		st.Label.Render("Output")+st.Output.Render(snap.Output),
		st.Status.Render(m.status),
		"",
		m.help.View(m.keys),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
