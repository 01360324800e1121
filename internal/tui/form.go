// internal/tui/form.go
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/ColonelBlimp/morsetap/internal/morse"
	"github.com/ColonelBlimp/morsetap/internal/settings"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	fieldUnit = iota
	fieldPause
	fieldCount
)

// form edits a draft of the settings. The draft never reaches the trainer
// until it is saved.
type form struct {
	inputs [fieldCount]textinput.Model
	focus  int
	err    error
}

func newForm(current settings.Settings) form {
	var f form
	for i := range f.inputs {
		ti := textinput.New()
		ti.CharLimit = 6
		ti.Width = 8
		ti.Prompt = ""
		f.inputs[i] = ti
	}
	f.inputs[fieldUnit].Placeholder = strconv.Itoa(settings.DefaultUnitDuration)
	f.inputs[fieldUnit].SetValue(strconv.Itoa(current.UnitDuration))
	f.inputs[fieldPause].Placeholder = strconv.Itoa(settings.DefaultPauseDuration)
	f.inputs[fieldPause].SetValue(strconv.Itoa(current.PauseDuration))
	f.inputs[fieldUnit].Focus()
	return f
}

// draft parses the inputs. Empty or non-numeric fields are reported by
// Validate as non-positive.
func (f form) draft() settings.Settings {
	unit, _ := strconv.Atoi(f.inputs[fieldUnit].Value())
	pause, _ := strconv.Atoi(f.inputs[fieldPause].Value())
	return settings.Settings{UnitDuration: unit, PauseDuration: pause}
}

func (f form) next() form {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + 1) % fieldCount
	f.inputs[f.focus].Focus()
	return f
}

// update passes editing keys to the focused input. Only digits are
// typed in.
func (f form) update(msg tea.KeyMsg, keys KeyMap) (form, tea.Cmd) {
	if key.Matches(msg, keys.Next) {
		return f.next(), nil
	}
	if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
		for _, r := range msg.Runes {
			if !unicode.IsDigit(r) {
				return f, nil
			}
		}
		if msg.Type == tea.KeySpace {
			return f, nil
		}
	}
	f.err = nil

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f form) view(st styles) string {
	var b strings.Builder
	b.WriteString(st.Title.Render("Settings"))
	b.WriteString("\n\n")

	labels := [fieldCount]string{"Unit", "Pause"}
	for i, in := range f.inputs {
		mirror := "--"
		if v, err := strconv.Atoi(in.Value()); err == nil {
			mirror = fmt.Sprintf("%dms", v)
		}
		fmt.Fprintf(&b, "%s%s %s\n", st.Label.Render(labels[i]), in.View(), st.Status.Render(mirror))
	}

	d := f.draft()
	fmt.Fprintf(&b, "\n%s\n", st.Dim.Render(fmt.Sprintf("Presses shorter than %dms are dots.", d.UnitDuration*morse.DashRatio)))
	if f.err != nil {
		b.WriteString(st.Error.Render(f.err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}
