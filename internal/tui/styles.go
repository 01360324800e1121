// internal/tui/styles.go
package tui

import (
	"github.com/ColonelBlimp/morsetap/internal/diagram"
	"github.com/charmbracelet/lipgloss"
)

// Tap button size including its border.
const (
	buttonWidth  = 20
	buttonHeight = 3
)

type styles struct {
	Title   lipgloss.Style
	Dim     lipgloss.Style
	Notice  lipgloss.Style
	Status  lipgloss.Style
	Error   lipgloss.Style
	Button  lipgloss.Style
	Pressed lipgloss.Style
	Output  lipgloss.Style
	Label   lipgloss.Style
}

func defaultStyles() styles {
	button := lipgloss.NewStyle().
		Width(buttonWidth - 2).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(diagram.ColorLight).
		Foreground(diagram.ColorLight)

	return styles{
		Title:   lipgloss.NewStyle().Foreground(diagram.ColorHighlightOuter).Bold(true),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Notice:  lipgloss.NewStyle().Foreground(diagram.ColorBlack).Background(diagram.ColorHighlightInner).Padding(0, 1),
		Status:  lipgloss.NewStyle().Foreground(diagram.ColorHighlightInner),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Button:  button,
		Pressed: button.BorderForeground(diagram.ColorHighlightOuter).Foreground(diagram.ColorHighlightOuter).Bold(true),
		Output:  lipgloss.NewStyle().Bold(true),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Width(9),
	}
}
