// Package auth provides the login and registration forms. Submissions are
// validated locally; neither form calls the network.
package auth

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/warden/console/internal/theme"
)

// AlertMsg asks the parent to show a blocking alert.
type AlertMsg struct{ Text string }

// KeyMap holds the form bindings.
type KeyMap struct {
	Next       key.Binding
	Prev       key.Binding
	Submit     key.Binding
	Toggle     key.Binding
	ShowSecret key.Binding
}

// DefaultKeyMap returns the default form bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "prev field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
		ShowSecret: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "show/hide password"),
		),
	}
}

var (
	styleForm = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.ColorBorder).
			Padding(1, 2).
			Width(56)

	styleLabel = lipgloss.NewStyle().
			Foreground(theme.ColorDimmed)

	styleFocused = lipgloss.NewStyle().
			Foreground(theme.ColorAccent).
			Bold(true)
)

func newInput(placeholder string, secret bool) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	ti.CharLimit = 128
	ti.Width = 44
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return ti
}

// setSecretVisible switches the echo mode of password inputs.
func setSecretVisible(visible bool, inputs ...*textinput.Model) {
	for _, in := range inputs {
		if visible {
			in.EchoMode = textinput.EchoNormal
		} else {
			in.EchoMode = textinput.EchoPassword
		}
	}
}

// focusOnly focuses inputs[idx] and blurs the rest.
func focusOnly(idx int, inputs []*textinput.Model) tea.Cmd {
	var cmd tea.Cmd
	for i, in := range inputs {
		if i == idx {
			cmd = in.Focus()
		} else {
			in.Blur()
		}
	}
	return cmd
}

func label(text string, focused bool) string {
	if focused {
		return styleFocused.Render(text)
	}
	return styleLabel.Render(text)
}

func alert(text string) tea.Cmd {
	return func() tea.Msg { return AlertMsg{Text: text} }
}
