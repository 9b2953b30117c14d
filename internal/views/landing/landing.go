// Package landing renders the dashboard shown to signed-in users who are
// not administrators.
package landing

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/warden/console/internal/theme"
)

// MsgReviewAttempt is shown by the security alert's review action.
const MsgReviewAttempt = "Please review the login attempt manually."

// Quick actions, in display order.
var QuickActions = []string{"Change Password", "Setup 2FA", "Manage Devices"}

// UnderConstruction is the notice shown by every quick action.
func UnderConstruction(name string) string {
	return fmt.Sprintf("Feature '%s' is currently under construction.", name)
}

// AlertMsg asks the parent to show a blocking alert.
type AlertMsg struct{ Text string }

// LogoutMsg asks the parent to sign out.
type LogoutMsg struct{}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Review key.Binding
	Logout key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
	Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Review: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "review alert")),
	Logout: key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
}

var styleCard = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(theme.ColorBorder).
	Padding(0, 1).
	Width(52)

// Model holds the landing page state.
type Model struct {
	LastLogin time.Time
	// Reason explains why the admin console is unavailable, when known.
	Reason string
	cursor int
}

// New creates the landing page.
func New() Model {
	return Model{}
}

// Cursor returns the highlighted quick action.
func (m Model) Cursor() int { return m.cursor }

// Update handles navigation and actions.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, keys.Down):
		if m.cursor < len(QuickActions)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, keys.Select):
		text := UnderConstruction(QuickActions[m.cursor])
		return m, func() tea.Msg { return AlertMsg{Text: text} }
	case key.Matches(keyMsg, keys.Review):
		return m, func() tea.Msg { return AlertMsg{Text: MsgReviewAttempt} }
	case key.Matches(keyMsg, keys.Logout):
		return m, func() tea.Msg { return LogoutMsg{} }
	}
	return m, nil
}

// View renders the page.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(theme.StyleHeader.Render("Welcome back") + "\n\n")

	login := "No previous login recorded"
	if !m.LastLogin.IsZero() {
		login = m.LastLogin.Local().Format("Jan 2, 2006 3:04 PM") + " (" + humanize.Time(m.LastLogin) + ")"
	}
	b.WriteString(styleCard.Render(theme.StyleDimmed.Render("Last login")+"\n"+login) + "\n")

	alertBox := lipgloss.NewStyle().Foreground(theme.ColorWarning).Bold(true).Render("⚠ Security alert") + "\n" +
		"A sign-in from a new device was detected.\n" +
		theme.StyleDimmed.Render("v: review")
	b.WriteString(styleCard.BorderForeground(theme.ColorWarning).Render(alertBox) + "\n")

	var actions []string
	for i, name := range QuickActions {
		line := "  " + name
		if i == m.cursor {
			line = theme.StyleSelected.Render("› " + name)
		}
		actions = append(actions, line)
	}
	b.WriteString(styleCard.Render(theme.StyleDimmed.Render("Quick actions")+"\n"+strings.Join(actions, "\n")) + "\n")

	if m.Reason != "" {
		b.WriteString(theme.StyleDimmed.Render("Admin console unavailable: "+m.Reason) + "\n")
	}
	b.WriteString(theme.StyleDimmed.Render("j/k: move  enter: open  v: review  L: logout  q: quit"))
	return b.String()
}
