package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/warden/console/internal/theme"
	"github.com/warden/console/internal/views/audit"
	"github.com/warden/console/internal/views/toast"
)

var (
	styleTab = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(theme.ColorDimmed)

	styleActiveTab = lipgloss.NewStyle().
			Padding(0, 2).
			Bold(true).
			Foreground(theme.ColorBright).
			Background(theme.ColorAccent)
)

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	if m.modal != nil {
		return m.center(toast.Modal(m.modal, m.width))
	}
	switch m.overlay {
	case OverlayDetail:
		return m.center(m.detail.View())
	case OverlayDebug:
		return m.center(m.debugLog.View(m.width-4, m.height-2))
	}

	var body string
	switch m.mode {
	case ModeGate:
		body = m.center(m.spinner.View() + " Verifying admin access...")
	case ModeLanding:
		body = m.landing.View()
	case ModeLogin:
		body = m.center(m.login.View())
	case ModeRegister:
		body = m.center(m.register.View())
	default:
		body = m.adminView()
	}

	if stack := toast.Stack(m.toasts); stack != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, "  ", stack)
	}
	return body
}

func (m Model) adminView() string {
	var tabs []string
	for _, t := range m.tabs() {
		style := styleTab
		if t == m.tab {
			style = styleActiveTab
		}
		tabs = append(tabs, style.Render(t.String()))
	}

	var content string
	switch m.tab {
	case TabUsers:
		content = m.users.View()
	case TabEvents:
		content = m.events.View()
	case TabMonitor:
		content = m.monitor.View()
	case TabAudit:
		content = audit.View(m.Audit(), m.width, m.height-8)
	}

	help := []string{"tab/1-4: switch", "d: debug", "x: dismiss", "L: logout", "q: quit"}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.statusBar.View(),
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		"",
		content,
		"",
		theme.StyleDimmed.Render("  "+strings.Join(help, "  ")),
	)
}

func (m Model) center(s string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, s)
}
