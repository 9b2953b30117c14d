// Package toast renders the notification stack and the blocking modals.
package toast

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/warden/console/internal/notify"
	"github.com/warden/console/internal/theme"
)

const toastWidth = 44

// Stack renders visible toasts newest first. It returns "" when empty.
func Stack(p notify.Presenter) string {
	if len(p.Toasts) == 0 {
		return ""
	}
	var rendered []string
	for i := len(p.Toasts) - 1; i >= 0; i-- {
		t := p.Toasts[i]
		color := theme.LevelColor(string(t.Level))
		rendered = append(rendered, lipgloss.NewStyle().
			Width(toastWidth).
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(color).
			Foreground(color).
			Render(t.Text))
	}
	hint := theme.StyleDimmed.Render("x: dismiss")
	return lipgloss.JoinVertical(lipgloss.Right, append(rendered, hint)...)
}

// Modal renders a blocking prompt.
func Modal(m *notify.Modal, width int) string {
	if m == nil {
		return ""
	}
	w := min(max(width-8, 30), 64)
	help := "enter: OK"
	border := theme.ColorInfo
	if m.Kind == notify.ModalConfirm {
		help = "y: yes  n/esc: no"
		border = theme.ColorWarning
	}
	body := strings.Join([]string{
		theme.StyleHeader.Render(m.Title),
		"",
		m.Text,
		"",
		theme.StyleDimmed.Render(help),
	}, "\n")
	return lipgloss.NewStyle().
		Width(w).
		Padding(1, 2).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(border).
		Render(body)
}
