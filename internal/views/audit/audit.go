// Package audit renders the superadmin audit tab: the audit appends this
// console has issued, newest first.
package audit

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/warden/console/internal/admin"
	"github.com/warden/console/internal/theme"
)

// View renders entries (oldest first, as recorded) newest first, at most
// height rows.
func View(entries []admin.AuditEntry, width, height int) string {
	if len(entries) == 0 {
		return theme.StyleDimmed.Render("No audit entries recorded this session.")
	}
	if height < 1 {
		height = 1
	}
	actionW := width - 30
	if actionW < 20 {
		actionW = 20
	}

	header := theme.StyleHeader.Render(fmt.Sprintf("%-12s  %-*s  %s", "WHEN", actionW, "ACTION", "RESULT"))
	lines := []string{header}
	for i := len(entries) - 1; i >= 0 && len(lines) <= height; i-- {
		e := entries[i]
		result := lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("logged")
		if e.Err != nil {
			result = theme.StyleError.Render("failed")
		}
		action := e.Action
		if len(action) > actionW {
			action = action[:actionW-3] + "..."
		}
		lines = append(lines, fmt.Sprintf("%-12s  %-*s  %s",
			humanize.Time(e.At), actionW, action, result))
	}
	return strings.Join(lines, "\n")
}
