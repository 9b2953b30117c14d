// Package theme provides the Lip Gloss color palette and reusable styles
// for the Warden console. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Severity colors.
var (
	ColorLow      = lipgloss.Color("#22c55e")
	ColorMedium   = lipgloss.Color("#eab308")
	ColorHigh     = lipgloss.Color("#d97706")
	ColorCritical = lipgloss.Color("#dc2626")
)

// Role badge colors.
var (
	ColorRoleUser       = lipgloss.Color("#9ca3af")
	ColorRoleAdmin      = lipgloss.Color("#3b82f6")
	ColorRoleSuperadmin = lipgloss.Color("#a855f7")
)

// Password strength colors, indexed by score 0-5.
var strengthColors = []lipgloss.Color{
	lipgloss.Color("#dc2626"),
	lipgloss.Color("#dc2626"),
	lipgloss.Color("#d97706"),
	lipgloss.Color("#eab308"),
	lipgloss.Color("#84cc16"),
	lipgloss.Color("#22c55e"),
}

// Toast colors.
var (
	ColorInfo    = lipgloss.Color("#3b82f6")
	ColorSuccess = lipgloss.Color("#16a34a")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorBg      = lipgloss.Color("#111827")
	ColorAccent  = lipgloss.Color("#3498db")
	ColorDefault = lipgloss.Color("#9ca3af")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
)

// SeverityColor returns the color for an event severity, case-insensitively.
func SeverityColor(severity string) lipgloss.Color {
	switch strings.ToLower(severity) {
	case "low":
		return ColorLow
	case "medium":
		return ColorMedium
	case "high":
		return ColorHigh
	case "critical":
		return ColorCritical
	default:
		return ColorDefault
	}
}

// RoleColor returns the color for a user role.
func RoleColor(role string) lipgloss.Color {
	switch role {
	case "admin":
		return ColorRoleAdmin
	case "superadmin":
		return ColorRoleSuperadmin
	default:
		return ColorRoleUser
	}
}

// StrengthColor returns the meter color for a password score.
func StrengthColor(score int) lipgloss.Color {
	if score < 0 {
		score = 0
	}
	if score >= len(strengthColors) {
		score = len(strengthColors) - 1
	}
	return strengthColors[score]
}

// LevelColor returns the color for a toast level.
func LevelColor(level string) lipgloss.Color {
	switch level {
	case "success":
		return ColorSuccess
	case "warning":
		return ColorWarning
	case "error":
		return ColorDanger
	default:
		return ColorInfo
	}
}

// StatusColor returns the color for a user account status.
func StatusColor(status string) lipgloss.Color {
	switch strings.ToLower(status) {
	case "active":
		return ColorHealthy
	case "suspended", "locked":
		return ColorDanger
	case "pending":
		return ColorWarning
	default:
		return ColorDefault
	}
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorDanger)
)

// SeverityGlyph returns a marker for an event severity.
func SeverityGlyph(severity string) string {
	switch strings.ToLower(severity) {
	case "critical":
		return "✗"
	case "high":
		return "▲"
	case "medium":
		return "●"
	case "low":
		return "○"
	default:
		return "·"
	}
}
