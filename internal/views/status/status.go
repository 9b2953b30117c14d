package status

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/warden/console/internal/client"
	"github.com/warden/console/internal/theme"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ChannelState is the connection state of one push channel.
type ChannelState int

const (
	ChannelIdle ChannelState = iota
	ChannelConnecting
	ChannelConnected
	ChannelFailed
)

var upper = cases.Upper(language.Und)

// channelOrder is the display order of the push channels.
var channelOrder = []struct {
	kind  client.StreamKind
	label string
}{
	{client.KindSecurityEvent, "events"},
	{client.KindHealthMetric, "health"},
	{client.KindTrafficSample, "traffic"},
}

// Model holds the status bar state.
type Model struct {
	Role     client.Role
	Channels map[client.StreamKind]ChannelState
	Users    int
	Events   int
	Rejected int
	Width    int
}

// New creates a status bar model.
func New() Model {
	return Model{Channels: make(map[client.StreamKind]ChannelState)}
}

// Set records a channel state.
func (m *Model) Set(kind client.StreamKind, s ChannelState) {
	m.Channels[kind] = s
}

// RoleBadge returns the upper-cased role label.
func RoleBadge(r client.Role) string {
	if r == "" {
		return ""
	}
	return upper.String(string(r))
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	badge := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorBg).
		Background(theme.RoleColor(string(m.Role))).
		Padding(0, 1).
		Render(RoleBadge(m.Role))

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := theme.StyleHeader.Render("WARDEN") + " " + badge

	for _, ch := range channelOrder {
		var glyph string
		var color lipgloss.Color
		switch m.Channels[ch.kind] {
		case ChannelConnected:
			glyph, color = "●", theme.ColorHealthy
		case ChannelConnecting:
			glyph, color = "○", theme.ColorWarning
		case ChannelFailed:
			glyph, color = "✗", theme.ColorDanger
		default:
			glyph, color = "·", theme.ColorDimmed
		}
		content += sep + lipgloss.NewStyle().Foreground(color).Render(glyph+" "+ch.label)
	}

	content += sep + fmt.Sprintf("%d users  %d events", m.Users, m.Events)
	if m.Rejected > 0 {
		content += sep + lipgloss.NewStyle().Foreground(theme.ColorWarning).Render(fmt.Sprintf("%d rejected", m.Rejected))
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}
