// Package monitor renders the system health panel and the live traffic
// sparkline.
package monitor

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/warden/console/internal/client"
	"github.com/warden/console/internal/stream"
	"github.com/warden/console/internal/theme"
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// Model holds the merged health fields and the traffic window.
type Model struct {
	health        map[string]string
	healthUpdated time.Time
	traffic       *stream.Rolling
	trafficAt     time.Time
	Width         int
}

// New creates a monitor with an empty health panel and a zeroed window.
func New() Model {
	return Model{
		health:  make(map[string]string),
		traffic: stream.NewRolling(stream.TrafficWindow),
	}
}

// ApplyHealth merges a snapshot into the panel; later values win.
func (m *Model) ApplyHealth(s client.HealthSnapshot) {
	for k, v := range s.Fields {
		m.health[k] = v
	}
	m.healthUpdated = s.ReceivedAt
}

// PushTraffic appends a sample to the window.
func (m *Model) PushTraffic(s client.TrafficSample) {
	m.traffic.Push(s.RequestsPerSecond)
	m.trafficAt = s.ReceivedAt
}

// Health returns the merged panel fields.
func (m Model) Health() map[string]string { return m.health }

// Traffic returns the traffic window, oldest first.
func (m Model) Traffic() []float64 { return m.traffic.Values() }

// View renders both panels side by side.
func (m Model) View() string {
	width := m.Width
	if width < 60 {
		width = 60
	}
	half := width/2 - 2
	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderHealth(half),
		m.renderTraffic(width-half-2),
	)
}

func (m Model) renderHealth(width int) string {
	lines := []string{theme.StyleHeader.Render("System Health")}
	if len(m.health) == 0 {
		lines = append(lines, theme.StyleDimmed.Render("No health data yet"))
	} else {
		keys := make([]string, 0, len(m.health))
		for k := range m.health {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		label := lipgloss.NewStyle().Foreground(theme.ColorDimmed).Width(18)
		for _, k := range keys {
			v := m.health[k]
			lines = append(lines, label.Render(k+":")+lipgloss.NewStyle().Foreground(healthColor(v)).Render(v))
		}
		if !m.healthUpdated.IsZero() {
			lines = append(lines, theme.StyleDimmed.Render("updated "+humanize.Time(m.healthUpdated)))
		}
	}
	return theme.StyleBorder.Width(width).Padding(0, 1).Render(strings.Join(lines, "\n"))
}

func (m Model) renderTraffic(width int) string {
	vals := m.traffic.Values()
	lines := []string{
		theme.StyleHeader.Render("Live Traffic"),
		lipgloss.NewStyle().Foreground(theme.ColorAccent).Render(Sparkline(vals)),
		theme.StyleDimmed.Render(fmt.Sprintf("now %s req/s  ·  peak %s req/s  ·  last %ds",
			humanize.FormatFloat("#,###.#", m.traffic.Last()),
			humanize.FormatFloat("#,###.#", m.traffic.Max()),
			len(vals))),
	}
	return theme.StyleBorder.Width(width).Padding(0, 1).Render(strings.Join(lines, "\n"))
}

// Sparkline renders one rune per value scaled to the window maximum. A
// window of zeros renders as a flat baseline.
func Sparkline(vals []float64) string {
	peak := 0.0
	for _, v := range vals {
		peak = math.Max(peak, v)
	}
	var b strings.Builder
	for _, v := range vals {
		idx := 0
		if peak > 0 {
			idx = int(math.Round(v / peak * float64(len(sparkRunes)-1)))
		}
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}

func healthColor(v string) lipgloss.Color {
	switch strings.ToLower(v) {
	case "ok", "healthy", "up", "true":
		return theme.ColorHealthy
	case "degraded", "warning", "slow":
		return theme.ColorWarning
	case "down", "error", "failed", "false":
		return theme.ColorDanger
	default:
		return theme.ColorBright
	}
}
