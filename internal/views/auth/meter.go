package auth

import (
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/warden/console/internal/theme"
	"github.com/warden/console/internal/validate"
)

const (
	meterWidth = 30
	meterFPS   = 60
)

// meterFrameMsg advances the strength meter animation.
type meterFrameMsg struct{}

// meter is the password strength bar. Its fill follows the score through
// a spring so changes ease in rather than jump.
type meter struct {
	spring    harmonica.Spring
	pos, vel  float64
	target    float64
	score     int
	animating bool
}

func newMeter() meter {
	return meter{spring: harmonica.NewSpring(harmonica.FPS(meterFPS), 6.0, 0.5)}
}

// setScore retargets the bar. It returns a frame command when an animation
// needs to start.
func (m *meter) setScore(score int) tea.Cmd {
	m.score = score
	m.target = float64(score) / 5 * meterWidth
	if m.animating || m.settled() {
		return nil
	}
	m.animating = true
	return frame()
}

// step advances one frame and returns the next frame command, or nil once
// the bar has settled.
func (m *meter) step() tea.Cmd {
	m.pos, m.vel = m.spring.Update(m.pos, m.vel, m.target)
	if m.settled() {
		m.pos, m.vel = m.target, 0
		m.animating = false
		return nil
	}
	return frame()
}

func (m *meter) settled() bool {
	return math.Abs(m.pos-m.target) < 0.01 && math.Abs(m.vel) < 0.01
}

func frame() tea.Cmd {
	return tea.Tick(time.Second/meterFPS, func(time.Time) tea.Msg { return meterFrameMsg{} })
}

func (m meter) view() string {
	filled := int(math.Round(math.Max(0, math.Min(m.pos, meterWidth))))
	bar := lipgloss.NewStyle().Foreground(theme.StrengthColor(m.score)).Render(strings.Repeat("█", filled)) +
		theme.StyleDimmed.Render(strings.Repeat("░", meterWidth-filled))
	return bar + " " + lipgloss.NewStyle().Foreground(theme.StrengthColor(m.score)).Render(validate.Label(m.score))
}
