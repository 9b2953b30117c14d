// Package detail renders the security event detail modal.
package detail

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/warden/console/internal/client"
	"github.com/warden/console/internal/theme"
)

const panelWidth = 72

var (
	stylePanel = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.ColorCritical).
			Padding(0, 1)

	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorBright)

	styleFooter = lipgloss.NewStyle().
			Foreground(theme.ColorDimmed)
)

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// LoadedMsg carries the result of a detail fetch.
type LoadedMsg struct {
	ID     string
	Detail *client.EventDetail
	Err    error
}

// CopiedMsg reports the result of copying the event ID.
type CopiedMsg struct{ Err error }

// Model holds the state for the detail modal.
type Model struct {
	ID       string
	Detail   *client.EventDetail
	Loading  bool
	Err      error
	Status   string
	rendered string

	copyKey key.Binding
}

// New creates a modal waiting for the detail of id.
func New(id string) Model {
	return Model{
		ID:      id,
		Loading: true,
		copyKey: key.NewBinding(key.WithKeys("c", "y"), key.WithHelp("c", "copy id")),
	}
}

// SetResult fills the modal from a fetch result. Results for another
// event are ignored.
func (m *Model) SetResult(msg LoadedMsg) {
	if msg.ID != m.ID {
		return
	}
	m.Loading = false
	m.Err = msg.Err
	m.Detail = msg.Detail
	if msg.Err == nil && msg.Detail != nil {
		m.rendered = render(Markdown(m.ID, msg.Detail), panelWidth-4)
	}
}

// Update handles the copy key and its result.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case CopiedMsg:
		if msg.Err != nil {
			m.Status = "Copy failed: " + msg.Err.Error()
		} else {
			m.Status = "Event ID copied"
		}
	case tea.KeyMsg:
		if key.Matches(msg, m.copyKey) && m.ID != "" {
			id := m.ID
			return m, func() tea.Msg {
				return CopiedMsg{Err: writeClipboard(id)}
			}
		}
	}
	return m, nil
}

// Markdown formats an event detail for rendering.
func Markdown(id string, d *client.EventDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Event #%s\n\n", id)
	fmt.Fprintf(&b, "| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Type | %s |\n", d.Type)
	fmt.Fprintf(&b, "| Severity | **%s** |\n", d.Severity)
	if !d.Timestamp.IsZero() {
		fmt.Fprintf(&b, "| Time | %s |\n", d.Timestamp.Local().Format("Jan 2, 2006 3:04:05 PM"))
	}
	if d.Details != "" {
		fmt.Fprintf(&b, "\n## Details\n\n%s\n", d.Details)
	}
	if len(d.RecommendedActions) > 0 {
		b.WriteString("\n## Recommended actions\n\n")
		for _, a := range d.RecommendedActions {
			fmt.Fprintf(&b, "- %s\n", a)
		}
	}
	return b.String()
}

func render(md string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}

// View renders the modal.
func (m Model) View() string {
	var body string
	switch {
	case m.Loading:
		body = theme.StyleDimmed.Render("Loading event " + m.ID + "...")
	case m.Err != nil:
		body = theme.StyleError.Render("Could not load event: " + m.Err.Error())
	default:
		body = m.rendered
	}

	lines := []string{styleTitle.Render("Event #" + m.ID), body, ""}
	if m.Status != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render(m.Status))
	}
	lines = append(lines, styleFooter.Render("[c] copy id  [esc] close"))
	return stylePanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}
