// Package events provides the live security events table.
package events

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/warden/console/internal/client"
	"github.com/warden/console/internal/theme"
)

// MaxRows bounds the table; the oldest events fall off.
const MaxRows = 200

// SortMode orders the table.
type SortMode int

const (
	SortArrival SortMode = iota
	SortSeverity
	SortType
)

func (s SortMode) String() string {
	switch s {
	case SortSeverity:
		return "severity"
	case SortType:
		return "type"
	default:
		return "arrival"
	}
}

// DetailRequestMsg asks the parent to fetch and show a critical event.
type DetailRequestMsg struct{ ID string }

// Model is the events table. Events are kept newest first.
type Model struct {
	events   []client.SecurityEvent
	order    []int // indexes into events in display order
	cursor   int
	sortMode SortMode
	Rejected int
	Width    int
	Height   int

	up, down, enter, sortKey key.Binding
}

// New creates an empty table.
func New() Model {
	return Model{
		up:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "prev event")),
		down:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "next event")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details (critical)")),
		sortKey: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
	}
}

// Add inserts ev at the top and drops the oldest event past MaxRows.
func (m *Model) Add(ev client.SecurityEvent) {
	m.events = append([]client.SecurityEvent{ev}, m.events...)
	if len(m.events) > MaxRows {
		m.events = m.events[:MaxRows]
	}
	// Keep the cursor on the same row while new rows arrive above it.
	if m.sortMode == SortArrival && m.cursor > 0 {
		m.cursor++
	}
	m.resort()
}

// Events returns the stored events, newest first.
func (m Model) Events() []client.SecurityEvent { return m.events }

// Len returns the number of stored events.
func (m Model) Len() int { return len(m.events) }

// Visible returns the events in display order.
func (m Model) Visible() []client.SecurityEvent {
	out := make([]client.SecurityEvent, len(m.order))
	for i, idx := range m.order {
		out[i] = m.events[idx]
	}
	return out
}

// Sort returns the active sort mode.
func (m Model) Sort() SortMode { return m.sortMode }

// Update handles navigation, sorting and detail requests.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.down):
		if m.cursor < len(m.order)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.sortKey):
		m.sortMode = (m.sortMode + 1) % 3
		m.cursor = 0
		m.resort()
	case key.Matches(keyMsg, m.enter):
		if m.cursor >= len(m.order) {
			break
		}
		ev := m.events[m.order[m.cursor]]
		if !ev.Severity.Critical() {
			break
		}
		id := ev.ID
		return m, func() tea.Msg { return DetailRequestMsg{ID: id} }
	}
	return m, nil
}

func (m *Model) resort() {
	m.order = make([]int, len(m.events))
	for i := range m.order {
		m.order[i] = i
	}
	switch m.sortMode {
	case SortSeverity:
		sort.SliceStable(m.order, func(i, j int) bool {
			return m.events[m.order[i]].Severity.Rank() > m.events[m.order[j]].Severity.Rank()
		})
	case SortType:
		sort.SliceStable(m.order, func(i, j int) bool {
			return m.events[m.order[i]].Type < m.events[m.order[j]].Type
		})
	}
	if m.cursor >= len(m.order) {
		m.cursor = max(len(m.order)-1, 0)
	}
}

// View renders the table.
func (m Model) View() string {
	width := m.Width
	if width < 60 {
		width = 60
	}
	rowsVisible := m.Height - 4
	if rowsVisible < 5 {
		rowsVisible = 5
	}

	title := theme.StyleHeader.Render(fmt.Sprintf("  Security Events (%d)", len(m.events)))
	meta := theme.StyleDimmed.Render(fmt.Sprintf("  sort: %s  ·  rejected: %d", m.sortMode, m.Rejected))
	if len(m.events) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, meta, theme.StyleDimmed.Render("  Waiting for events..."))
	}

	dim := lipgloss.NewStyle().Foreground(theme.ColorDimmed)
	colTime, colSev, colType, colSrc := 10, 11, 22, 16
	lines := []string{
		title, meta,
		dim.Render(fmt.Sprintf("    %-*s %-*s %-*s %-*s %s", colTime, "Time", colSev, "Severity", colType, "Type", colSrc, "Source", "Message")),
	}

	start := 0
	if m.cursor >= rowsVisible {
		start = m.cursor - rowsVisible + 1
	}
	end := min(start+rowsVisible, len(m.order))
	for i := start; i < end; i++ {
		ev := m.events[m.order[i]]
		prefix := "  "
		if i == m.cursor {
			prefix = "> "
		}
		ts := ev.Timestamp
		if ts.IsZero() {
			ts = ev.ReceivedAt
		}
		sevColor := theme.SeverityColor(string(ev.Severity))
		sev := lipgloss.NewStyle().Foreground(sevColor).Bold(ev.Severity.Critical()).Width(colSev).
			Render(theme.SeverityGlyph(string(ev.Severity)) + " " + strings.ToLower(string(ev.Severity)))
		msgWidth := width - colTime - colSev - colType - colSrc - 10
		line := prefix + "  " +
			dim.Width(colTime).Render(ts.Format("15:04:05")) + " " +
			sev + " " +
			lipgloss.NewStyle().Width(colType).Render(truncate(ev.Type, colType-1)) + " " +
			dim.Width(colSrc).Render(truncate(ev.Source, colSrc-1)) + " " +
			truncate(ev.Message, msgWidth)
		lines = append(lines, line)
	}
	if len(m.events) > 0 {
		newest := m.events[0].ReceivedAt
		if !newest.IsZero() {
			lines = append(lines, dim.Render("  last event "+humanize.Time(newest)))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func truncate(s string, n int) string {
	if n < 1 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
