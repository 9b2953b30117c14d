package detail

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/warden/console/internal/client"
)

func sampleDetail() *client.EventDetail {
	return &client.EventDetail{
		Type:               "brute_force",
		Severity:           client.SeverityCritical,
		Timestamp:          time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Details:            "50 failed logins from 10.0.0.8",
		RecommendedActions: []string{"Lock account", "Notify user"},
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown("42", sampleDetail())
	for _, want := range []string{"# Event #42", "brute_force", "critical", "50 failed logins", "- Lock account", "- Notify user"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestSetResult(t *testing.T) {
	m := New("42")
	if !strings.Contains(m.View(), "Loading event 42") {
		t.Error("new modal should show loading")
	}

	m.SetResult(LoadedMsg{ID: "other", Detail: sampleDetail()})
	if !m.Loading {
		t.Error("result for another event should be ignored")
	}

	m.SetResult(LoadedMsg{ID: "42", Detail: sampleDetail()})
	if m.Loading || m.Detail == nil {
		t.Fatal("modal should hold the detail")
	}
	if !strings.Contains(m.View(), "Lock") {
		t.Error("view should include recommended actions")
	}
}

func TestSetResultError(t *testing.T) {
	m := New("42")
	m.SetResult(LoadedMsg{ID: "42", Err: errors.New("HTTP 404")})
	if !strings.Contains(m.View(), "HTTP 404") {
		t.Error("view should show the fetch error")
	}
}

func TestCopyID(t *testing.T) {
	var copied string
	orig := writeClipboard
	t.Cleanup(func() { writeClipboard = orig })
	writeClipboard = func(s string) error {
		copied = s
		return nil
	}

	m := New("42")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	if cmd == nil {
		t.Fatal("c should copy")
	}
	m, _ = m.Update(cmd())
	if copied != "42" {
		t.Errorf("copied %q, want 42", copied)
	}
	if m.Status != "Event ID copied" {
		t.Errorf("Status = %q", m.Status)
	}
}
