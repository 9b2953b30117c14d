// Package notify holds the toast stack and the blocking alert/confirm
// modals. It owns no goroutines; auto-hide is a tea.Tick that reports back
// through Update.
package notify

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// DefaultTTL is how long a toast stays up unless dismissed.
const DefaultTTL = 5 * time.Second

// Level is a toast severity.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Toast is one transient notification.
type Toast struct {
	ID        uuid.UUID
	Text      string
	Level     Level
	CreatedAt time.Time
}

// DismissMsg asks the presenter to remove a toast.
type DismissMsg struct{ ID uuid.UUID }

// Presenter is the toast stack, oldest first.
type Presenter struct {
	Toasts []Toast
	TTL    time.Duration

	now func() time.Time
}

// NewPresenter returns an empty stack using DefaultTTL.
func NewPresenter() Presenter {
	return Presenter{TTL: DefaultTTL, now: time.Now}
}

// Push shows a toast and returns the command that hides it after TTL.
func (p *Presenter) Push(text string, level Level) tea.Cmd {
	now := time.Now
	if p.now != nil {
		now = p.now
	}
	t := Toast{ID: uuid.New(), Text: text, Level: level, CreatedAt: now()}
	p.Toasts = append(p.Toasts, t)

	ttl := p.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	id := t.ID
	return tea.Tick(ttl, func(time.Time) tea.Msg { return DismissMsg{ID: id} })
}

// Info, Success, Warning and Error are shorthands for Push.
func (p *Presenter) Info(text string) tea.Cmd    { return p.Push(text, LevelInfo) }
func (p *Presenter) Success(text string) tea.Cmd { return p.Push(text, LevelSuccess) }
func (p *Presenter) Warning(text string) tea.Cmd { return p.Push(text, LevelWarning) }
func (p *Presenter) Error(text string) tea.Cmd   { return p.Push(text, LevelError) }

// Dismiss removes the toast with id. Unknown ids are ignored, so a timer
// firing after a manual dismiss is harmless.
func (p *Presenter) Dismiss(id uuid.UUID) bool {
	for i, t := range p.Toasts {
		if t.ID == id {
			p.Toasts = append(p.Toasts[:i], p.Toasts[i+1:]...)
			return true
		}
	}
	return false
}

// DismissNewest removes the most recent toast.
func (p *Presenter) DismissNewest() bool {
	if len(p.Toasts) == 0 {
		return false
	}
	p.Toasts = p.Toasts[:len(p.Toasts)-1]
	return true
}

// Len returns the number of visible toasts.
func (p *Presenter) Len() int { return len(p.Toasts) }
