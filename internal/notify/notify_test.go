package notify

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestPushAndDismiss(t *testing.T) {
	p := NewPresenter()
	if cmd := p.Success("User role updated successfully"); cmd == nil {
		t.Fatal("Push should return an auto-hide command")
	}
	p.Error("Failed to update user role")

	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}
	first := p.Toasts[0]
	if first.Level != LevelSuccess || first.ID == uuid.Nil {
		t.Errorf("unexpected toast: %+v", first)
	}
	if first.ID == p.Toasts[1].ID {
		t.Error("toast IDs should be unique")
	}

	if !p.Dismiss(first.ID) {
		t.Error("Dismiss of a visible toast should report true")
	}
	if p.Dismiss(first.ID) {
		t.Error("second Dismiss should be a no-op")
	}
	if p.Len() != 1 || p.Toasts[0].Level != LevelError {
		t.Errorf("remaining toasts = %+v", p.Toasts)
	}
}

func TestDismissNewest(t *testing.T) {
	p := NewPresenter()
	if p.DismissNewest() {
		t.Error("DismissNewest on empty stack should report false")
	}
	p.Info("a")
	p.Warning("b")
	p.DismissNewest()
	if p.Len() != 1 || p.Toasts[0].Text != "a" {
		t.Errorf("toasts = %+v, want only a", p.Toasts)
	}
}

func TestAutoHideCommand(t *testing.T) {
	p := NewPresenter()
	p.TTL = time.Millisecond
	cmd := p.Info("bye")

	msg, ok := cmd().(DismissMsg)
	if !ok {
		t.Fatalf("cmd() = %T, want DismissMsg", msg)
	}
	if msg.ID != p.Toasts[0].ID {
		t.Error("DismissMsg should carry the pushed toast's ID")
	}
	p.Dismiss(msg.ID)
	if p.Len() != 0 {
		t.Error("toast should be gone after its dismiss fires")
	}
}

func TestNoStackLimit(t *testing.T) {
	p := NewPresenter()
	for i := 0; i < 50; i++ {
		p.Info("x")
	}
	if p.Len() != 50 {
		t.Errorf("Len() = %d, want 50", p.Len())
	}
}

func TestModals(t *testing.T) {
	a := Alert("Please fill in all fields.")
	if a.Kind != ModalAlert || a.Text == "" {
		t.Errorf("Alert() = %+v", a)
	}
	c := Confirm("Are you sure?", 42)
	if c.Kind != ModalConfirm || c.OnConfirm != 42 {
		t.Errorf("Confirm() = %+v", c)
	}
}
