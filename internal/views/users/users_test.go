package users

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/warden/console/internal/client"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, keys ...string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		m, cmd = m.Update(keyMsg(k))
	}
	return m, cmd
}

func sampleUsers() []client.User {
	return []client.User{
		{ID: 7, Name: "Carol", Email: "carol@example.com", Role: client.RoleUser, Status: "active"},
		{ID: 3, Name: "alice", Email: "alice@example.com", Role: client.RoleAdmin, Status: "active"},
		{ID: 9, Name: "Bob", Email: "bob@example.com", Role: client.RoleUser, Status: "suspended"},
	}
}

func TestSetUsersSortsByName(t *testing.T) {
	m := New()
	m.SetUsers(sampleUsers())
	var names []string
	for _, u := range m.Users() {
		names = append(names, u.Name)
	}
	if want := []string{"alice", "Bob", "Carol"}; !reflect.DeepEqual(names, want) {
		t.Errorf("order = %v, want %v", names, want)
	}
	if m.Loading {
		t.Error("Loading should be cleared")
	}
}

func TestInfoAndPaging(t *testing.T) {
	var many []client.User
	for i := 1; i <= 23; i++ {
		many = append(many, client.User{ID: int64(i), Name: fmt.Sprintf("user%02d", i)})
	}
	m := New()
	m.SetUsers(many)
	if got := m.Info(); got != "Showing 1 to 10 of 23 users" {
		t.Errorf("Info() = %q", got)
	}

	m, _ = press(m, "]", "]")
	if got := m.Info(); got != "Showing 21 to 23 of 23 users" {
		t.Errorf("Info() on last page = %q", got)
	}
	m, _ = press(m, "]")
	if got := m.Info(); got != "Showing 21 to 23 of 23 users" {
		t.Errorf("paging past the end should stay, got %q", got)
	}

	// 10 -> 15 rows per page.
	m, _ = press(m, "[", "[", "p")
	if got := m.Info(); got != "Showing 1 to 15 of 23 users" {
		t.Errorf("Info() after page size change = %q", got)
	}
	if nextPageSize(20) != 5 {
		t.Error("page size should wrap from 20 to 5")
	}
}

func TestSearch(t *testing.T) {
	m := New()
	m.SetUsers(sampleUsers())

	m, _ = press(m, "/", "b", "o", "b", "enter")
	if m.Searching() {
		t.Error("enter should leave search mode")
	}
	if got := m.Info(); got != "Showing 1 to 1 of 1 users" {
		t.Errorf("Info() = %q", got)
	}

	m, _ = press(m, "/", "z", "z")
	if !strings.Contains(m.View(), "No users found") {
		t.Error("empty result should show 'No users found'")
	}
	if got := m.Info(); got != "Showing 0 to 0 of 0 users" {
		t.Errorf("Info() = %q", got)
	}

	m, _ = press(m, "esc")
	if got := m.Info(); got != "Showing 1 to 3 of 3 users" {
		t.Errorf("esc should clear the search, Info() = %q", got)
	}
}

func TestBulkRequest(t *testing.T) {
	m := New()
	m.SetUsers(sampleUsers())

	// Check alice (3) and Carol (7).
	m, _ = press(m, " ", "j", "j", " ")
	if want := []int64{3, 7}; !reflect.DeepEqual(m.Checked(), want) {
		t.Fatalf("Checked() = %v, want %v", m.Checked(), want)
	}

	// Placeholder -> activate -> suspend.
	m, _ = press(m, "b", "b")
	if a, ok := m.BulkAction(); !ok || a.ID != "suspend" {
		t.Fatalf("BulkAction() = %+v %v, want suspend", a, ok)
	}

	m, cmd := press(m, "A")
	if cmd == nil {
		t.Fatal("applying a bulk action should emit a request")
	}
	req, ok := cmd().(BulkRequestMsg)
	if !ok {
		t.Fatalf("cmd() = %T, want BulkRequestMsg", cmd())
	}
	if req.Action.ID != "suspend" || !reflect.DeepEqual(req.UserIDs, []int64{3, 7}) {
		t.Errorf("request = %+v", req)
	}
	if _, ok := m.BulkAction(); ok {
		t.Error("selector should reset to the placeholder")
	}
}

func TestBulkWithoutSelectionResets(t *testing.T) {
	m := New()
	m.SetUsers(sampleUsers())
	m, cmd := press(m, "b", "A")
	if cmd != nil {
		t.Error("no checked rows should not emit a request")
	}
	if _, ok := m.BulkAction(); ok {
		t.Error("selector should reset even when nothing is sent")
	}

	m, cmd = press(m, " ", "A")
	if cmd != nil {
		t.Error("placeholder action should not emit a request")
	}
}

func TestRoleCommitAndRevert(t *testing.T) {
	m := New()
	m.SetUsers(sampleUsers())

	// Cursor on alice (admin): next role is superadmin.
	m, _ = press(m, "l")
	if got := m.SelectedRole(3); got != client.RoleSuperadmin {
		t.Fatalf("SelectedRole = %q, want superadmin", got)
	}
	m, cmd := press(m, "enter")
	commit, ok := cmd().(RoleCommitMsg)
	if !ok || commit.UserID != 3 || commit.Role != client.RoleSuperadmin {
		t.Fatalf("commit = %+v", commit)
	}

	m.ApplyRoleResult(3, client.RoleSuperadmin, errors.New("HTTP 500"))
	if got := m.SelectedRole(3); got != client.RoleAdmin {
		t.Errorf("failed update should revert selector, got %q", got)
	}
	if !strings.Contains(m.View(), "HTTP 500") {
		t.Error("failed row should show its error")
	}

	m, _ = press(m, "l", "enter")
	m.ApplyRoleResult(3, client.RoleSuperadmin, nil)
	if m.Users()[0].Role != client.RoleSuperadmin {
		t.Errorf("role = %q, want superadmin", m.Users()[0].Role)
	}
	if strings.Contains(m.View(), "HTTP 500") {
		t.Error("success should clear the row error")
	}
}

func TestCommitWithoutChangeIsNoop(t *testing.T) {
	m := New()
	m.SetUsers(sampleUsers())
	if _, cmd := press(m, "enter"); cmd != nil {
		t.Error("enter without a role change should do nothing")
	}
	// Cycling all the way round returns to the confirmed role.
	m, _ = press(m, "l", "l", "l")
	if _, cmd := press(m, "enter"); cmd != nil {
		t.Error("selector back on the confirmed role should not commit")
	}
}

func TestSetUsersDropsStaleState(t *testing.T) {
	m := New()
	m.SetUsers(sampleUsers())
	m, _ = press(m, " ")
	m.SetUsers(sampleUsers()[:1]) // only Carol remains
	if len(m.Checked()) != 0 {
		t.Errorf("Checked() = %v, want none", m.Checked())
	}
}

func TestRefreshRequest(t *testing.T) {
	m := New()
	_, cmd := press(m, "r")
	if _, ok := cmd().(RefreshRequestMsg); !ok {
		t.Error("r should request a refresh")
	}
}
