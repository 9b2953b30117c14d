// Package admin turns operator actions (role change, bulk action, refresh)
// into API calls and decides what the UI shows when each one completes.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/warden/console/internal/client"
)

// Toast texts.
const (
	MsgRoleUpdated    = "User role updated successfully"
	MsgRoleUpdateFail = "Failed to update user role"
	bulkConfirmFormat = "Are you sure you want to %s %d users?"
	bulkDoneFormat    = "Bulk %s completed for %d users"
	bulkFailFormat    = "Bulk %s failed"
	auditRoleFormat   = "Changed role for user %d to %s"
	auditBulkFormat   = "Performed %s on %d users"
	maxAuditEntries   = 200
)

// API is the subset of the admin REST client the dispatcher calls.
type API interface {
	ListUsers(ctx context.Context) ([]client.User, error)
	UpdateUserRole(ctx context.Context, userID int64, role client.Role) error
	BulkAction(ctx context.Context, action string, userIDs []int64) error
	AppendAuditLog(ctx context.Context, action string) error
}

// RoleChangedMsg reports the result of a role update.
type RoleChangedMsg struct {
	UserID int64
	Role   client.Role
	Err    error
}

// BulkResultMsg reports the result of a bulk action.
type BulkResultMsg struct {
	Action  string
	UserIDs []int64
	Err     error
}

// UsersLoadedMsg carries a refreshed user list.
type UsersLoadedMsg struct {
	Users []client.User
	Err   error
}

// AuditLoggedMsg reports an audit append. Failures are informational only.
type AuditLoggedMsg struct {
	Entry AuditEntry
}

// AuditEntry is one audit append issued by this console.
type AuditEntry struct {
	Action string
	At     time.Time
	Err    error
}

// Outcome is what the UI does once an action completes: show Text as a
// success or error toast, then run Next (audit append, refresh) if set.
type Outcome struct {
	Text    string
	Success bool
	Next    tea.Cmd
}

// Dispatcher issues admin API calls. It must only be used from the Bubble
// Tea update loop; the commands it returns run elsewhere.
type Dispatcher struct {
	api API

	refreshing     bool
	refreshPending bool

	// Audit is the local record of audit appends, oldest first.
	Audit []AuditEntry

	now func() time.Time
}

// NewDispatcher creates a dispatcher over api.
func NewDispatcher(api API) *Dispatcher {
	return &Dispatcher{api: api, now: time.Now}
}

// ConfirmPrompt is the question asked before a bulk action.
func ConfirmPrompt(action string, n int) string {
	return fmt.Sprintf(bulkConfirmFormat, action, n)
}

// ChangeRole returns a command that sends the role update.
func (d *Dispatcher) ChangeRole(ctx context.Context, userID int64, role client.Role) tea.Cmd {
	return func() tea.Msg {
		err := d.api.UpdateUserRole(ctx, userID, role)
		if err != nil {
			slog.Warn("role update failed", "user", userID, "role", role, "err", err)
		}
		return RoleChangedMsg{UserID: userID, Role: role, Err: err}
	}
}

// Bulk returns a command that sends one bulk-action request for ids. An empty
// selection or action yields nil and sends nothing.
func (d *Dispatcher) Bulk(ctx context.Context, action string, ids []int64) tea.Cmd {
	if action == "" || len(ids) == 0 {
		return nil
	}
	sent := append([]int64(nil), ids...)
	return func() tea.Msg {
		err := d.api.BulkAction(ctx, action, sent)
		if err != nil {
			slog.Warn("bulk action failed", "action", action, "count", len(sent), "err", err)
		}
		return BulkResultMsg{Action: action, UserIDs: sent, Err: err}
	}
}

// Log returns a fire-and-forget audit append.
func (d *Dispatcher) Log(ctx context.Context, action string) tea.Cmd {
	at := d.now()
	return func() tea.Msg {
		err := d.api.AppendAuditLog(ctx, action)
		if err != nil {
			slog.Debug("audit append failed", "action", action, "err", err)
		}
		return AuditLoggedMsg{Entry: AuditEntry{Action: action, At: at, Err: err}}
	}
}

// Record appends an audit result to the local list.
func (d *Dispatcher) Record(e AuditEntry) {
	d.Audit = append(d.Audit, e)
	if len(d.Audit) > maxAuditEntries {
		d.Audit = d.Audit[len(d.Audit)-maxAuditEntries:]
	}
}

// Refresh requests a user list reload. While one is in flight the request is
// coalesced into a single follow-up and nil is returned.
func (d *Dispatcher) Refresh(ctx context.Context) tea.Cmd {
	if d.refreshing {
		d.refreshPending = true
		return nil
	}
	d.refreshing = true
	return func() tea.Msg {
		users, err := d.api.ListUsers(ctx)
		return UsersLoadedMsg{Users: users, Err: err}
	}
}

// Refreshing reports whether a reload is in flight.
func (d *Dispatcher) Refreshing() bool { return d.refreshing }

// RefreshDone marks the in-flight reload finished and returns the coalesced
// follow-up, if one was requested.
func (d *Dispatcher) RefreshDone(ctx context.Context) tea.Cmd {
	d.refreshing = false
	if !d.refreshPending {
		return nil
	}
	d.refreshPending = false
	return d.Refresh(ctx)
}

// AfterRoleChange decides the toast and follow-up for a role update.
func (d *Dispatcher) AfterRoleChange(ctx context.Context, msg RoleChangedMsg) Outcome {
	if msg.Err != nil {
		return Outcome{Text: MsgRoleUpdateFail}
	}
	return Outcome{
		Text:    MsgRoleUpdated,
		Success: true,
		Next:    d.Log(ctx, fmt.Sprintf(auditRoleFormat, msg.UserID, msg.Role)),
	}
}

// AfterBulk decides the toast and follow-up for a bulk action. Success logs
// the action and reloads the table.
func (d *Dispatcher) AfterBulk(ctx context.Context, msg BulkResultMsg) Outcome {
	if msg.Err != nil {
		return Outcome{Text: fmt.Sprintf(bulkFailFormat, msg.Action)}
	}
	n := len(msg.UserIDs)
	return Outcome{
		Text:    fmt.Sprintf(bulkDoneFormat, msg.Action, n),
		Success: true,
		Next:    tea.Batch(d.Log(ctx, fmt.Sprintf(auditBulkFormat, msg.Action, n)), d.Refresh(ctx)),
	}
}
