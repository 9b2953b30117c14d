package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/warden/console/internal/admin"
	"github.com/warden/console/internal/client"
	"github.com/warden/console/internal/notify"
	"github.com/warden/console/internal/session"
	"github.com/warden/console/internal/theme"
	"github.com/warden/console/internal/views/auth"
	"github.com/warden/console/internal/views/debug"
	"github.com/warden/console/internal/views/detail"
	"github.com/warden/console/internal/views/events"
	"github.com/warden/console/internal/views/landing"
	"github.com/warden/console/internal/views/monitor"
	"github.com/warden/console/internal/views/status"
	"github.com/warden/console/internal/views/users"
)

// Mode is the top-level screen.
type Mode int

const (
	ModeGate Mode = iota
	ModeAdmin
	ModeLanding
	ModeLogin
	ModeRegister
)

// Tab identifies an admin console tab.
type Tab int

const (
	TabUsers Tab = iota
	TabEvents
	TabMonitor
	TabAudit
)

func (t Tab) String() string {
	switch t {
	case TabUsers:
		return "Users"
	case TabEvents:
		return "Security Events"
	case TabMonitor:
		return "Monitor"
	case TabAudit:
		return "Audit"
	default:
		return "?"
	}
}

// Overlay identifies which panel covers the active screen.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayDetail
	OverlayDebug
)

// MsgDetailFailed is the toast shown when an event detail cannot be loaded.
const MsgDetailFailed = "Failed to load event details"

// gateDoneMsg carries the launch-time admin check result.
type gateDoneMsg struct{ Verdict session.Verdict }

// storedMsg reports a local store write.
type storedMsg struct {
	Op  string
	Err error
}

// Options wires the root model to its collaborators. Nil stream clients are
// skipped; a nil store keeps nothing across runs.
type Options struct {
	HTTP    *client.HTTPClient
	Session *client.Session
	Store   *session.Store

	Events  *client.SSEClient
	Health  *client.WSClient
	Traffic *client.WSClient

	// Start is the first screen. ModeGate runs the admin check.
	Start     Mode
	ToastTTL  time.Duration
	Alert     string
	LastLogin time.Time
}

// Model is the root Bubble Tea model.
type Model struct {
	http    *client.HTTPClient
	sess    *client.Session
	store   *session.Store
	sse     *client.SSEClient
	health  *client.WSClient
	traffic *client.WSClient
	ctx     context.Context
	cancel  context.CancelFunc

	keys   KeyMap
	width  int
	height int

	mode       Mode
	tab        Tab
	superadmin bool
	overlay    Overlay
	modal      *notify.Modal
	alert      string
	lastLogin  time.Time

	dispatcher *admin.Dispatcher
	toasts     notify.Presenter

	// Sub-views.
	spinner   spinner.Model
	statusBar status.Model
	users     users.Model
	events    events.Model
	monitor   monitor.Model
	detail    detail.Model
	debugLog  debug.Model
	landing   landing.Model
	login     auth.Login
	register  auth.Register
}

// New creates the root model.
func New(opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())
	sess := opts.Session
	if sess == nil {
		sess = &client.Session{}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.StyleHeader

	toasts := notify.NewPresenter()
	if opts.ToastTTL > 0 {
		toasts.TTL = opts.ToastTTL
	}

	m := Model{
		http:      opts.HTTP,
		sess:      sess,
		store:     opts.Store,
		sse:       opts.Events,
		health:    opts.Health,
		traffic:   opts.Traffic,
		ctx:       ctx,
		cancel:    cancel,
		keys:      DefaultKeyMap(),
		mode:      opts.Start,
		alert:     opts.Alert,
		lastLogin: opts.LastLogin,
		toasts:    toasts,
		spinner:   sp,
		statusBar: status.New(),
		users:     users.New(),
		events:    events.New(),
		monitor:   monitor.New(),
		debugLog:  debug.New(),
		landing:   landing.New(),
		login:     auth.NewLogin(),
		register:  auth.NewRegister(),
	}
	if opts.HTTP != nil {
		m.dispatcher = admin.NewDispatcher(opts.HTTP)
	}
	m.landing.LastLogin = opts.LastLogin
	m.login.LastLogin = opts.LastLogin
	return m
}

// Mode returns the active screen.
func (m Model) Mode() Mode { return m.mode }

// Audit returns the audit appends issued this session, oldest first.
func (m Model) Audit() []admin.AuditEntry {
	if m.dispatcher == nil {
		return nil
	}
	return m.dispatcher.Audit
}

// Init runs the admin check or focuses the starting form.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.alert != "" {
		text := m.alert
		cmds = append(cmds, func() tea.Msg { return launchAlertMsg{Text: text} })
	}
	switch m.mode {
	case ModeGate:
		cmds = append(cmds, m.spinner.Tick, m.checkGate())
	case ModeLogin:
		cmds = append(cmds, m.login.Init())
	case ModeRegister:
		cmds = append(cmds, m.register.Init())
	}
	return tea.Batch(cmds...)
}

// launchAlertMsg shows the --alert text once the program is running.
type launchAlertMsg struct{ Text string }

func (m Model) checkGate() tea.Cmd {
	ctx, sess := m.ctx, m.sess
	var v session.Verifier
	if m.http != nil {
		v = m.http
	}
	return func() tea.Msg {
		if v == nil {
			return gateDoneMsg{Verdict: session.Verdict{Err: session.ErrAuthorizationDenied}}
		}
		return gateDoneMsg{Verdict: session.NewGate(v, sess).Check(ctx)}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.users.Width = msg.Width
		m.events.Width = msg.Width
		m.events.Height = msg.Height - 8
		m.monitor.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.mode != ModeGate {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case gateDoneMsg:
		return m.applyVerdict(msg.Verdict)

	case launchAlertMsg:
		return m, m.toasts.Warning(msg.Text)

	// --- push channels ---

	case client.StreamConnectedMsg, client.StreamDisconnectedMsg, client.StreamRejectedMsg,
		client.SecurityEventMsg, client.HealthMsg, client.TrafficMsg:
		return m.handleStream(msg)

	// --- admin actions ---

	case users.RoleCommitMsg:
		if m.dispatcher == nil {
			return m, nil
		}
		m.debugLog.Addf(debug.KindAPI, "PUT role user=%d role=%s", msg.UserID, msg.Role)
		return m, m.dispatcher.ChangeRole(m.ctx, msg.UserID, msg.Role)

	case admin.RoleChangedMsg:
		m.users.ApplyRoleResult(msg.UserID, msg.Role, msg.Err)
		if msg.Err != nil {
			m.debugLog.Addf(debug.KindError, "role update user=%d: %v", msg.UserID, msg.Err)
			slog.Error("role update failed", "user", msg.UserID, "role", msg.Role, "err", msg.Err)
		}
		return m, m.applyOutcome(m.dispatcher.AfterRoleChange(m.ctx, msg))

	case users.BulkRequestMsg:
		m.modal = notify.Confirm(admin.ConfirmPrompt(msg.Action.ID, len(msg.UserIDs)), msg)
		return m, nil

	case notify.ModalAnsweredMsg:
		return m.answerModal(msg)

	case admin.BulkResultMsg:
		if msg.Err != nil {
			m.debugLog.Addf(debug.KindError, "bulk %s: %v", msg.Action, msg.Err)
			slog.Error("bulk action failed", "action", msg.Action, "users", msg.UserIDs, "err", msg.Err)
		} else {
			m.debugLog.Addf(debug.KindAPI, "bulk %s ok users=%v", msg.Action, msg.UserIDs)
		}
		return m, m.applyOutcome(m.dispatcher.AfterBulk(m.ctx, msg))

	case users.RefreshRequestMsg:
		if m.dispatcher == nil {
			return m, nil
		}
		return m, m.dispatcher.Refresh(m.ctx)

	case admin.UsersLoadedMsg:
		var cmd tea.Cmd
		if msg.Err != nil {
			m.users.SetLoadError(msg.Err)
			m.debugLog.Addf(debug.KindError, "list users: %v", msg.Err)
			cmd = m.toasts.Error("Failed to load users")
		} else {
			m.users.SetUsers(msg.Users)
			m.statusBar.Users = len(msg.Users)
			m.debugLog.Addf(debug.KindAPI, "loaded %d users", len(msg.Users))
		}
		if m.dispatcher == nil {
			return m, cmd
		}
		return m, tea.Batch(cmd, m.dispatcher.RefreshDone(m.ctx))

	case admin.AuditLoggedMsg:
		if m.dispatcher != nil {
			m.dispatcher.Record(msg.Entry)
		}
		if msg.Entry.Err != nil {
			m.debugLog.Addf(debug.KindError, "audit %q: %v", msg.Entry.Action, msg.Entry.Err)
		} else {
			m.debugLog.Addf(debug.KindAudit, "%s", msg.Entry.Action)
		}
		return m, nil

	case events.DetailRequestMsg:
		m.detail = detail.New(msg.ID)
		m.overlay = OverlayDetail
		return m, m.fetchDetail(msg.ID)

	case detail.LoadedMsg:
		var cmd tea.Cmd
		if msg.Err != nil {
			m.debugLog.Addf(debug.KindError, "event %s: %v", msg.ID, msg.Err)
			slog.Error("event detail failed", "id", msg.ID, "err", msg.Err)
			if msg.ID == m.detail.ID {
				cmd = m.toasts.Error(MsgDetailFailed)
			}
		}
		m.detail.SetResult(msg)
		return m, cmd

	case detail.CopiedMsg:
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd

	// --- notifications ---

	case notify.DismissMsg:
		m.toasts.Dismiss(msg.ID)
		return m, nil

	case auth.AlertMsg:
		m.modal = notify.Alert(msg.Text)
		return m, nil

	case landing.AlertMsg:
		m.modal = notify.Alert(msg.Text)
		return m, nil

	// --- session ---

	case landing.LogoutMsg:
		return m.logout()

	case auth.LoginSubmittedMsg:
		m.lastLogin = msg.At
		m.landing.LastLogin = msg.At
		m.debugLog.Addf(debug.KindAuth, "login submitted for %s", msg.Email)
		return m, m.recordLogin(msg.At)

	case auth.RegisteredMsg:
		m.debugLog.Addf(debug.KindAuth, "registration submitted for %s", msg.Email)
		return m, nil

	case storedMsg:
		if msg.Err != nil {
			m.debugLog.Addf(debug.KindError, "%s: %v", msg.Op, msg.Err)
			slog.Error("store write failed", "op", msg.Op, "err", msg.Err)
		}
		return m, nil
	}

	return m.forward(msg)
}

// forward hands messages the root does not own (cursor blinks, meter
// frames) to the active form.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.mode {
	case ModeLogin:
		m.login, cmd = m.login.Update(msg)
	case ModeRegister:
		m.register, cmd = m.register.Update(msg)
	case ModeAdmin:
		if m.tab == TabUsers {
			m.users, cmd = m.users.Update(msg)
		}
	}
	return m, cmd
}

func (m Model) applyVerdict(v session.Verdict) (tea.Model, tea.Cmd) {
	if !v.Verified {
		slog.Warn("admin check denied", "err", v.Err)
		m.debugLog.Addf(debug.KindAuth, "denied: %v", v.Err)
		m.mode = ModeLanding
		if v.Err != nil {
			m.landing.Reason = v.Err.Error()
		}
		return m, nil
	}

	slog.Info("admin check passed", "role", v.Role)
	m.debugLog.Addf(debug.KindAuth, "verified as %s", v.Role)
	m.mode = ModeAdmin
	m.tab = TabUsers
	m.superadmin = v.Superadmin()
	m.statusBar.Role = v.Role

	cmds := []tea.Cmd{m.startStreams()}
	if m.dispatcher != nil {
		cmds = append(cmds, m.dispatcher.Refresh(m.ctx))
	}
	return m, tea.Batch(cmds...)
}

// applyOutcome shows an action's toast and runs its follow-up.
func (m *Model) applyOutcome(o admin.Outcome) tea.Cmd {
	var toast tea.Cmd
	if o.Success {
		toast = m.toasts.Success(o.Text)
	} else {
		toast = m.toasts.Error(o.Text)
	}
	return tea.Batch(toast, o.Next)
}

func (m Model) answerModal(msg notify.ModalAnsweredMsg) (tea.Model, tea.Cmd) {
	req, ok := msg.Modal.OnConfirm.(users.BulkRequestMsg)
	if !ok || !msg.Confirmed || m.dispatcher == nil {
		return m, nil
	}
	// A refresh may have landed while the prompt was open.
	ids := m.users.Checked()
	if len(ids) == 0 {
		return m, nil
	}
	m.debugLog.Addf(debug.KindAPI, "POST bulk %s users=%v", req.Action.ID, ids)
	return m, m.dispatcher.Bulk(m.ctx, req.Action.ID, ids)
}

func (m Model) fetchDetail(id string) tea.Cmd {
	if m.http == nil {
		return nil
	}
	ctx, h := m.ctx, m.http
	return func() tea.Msg {
		d, err := h.GetSecurityEvent(ctx, id)
		return detail.LoadedMsg{ID: id, Detail: d, Err: err}
	}
}

func (m Model) recordLogin(at time.Time) tea.Cmd {
	if m.store == nil {
		return nil
	}
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return storedMsg{Op: "record login", Err: store.RecordLogin(ctx, at)}
	}
}

// logout clears the credential synchronously, stops every push channel and
// shows the login form.
func (m Model) logout() (tea.Model, tea.Cmd) {
	m.cancel()
	m.stopStreams()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err := session.Logout(ctx, m.store, m.sess)
	cancel()
	if err != nil {
		slog.Error("logout", "err", err)
		m.debugLog.Addf(debug.KindError, "logout: %v", err)
	} else {
		m.debugLog.Add(debug.KindAuth, "logged out")
	}

	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.mode = ModeLogin
	m.overlay = OverlayNone
	m.modal = nil
	m.superadmin = false
	m.statusBar = status.New()
	m.statusBar.Width = m.width
	m.login = auth.NewLogin()
	m.login.LastLogin = m.lastLogin
	return m, m.login.Init()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m.quit()
	}

	if m.modal != nil {
		return m.handleModalKey(msg)
	}

	switch m.overlay {
	case OverlayDetail:
		if key.Matches(msg, m.keys.Escape) {
			m.overlay = OverlayNone
			return m, nil
		}
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd

	case OverlayDebug:
		switch {
		case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Debug):
			m.overlay = OverlayNone
		case key.Matches(msg, m.keys.Up):
			m.debugLog.ScrollUp(1)
		case key.Matches(msg, m.keys.Down):
			m.debugLog.ScrollDown(1)
		case key.Matches(msg, m.keys.Filter):
			m.debugLog.ToggleErrors()
		}
		return m, nil
	}

	switch m.mode {
	case ModeLogin, ModeRegister:
		return m.handleFormKey(msg)
	case ModeGate:
		if key.Matches(msg, m.keys.Quit) {
			return m.quit()
		}
		return m, nil
	case ModeLanding:
		return m.handleLandingKey(msg)
	}
	return m.handleAdminKey(msg)
}

func (m Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	modal := *m.modal
	answer := func(confirmed bool) (tea.Model, tea.Cmd) {
		m.modal = nil
		return m, func() tea.Msg { return notify.ModalAnsweredMsg{Modal: modal, Confirmed: confirmed} }
	}
	if modal.Kind == notify.ModalAlert {
		if key.Matches(msg, m.keys.Confirm) || key.Matches(msg, m.keys.Escape) {
			return answer(true)
		}
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Yes):
		return answer(true)
	case key.Matches(msg, m.keys.No):
		return answer(false)
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		return m.quit()
	case key.Matches(msg, m.keys.SwapForm):
		if m.mode == ModeLogin {
			m.mode = ModeRegister
			m.register = auth.NewRegister()
			return m, m.register.Init()
		}
		m.mode = ModeLogin
		m.login = auth.NewLogin()
		m.login.LastLogin = m.lastLogin
		return m, m.login.Init()
	}
	var cmd tea.Cmd
	if m.mode == ModeLogin {
		m.login, cmd = m.login.Update(msg)
	} else {
		m.register, cmd = m.register.Update(msg)
	}
	return m, cmd
}

func (m Model) handleLandingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Dismiss):
		m.toasts.DismissNewest()
		return m, nil
	case key.Matches(msg, m.keys.Debug):
		m.overlay = OverlayDebug
		return m, nil
	}
	var cmd tea.Cmd
	m.landing, cmd = m.landing.Update(msg)
	return m, cmd
}

func (m Model) handleAdminKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.tab == TabUsers && m.users.Searching() {
		var cmd tea.Cmd
		m.users, cmd = m.users.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Logout):
		return m.logout()
	case key.Matches(msg, m.keys.Dismiss):
		m.toasts.DismissNewest()
		return m, nil
	case key.Matches(msg, m.keys.Debug):
		m.overlay = OverlayDebug
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		m.tab = m.stepTab(1)
		return m, nil
	case key.Matches(msg, m.keys.ShiftTab):
		m.tab = m.stepTab(-1)
		return m, nil
	case key.Matches(msg, m.keys.Tab1):
		m.tab = TabUsers
		return m, nil
	case key.Matches(msg, m.keys.Tab2):
		m.tab = TabEvents
		return m, nil
	case key.Matches(msg, m.keys.Tab3):
		m.tab = TabMonitor
		return m, nil
	case key.Matches(msg, m.keys.Tab4):
		if m.superadmin {
			m.tab = TabAudit
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.tab {
	case TabUsers:
		m.users, cmd = m.users.Update(msg)
	case TabEvents:
		m.events, cmd = m.events.Update(msg)
	}
	return m, cmd
}

// tabs returns the tabs visible to the current role.
func (m Model) tabs() []Tab {
	if m.superadmin {
		return []Tab{TabUsers, TabEvents, TabMonitor, TabAudit}
	}
	return []Tab{TabUsers, TabEvents, TabMonitor}
}

func (m Model) stepTab(delta int) Tab {
	tabs := m.tabs()
	for i, t := range tabs {
		if t == m.tab {
			return tabs[(i+delta+len(tabs))%len(tabs)]
		}
	}
	return tabs[0]
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	m.stopStreams()
	return m, tea.Quit
}
