// Package users provides the user management table: search, paging, row
// checkboxes, the per-row role selector and the bulk action selector.
//
// The view never calls the API. Committing a role, applying a bulk action
// or asking for a reload is reported as an intent message for the parent
// to dispatch; results come back through ApplyRoleResult and SetUsers.
package users

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/warden/console/internal/client"
	"github.com/warden/console/internal/theme"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PageSizes are the selectable rows-per-page values.
var PageSizes = []int{5, 10, 15, 20}

const defaultPageSize = 10

// RoleCommitMsg asks the parent to send a role update.
type RoleCommitMsg struct {
	UserID int64
	Role   client.Role
}

// BulkRequestMsg asks the parent to confirm and send a bulk action.
type BulkRequestMsg struct {
	Action  client.BulkAction
	UserIDs []int64
}

// RefreshRequestMsg asks the parent to reload the table.
type RefreshRequestMsg struct{}

// KeyMap holds the table key bindings.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	RoleNext  key.Binding
	RolePrev  key.Binding
	Commit    key.Binding
	BulkCycle key.Binding
	BulkApply key.Binding
	Search    key.Binding
	NextPage  key.Binding
	PrevPage  key.Binding
	PageSize  key.Binding
	Refresh   key.Binding
}

// DefaultKeyMap returns the default table bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "prev user"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next user"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select"),
		),
		RoleNext: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "next role"),
		),
		RolePrev: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "prev role"),
		),
		Commit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply role"),
		),
		BulkCycle: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "bulk action"),
		),
		BulkApply: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "apply bulk"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("]", "pgdown"),
			key.WithHelp("]", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("[", "pgup"),
			key.WithHelp("[", "prev page"),
		),
		PageSize: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "page size"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// Model is the user table.
type Model struct {
	keys KeyMap

	users []client.User // sorted by name
	rows  []int         // indexes into users that pass the search filter

	// pending holds a role picked in the selector but not yet confirmed.
	pending map[int64]client.Role
	// rowErr holds the last failed role update per user.
	rowErr  map[int64]string
	checked map[int64]bool

	cursor   int // index into rows
	page     int
	pageSize int

	bulkIdx int // -1 is the placeholder

	search    textinput.Model
	searching bool

	Loading bool
	LoadErr string
	Width   int
}

// New creates an empty table.
func New() Model {
	ti := textinput.New()
	ti.Placeholder = "Search users..."
	ti.Prompt = "/ "
	ti.CharLimit = 64
	return Model{
		keys:     DefaultKeyMap(),
		pending:  make(map[int64]client.Role),
		rowErr:   make(map[int64]string),
		checked:  make(map[int64]bool),
		pageSize: defaultPageSize,
		bulkIdx:  -1,
		search:   ti,
		Loading:  true,
	}
}

// SetUsers replaces the table contents. Checks, pending roles and errors
// for users that are gone are dropped.
func (m *Model) SetUsers(users []client.User) {
	m.Loading = false
	m.LoadErr = ""
	m.users = append(m.users[:0:0], users...)
	sort.SliceStable(m.users, func(i, j int) bool {
		return strings.ToLower(m.users[i].Name) < strings.ToLower(m.users[j].Name)
	})

	present := make(map[int64]bool, len(m.users))
	for _, u := range m.users {
		present[u.ID] = true
	}
	for id := range m.checked {
		if !present[id] {
			delete(m.checked, id)
		}
	}
	for id := range m.pending {
		if !present[id] {
			delete(m.pending, id)
		}
	}
	for id := range m.rowErr {
		if !present[id] {
			delete(m.rowErr, id)
		}
	}
	m.applyFilter()
}

// SetLoadError records a failed reload; the previous rows stay visible.
func (m *Model) SetLoadError(err error) {
	m.Loading = false
	m.LoadErr = err.Error()
}

// ApplyRoleResult settles a role update. On success the row takes the new
// role; on failure the selector reverts to the confirmed role and the row
// is flagged.
func (m *Model) ApplyRoleResult(userID int64, role client.Role, err error) {
	delete(m.pending, userID)
	if err != nil {
		m.rowErr[userID] = err.Error()
		return
	}
	delete(m.rowErr, userID)
	for i := range m.users {
		if m.users[i].ID == userID {
			m.users[i].Role = role
		}
	}
}

// Users returns the table contents, sorted by name.
func (m Model) Users() []client.User { return m.users }

// Checked returns the IDs of checked rows in table order.
func (m Model) Checked() []int64 {
	var ids []int64
	for _, u := range m.users {
		if m.checked[u.ID] {
			ids = append(ids, u.ID)
		}
	}
	return ids
}

// SelectedRole returns the role shown in the selector for userID.
func (m Model) SelectedRole(userID int64) client.Role {
	if r, ok := m.pending[userID]; ok {
		return r
	}
	for _, u := range m.users {
		if u.ID == userID {
			return u.Role
		}
	}
	return ""
}

// BulkAction returns the selected bulk action, or false for the placeholder.
func (m Model) BulkAction() (client.BulkAction, bool) {
	actions := client.BulkActions()
	if m.bulkIdx < 0 || m.bulkIdx >= len(actions) {
		return client.BulkAction{}, false
	}
	return actions[m.bulkIdx], true
}

// Searching reports whether the search box has focus.
func (m Model) Searching() bool { return m.searching }

// Info returns the pager summary line.
func (m Model) Info() string {
	start, end := m.pageBounds()
	if len(m.rows) == 0 {
		return "Showing 0 to 0 of 0 users"
	}
	return fmt.Sprintf("Showing %d to %d of %d users", start+1, end, len(m.rows))
}

// Update handles key input for the table.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.searching {
		return m.updateSearch(keyMsg)
	}

	switch {
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			m.page = m.cursor / m.pageSize
		}

	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.page = m.cursor / m.pageSize
		}

	case key.Matches(keyMsg, m.keys.Toggle):
		if u, ok := m.current(); ok {
			if m.checked[u.ID] {
				delete(m.checked, u.ID)
			} else {
				m.checked[u.ID] = true
			}
		}

	case key.Matches(keyMsg, m.keys.RoleNext):
		if u, ok := m.current(); ok {
			m.pickRole(u, client.NextRole(m.SelectedRole(u.ID)))
		}

	case key.Matches(keyMsg, m.keys.RolePrev):
		if u, ok := m.current(); ok {
			m.pickRole(u, client.PrevRole(m.SelectedRole(u.ID)))
		}

	case key.Matches(keyMsg, m.keys.Commit):
		u, ok := m.current()
		if !ok {
			break
		}
		role, changed := m.pending[u.ID]
		if !changed {
			break
		}
		return m, emit(RoleCommitMsg{UserID: u.ID, Role: role})

	case key.Matches(keyMsg, m.keys.BulkCycle):
		m.bulkIdx++
		if m.bulkIdx >= len(client.BulkActions()) {
			m.bulkIdx = -1
		}

	case key.Matches(keyMsg, m.keys.BulkApply):
		action, ok := m.BulkAction()
		m.bulkIdx = -1
		ids := m.Checked()
		if !ok || len(ids) == 0 {
			break
		}
		return m, emit(BulkRequestMsg{Action: action, UserIDs: ids})

	case key.Matches(keyMsg, m.keys.Search):
		m.searching = true
		return m, m.search.Focus()

	case key.Matches(keyMsg, m.keys.NextPage):
		if m.page < m.pageCount()-1 {
			m.page++
			m.cursor = m.page * m.pageSize
		}

	case key.Matches(keyMsg, m.keys.PrevPage):
		if m.page > 0 {
			m.page--
			m.cursor = m.page * m.pageSize
		}

	case key.Matches(keyMsg, m.keys.PageSize):
		m.pageSize = nextPageSize(m.pageSize)
		m.page = m.cursor / m.pageSize

	case key.Matches(keyMsg, m.keys.Refresh):
		return m, emit(RefreshRequestMsg{})
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.applyFilter()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *Model) pickRole(u client.User, role client.Role) {
	if role == u.Role {
		delete(m.pending, u.ID)
		return
	}
	m.pending[u.ID] = role
}

func (m Model) current() (client.User, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return client.User{}, false
	}
	return m.users[m.rows[m.cursor]], true
}

func (m *Model) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(m.search.Value()))
	m.rows = m.rows[:0]
	for i, u := range m.users {
		if q == "" || matches(u, q) {
			m.rows = append(m.rows, i)
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.page = m.cursor / m.pageSize
}

func matches(u client.User, q string) bool {
	for _, f := range []string{u.Name, u.Email, string(u.Role), u.Status} {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func (m Model) pageCount() int {
	if len(m.rows) == 0 {
		return 1
	}
	return (len(m.rows) + m.pageSize - 1) / m.pageSize
}

func (m Model) pageBounds() (start, end int) {
	start = m.page * m.pageSize
	if start > len(m.rows) {
		start = len(m.rows)
	}
	end = start + m.pageSize
	if end > len(m.rows) {
		end = len(m.rows)
	}
	return start, end
}

func nextPageSize(cur int) int {
	for i, n := range PageSizes {
		if n == cur {
			return PageSizes[(i+1)%len(PageSizes)]
		}
	}
	return defaultPageSize
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

var titleCase = cases.Title(language.English)

// View renders the table.
func (m Model) View() string {
	width := m.Width
	if width < 60 {
		width = 60
	}

	header := theme.StyleHeader.Render("  Users")
	if m.Loading {
		return lipgloss.JoinVertical(lipgloss.Left, header, theme.StyleDimmed.Render("  Loading users..."))
	}

	dim := lipgloss.NewStyle().Foreground(theme.ColorDimmed)
	colName, colEmail, colRole, colStatus, colActive := 20, 26, 14, 10, 14

	lines := []string{header}
	if m.searching || m.search.Value() != "" {
		lines = append(lines, "  "+m.search.View())
	}
	lines = append(lines,
		dim.Render(fmt.Sprintf("      %-*s %-*s %-*s %-*s %-*s",
			colName, "Name", colEmail, "Email", colRole, "Role", colStatus, "Status", colActive, "Last Active")),
		dim.Render("  "+strings.Repeat("─", min(width-4, colName+colEmail+colRole+colStatus+colActive+10))),
	)

	if len(m.rows) == 0 {
		lines = append(lines, theme.StyleDimmed.Render("  No users found"))
	}

	start, end := m.pageBounds()
	for i := start; i < end; i++ {
		u := m.users[m.rows[i]]
		prefix := "  "
		if i == m.cursor {
			prefix = "> "
		}
		box := "[ ]"
		if m.checked[u.ID] {
			box = "[x]"
		}

		role := m.SelectedRole(u.ID)
		roleStr := string(role)
		if _, pending := m.pending[u.ID]; pending {
			roleStr = "‹" + roleStr + "›*"
		}
		roleStr = lipgloss.NewStyle().Foreground(theme.RoleColor(string(role))).Width(colRole).Render(roleStr)

		active := "never"
		if !u.LastActive.IsZero() {
			active = humanize.Time(u.LastActive)
		}

		nameStyle := lipgloss.NewStyle().Width(colName)
		if i == m.cursor {
			nameStyle = nameStyle.Inherit(theme.StyleSelected)
		}

		line := prefix + box + " " +
			nameStyle.Render(truncate(u.Name, colName-1)) + " " +
			lipgloss.NewStyle().Width(colEmail).Render(truncate(u.Email, colEmail-1)) + " " +
			roleStr + " " +
			lipgloss.NewStyle().Foreground(theme.StatusColor(u.Status)).Width(colStatus).Render(titleCase.String(u.Status)) + " " +
			dim.Width(colActive).Render(active)
		lines = append(lines, line)

		if e, ok := m.rowErr[u.ID]; ok {
			lines = append(lines, theme.StyleError.Render("      ↳ "+truncate(e, width-10)))
		}
	}

	bulk := "Bulk actions…"
	if a, ok := m.BulkAction(); ok {
		bulk = a.Name
	}
	footer := fmt.Sprintf("  %s  ·  %d users per page  ·  page %d/%d  ·  %d selected  ·  bulk: %s",
		m.Info(), m.pageSize, m.page+1, m.pageCount(), len(m.Checked()), bulk)
	lines = append(lines, "", dim.Render(footer))
	if m.LoadErr != "" {
		lines = append(lines, theme.StyleError.Render("  Refresh failed: "+m.LoadErr))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func truncate(s string, max int) string {
	if max < 1 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
