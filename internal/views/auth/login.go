package auth

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/warden/console/internal/theme"
	"github.com/warden/console/internal/validate"
)

// LoginSubmittedMsg reports an accepted login; the parent records At as the
// last login time.
type LoginSubmittedMsg struct {
	Email string
	At    time.Time
}

const (
	loginEmail = iota
	loginPassword
	loginFieldCount
)

// Login is the login form.
type Login struct {
	keys   KeyMap
	inputs [loginFieldCount]textinput.Model
	focus  int
	shown  bool

	// LastLogin is shown under the form when set.
	LastLogin time.Time

	now func() time.Time
}

// NewLogin returns an empty login form focused on the email.
func NewLogin() Login {
	l := Login{
		keys: DefaultKeyMap(),
		inputs: [loginFieldCount]textinput.Model{
			newInput("you@example.com", false),
			newInput("Password", true),
		},
		now: time.Now,
	}
	l.inputs[loginEmail].Focus()
	return l
}

// Init starts the cursor blink.
func (l Login) Init() tea.Cmd { return textinput.Blink }

// Update handles input for the form.
func (l Login) Update(msg tea.Msg) (Login, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		l.inputs[l.focus], cmd = l.inputs[l.focus].Update(msg)
		return l, cmd
	}
	switch {
	case key.Matches(keyMsg, l.keys.Submit):
		return l.submit()
	case key.Matches(keyMsg, l.keys.Next):
		return l, l.setFocus((l.focus + 1) % loginFieldCount)
	case key.Matches(keyMsg, l.keys.Prev):
		return l, l.setFocus((l.focus - 1 + loginFieldCount) % loginFieldCount)
	case key.Matches(keyMsg, l.keys.ShowSecret):
		l.shown = !l.shown
		setSecretVisible(l.shown, &l.inputs[loginPassword])
		return l, nil
	}
	var cmd tea.Cmd
	l.inputs[l.focus], cmd = l.inputs[l.focus].Update(keyMsg)
	return l, cmd
}

func (l *Login) setFocus(idx int) tea.Cmd {
	l.focus = idx
	return focusOnly(idx, []*textinput.Model{&l.inputs[loginEmail], &l.inputs[loginPassword]})
}

func (l Login) submit() (Login, tea.Cmd) {
	email, password := l.inputs[loginEmail].Value(), l.inputs[loginPassword].Value()
	if err := validate.ValidateLogin(email, password); err != nil {
		return l, alert(err.Error())
	}
	at := l.now()
	l.LastLogin = at
	for i := range l.inputs {
		l.inputs[i].Reset()
	}
	cmd := l.setFocus(loginEmail)
	email = strings.TrimSpace(email)
	return l, tea.Batch(
		cmd,
		alert(validate.MsgLoginOK),
		func() tea.Msg { return LoginSubmittedMsg{Email: email, At: at} },
	)
}

// View renders the form.
func (l Login) View() string {
	var b strings.Builder
	b.WriteString(theme.StyleHeader.Render("Sign in") + "\n\n")
	b.WriteString(label("Email", l.focus == loginEmail) + "\n")
	b.WriteString(l.inputs[loginEmail].View() + "\n\n")
	b.WriteString(label("Password", l.focus == loginPassword) + "\n")
	b.WriteString(l.inputs[loginPassword].View() + "\n\n")
	if !l.LastLogin.IsZero() {
		b.WriteString(theme.StyleDimmed.Render("Last login: "+l.LastLogin.Local().Format("Jan 2, 2006 3:04 PM")+" ("+humanize.Time(l.LastLogin)+")") + "\n\n")
	}
	b.WriteString(theme.StyleDimmed.Render("tab: next  ctrl+t: show password  enter: sign in  ctrl+r: register"))
	return styleForm.Render(b.String())
}
