package auth

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/warden/console/internal/theme"
	"github.com/warden/console/internal/validate"
)

// RegisteredMsg reports an accepted registration.
type RegisteredMsg struct{ Name, Email string }

const (
	regName = iota
	regEmail
	regPassword
	regConfirm
	regTerms
	regFieldCount
)

// Register is the registration form.
type Register struct {
	keys   KeyMap
	inputs [4]textinput.Model
	terms  bool
	focus  int
	shown  bool

	form   *validate.FormState
	checks validate.Checks
	meter  meter
}

// NewRegister returns an empty registration form focused on the name.
func NewRegister() Register {
	r := Register{
		keys: DefaultKeyMap(),
		inputs: [4]textinput.Model{
			newInput("Full name", false),
			newInput("you@example.com", false),
			newInput("Password", true),
			newInput("Confirm password", true),
		},
		form:  validate.NewFormState(validate.FieldName, validate.FieldEmail, validate.FieldPassword, validate.FieldConfirmation),
		meter: newMeter(),
	}
	r.inputs[regName].Focus()
	return r
}

var regFields = [4]string{validate.FieldName, validate.FieldEmail, validate.FieldPassword, validate.FieldConfirmation}

// Init starts the cursor blink.
func (r Register) Init() tea.Cmd { return textinput.Blink }

// Checks returns the current password predicates.
func (r Register) Checks() validate.Checks { return r.checks }

// Mismatch reports whether the confirmation differs from the password.
func (r Register) Mismatch() bool { return r.form.Mismatch() }

// Update handles input for the form.
func (r Register) Update(msg tea.Msg) (Register, tea.Cmd) {
	switch msg := msg.(type) {
	case meterFrameMsg:
		return r, r.meter.step()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, r.keys.Submit):
			return r.submit()
		case key.Matches(msg, r.keys.Next):
			return r, r.setFocus((r.focus + 1) % regFieldCount)
		case key.Matches(msg, r.keys.Prev):
			return r, r.setFocus((r.focus - 1 + regFieldCount) % regFieldCount)
		case key.Matches(msg, r.keys.ShowSecret):
			r.shown = !r.shown
			setSecretVisible(r.shown, &r.inputs[regPassword], &r.inputs[regConfirm])
			return r, nil
		case r.focus == regTerms:
			if key.Matches(msg, r.keys.Toggle) {
				r.terms = !r.terms
			}
			return r, nil
		}

		var cmd tea.Cmd
		r.inputs[r.focus], cmd = r.inputs[r.focus].Update(msg)
		meterCmd := r.sync()
		return r, tea.Batch(cmd, meterCmd)
	}
	if r.focus < regTerms {
		var cmd tea.Cmd
		r.inputs[r.focus], cmd = r.inputs[r.focus].Update(msg)
		return r, cmd
	}
	return r, nil
}

// sync copies the inputs into the form state and re-evaluates the password.
func (r *Register) sync() tea.Cmd {
	for i, f := range regFields {
		r.form.Set(f, r.inputs[i].Value())
	}
	r.checks = validate.Check(r.form.Get(validate.FieldPassword))
	return r.meter.setScore(r.checks.Score())
}

func (r *Register) setFocus(idx int) tea.Cmd {
	r.focus = idx
	ptrs := make([]*textinput.Model, 0, len(r.inputs))
	for i := range r.inputs {
		ptrs = append(ptrs, &r.inputs[i])
	}
	return focusOnly(idx, ptrs)
}

func (r Register) submit() (Register, tea.Cmd) {
	reg := validate.Registration{
		Name:          r.inputs[regName].Value(),
		Email:         r.inputs[regEmail].Value(),
		Password:      r.inputs[regPassword].Value(),
		Confirmation:  r.inputs[regConfirm].Value(),
		AcceptedTerms: r.terms,
	}
	if err := validate.ValidateRegistration(reg); err != nil {
		return r, alert(err.Error())
	}
	name, email := strings.TrimSpace(reg.Name), strings.TrimSpace(reg.Email)
	r.reset()
	meterCmd := r.meter.setScore(0)
	return r, tea.Batch(
		alert(validate.MsgRegisterOK),
		func() tea.Msg { return RegisteredMsg{Name: name, Email: email} },
		meterCmd,
	)
}

func (r *Register) reset() {
	for i := range r.inputs {
		r.inputs[i].Reset()
	}
	r.terms = false
	r.form.Reset()
	r.checks = validate.Checks{}
	r.setFocus(regName)
}

// View renders the form.
func (r Register) View() string {
	var b strings.Builder
	b.WriteString(theme.StyleHeader.Render("Create an account") + "\n\n")

	labels := [4]string{"Name", "Email", "Password", "Confirm password"}
	for i := range r.inputs {
		b.WriteString(label(labels[i], r.focus == i) + "\n")
		b.WriteString(r.inputs[i].View() + "\n")
		if i == regPassword {
			b.WriteString(r.meter.view() + "\n")
			for _, req := range r.checks.Requirements() {
				mark, color := "✗", theme.ColorDimmed
				if req.Met {
					mark, color = "✓", theme.ColorHealthy
				}
				b.WriteString(lipgloss.NewStyle().Foreground(color).Render("  "+mark+" "+req.Label) + "\n")
			}
		}
		if i == regConfirm && r.form.Mismatch() {
			b.WriteString(theme.StyleError.Render(validate.MsgPasswordMismatch) + "\n")
		}
		b.WriteString("\n")
	}

	box := "[ ]"
	if r.terms {
		box = "[x]"
	}
	b.WriteString(label(box+" I agree to the Terms and Privacy Policy", r.focus == regTerms) + "\n\n")
	b.WriteString(theme.StyleDimmed.Render("tab: next  space: agree  ctrl+t: show password  enter: register"))
	return styleForm.Render(b.String())
}
