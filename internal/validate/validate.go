// Package validate implements the registration and login form rules: the
// password predicates and strength score, confirmation matching and the
// ordered submit checks.
package validate

import (
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is the length predicate's threshold, in characters.
const MinPasswordLength = 8

// Messages shown by the forms.
const (
	MsgFillAllFields    = "Please fill in all fields."
	MsgPasswordMismatch = "Passwords do not match."
	MsgAcceptTerms      = "You must agree to the Terms and Privacy Policy."
	MsgRegisterOK       = "Registration successful! (Simulated)"
	MsgLoginMissing     = "Please enter both email and password."
	MsgLoginOK          = "Login successful! (Simulated)"
)

// Failure is a rejected submission. Its message is shown to the user as is.
type Failure struct {
	Message string
}

func (f *Failure) Error() string { return f.Message }

// Checks holds the five password predicates.
type Checks struct {
	Length  bool
	Upper   bool
	Lower   bool
	Digit   bool
	Special bool
}

// Check evaluates every predicate against password. Letter and digit classes
// are ASCII; anything outside [A-Za-z0-9_] counts as special.
func Check(password string) Checks {
	c := Checks{Length: utf8.RuneCountInString(password) >= MinPasswordLength}
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			c.Upper = true
		case r >= 'a' && r <= 'z':
			c.Lower = true
		case r >= '0' && r <= '9':
			c.Digit = true
		case r == '_':
		default:
			c.Special = true
		}
	}
	return c
}

// Score counts the satisfied predicates (0 to 5).
func (c Checks) Score() int {
	n := 0
	for _, ok := range []bool{c.Length, c.Upper, c.Lower, c.Digit, c.Special} {
		if ok {
			n++
		}
	}
	return n
}

// Requirement is one line of the requirements checklist.
type Requirement struct {
	Label string
	Met   bool
}

// Requirements returns the checklist in display order.
func (c Checks) Requirements() []Requirement {
	return []Requirement{
		{"At least 8 characters", c.Length},
		{"One uppercase letter", c.Upper},
		{"One lowercase letter", c.Lower},
		{"One number", c.Digit},
		{"One special character", c.Special},
	}
}

var strengthLabels = []string{"Weak", "Fair", "Good", "Strong", "Very Strong"}

// Label names a strength score. Out-of-range scores read as "Weak".
func Label(score int) string {
	if score < 1 || score > len(strengthLabels) {
		return strengthLabels[0]
	}
	return strengthLabels[score-1]
}

// Match reports whether the confirmation equals the password exactly.
func Match(password, confirmation string) bool {
	return password == confirmation
}

// Registration is a submitted registration form.
type Registration struct {
	Name          string
	Email         string
	Password      string
	Confirmation  string
	AcceptedTerms bool
}

// ValidateRegistration applies the submit rules in order and returns the
// first failure, or nil if the form may be submitted. Name and email are
// trimmed; passwords are compared as typed.
func ValidateRegistration(r Registration) error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Email) == "" ||
		r.Password == "" || r.Confirmation == "" {
		return &Failure{MsgFillAllFields}
	}
	if !Match(r.Password, r.Confirmation) {
		return &Failure{MsgPasswordMismatch}
	}
	if !r.AcceptedTerms {
		return &Failure{MsgAcceptTerms}
	}
	return nil
}

// ValidateLogin checks that both credentials were entered.
func ValidateLogin(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return &Failure{MsgLoginMissing}
	}
	return nil
}
