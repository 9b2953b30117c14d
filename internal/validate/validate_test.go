package validate

import (
	"errors"
	"testing"
)

func TestCheckScore(t *testing.T) {
	tests := []struct {
		password  string
		wantScore int
		wantLabel string
	}{
		{"", 0, "Weak"},
		{"abc", 1, "Weak"},
		{"abcdefgh", 2, "Fair"},
		{"Abcdefgh", 3, "Good"},
		{"Abcdefg1", 4, "Strong"},
		{"Abc12345!", 5, "Very Strong"},
		{"under_score", 2, "Fair"},
		{"ÄÖÜ", 1, "Weak"},
		{"a b", 2, "Fair"},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			score := Check(tt.password).Score()
			if score != tt.wantScore {
				t.Errorf("Score(%q) = %d, want %d", tt.password, score, tt.wantScore)
			}
			if got := Label(score); got != tt.wantLabel {
				t.Errorf("Label(%d) = %q, want %q", score, got, tt.wantLabel)
			}
		})
	}
}

func TestCheckPredicates(t *testing.T) {
	c := Check("Abc12345!")
	if !c.Length || !c.Upper || !c.Lower || !c.Digit || !c.Special {
		t.Errorf("Check(Abc12345!) = %+v, want all true", c)
	}
	for _, r := range c.Requirements() {
		if !r.Met {
			t.Errorf("requirement %q not met", r.Label)
		}
	}

	// Underscore is a word character and never special.
	if Check("a_b").Special {
		t.Error("underscore should not satisfy the special predicate")
	}
}

func TestLabelRange(t *testing.T) {
	for score := -1; score <= 6; score++ {
		if Label(score) == "" {
			t.Errorf("Label(%d) is empty", score)
		}
	}
	if Label(6) != "Weak" {
		t.Errorf("Label(6) = %q, want Weak", Label(6))
	}
}

func TestValidateRegistration(t *testing.T) {
	valid := Registration{
		Name: "Ada", Email: "ada@example.com",
		Password: "Abc12345!", Confirmation: "Abc12345!", AcceptedTerms: true,
	}
	tests := []struct {
		name   string
		modify func(*Registration)
		want   string
	}{
		{"valid", func(*Registration) {}, ""},
		{"blank name", func(r *Registration) { r.Name = "   " }, MsgFillAllFields},
		{"blank email", func(r *Registration) { r.Email = "" }, MsgFillAllFields},
		{"blank confirmation", func(r *Registration) { r.Confirmation = "" }, MsgFillAllFields},
		{"mismatch", func(r *Registration) { r.Confirmation = "Abc12345?" }, MsgPasswordMismatch},
		{"terms", func(r *Registration) { r.AcceptedTerms = false }, MsgAcceptTerms},
		{"mismatch before terms", func(r *Registration) {
			r.Confirmation = "other"
			r.AcceptedTerms = false
		}, MsgPasswordMismatch},
		{"empty before mismatch", func(r *Registration) {
			r.Name = ""
			r.Confirmation = "other"
		}, MsgFillAllFields},
		{"weak password accepted", func(r *Registration) {
			r.Password, r.Confirmation = "a", "a"
		}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.modify(&r)
			err := ValidateRegistration(r)
			if tt.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var f *Failure
			if !errors.As(err, &f) {
				t.Fatalf("expected *Failure, got %v", err)
			}
			if f.Message != tt.want {
				t.Errorf("message = %q, want %q", f.Message, tt.want)
			}
		})
	}
}

func TestValidateLogin(t *testing.T) {
	if err := ValidateLogin(" a@b.c ", "pw"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, tc := range [][2]string{{"", "pw"}, {"  ", "pw"}, {"a@b.c", ""}} {
		err := ValidateLogin(tc[0], tc[1])
		if err == nil || err.Error() != MsgLoginMissing {
			t.Errorf("ValidateLogin(%q, %q) = %v, want %q", tc[0], tc[1], err, MsgLoginMissing)
		}
	}
}

func TestFormState(t *testing.T) {
	f := NewFormState(FieldName, FieldEmail, FieldPassword, FieldConfirmation)
	f.Set(FieldPassword, "secret")
	if f.Mismatch() {
		t.Error("untouched confirmation should not be a mismatch")
	}
	f.Set(FieldConfirmation, "secre")
	if !f.Mismatch() || f.Valid(FieldConfirmation) {
		t.Error("differing confirmation should be a mismatch")
	}
	f.Set(FieldConfirmation, "secret")
	if f.Mismatch() || !f.Valid(FieldConfirmation) {
		t.Error("equal confirmation should match")
	}
	// Editing the password re-checks the confirmation.
	f.Set(FieldPassword, "secret2")
	if !f.Mismatch() {
		t.Error("password change should re-evaluate the confirmation")
	}

	// Clearing an edited confirmation still differs from the password.
	f.Set(FieldConfirmation, "")
	if !f.Mismatch() {
		t.Error("emptied confirmation should be a mismatch")
	}

	f.Reset()
	if f.Mismatch() {
		t.Error("reset form should not report a mismatch")
	}
	for name, v := range f.Fields {
		if v != "" || f.Valid(name) {
			t.Errorf("field %q not reset", name)
		}
	}
	if f.Get(FieldPassword) != "" {
		t.Error("Get after reset should be empty")
	}
}

func TestFormStateMismatchIffDiffer(t *testing.T) {
	pairs := [][2]string{
		{"Abc12345!", ""},
		{"Abc12345!", "Abc12345!"},
		{"", "x"},
		{"", ""},
		{"pass", "pass "},
		{"Straße", "Strasse"},
	}
	for _, p := range pairs {
		f := NewFormState(FieldPassword, FieldConfirmation)
		f.Set(FieldConfirmation, "edit")
		f.Set(FieldPassword, p[0])
		f.Set(FieldConfirmation, p[1])
		if got, want := f.Mismatch(), p[0] != p[1]; got != want {
			t.Errorf("password=%q confirmation=%q: Mismatch() = %v, want %v", p[0], p[1], got, want)
		}
	}
}
