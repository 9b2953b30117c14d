package validate

// Field names shared by the forms.
const (
	FieldName         = "name"
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldConfirmation = "confirmPassword"
)

// FormState is the live content of a form. Validity is recomputed on every
// Set; a field is valid when it is non-empty and, for the password pair,
// when the confirmation matches.
type FormState struct {
	Fields   map[string]string
	Validity map[string]bool

	// confirmEdited is set by the first change to the confirmation.
	confirmEdited bool
}

// NewFormState returns an empty form with the given fields.
func NewFormState(fields ...string) *FormState {
	f := &FormState{
		Fields:   make(map[string]string, len(fields)),
		Validity: make(map[string]bool, len(fields)),
	}
	for _, name := range fields {
		f.Fields[name] = ""
		f.Validity[name] = false
	}
	return f
}

// Set stores a field value and refreshes validity.
func (f *FormState) Set(field, value string) {
	if field == FieldConfirmation && value != f.Fields[field] {
		f.confirmEdited = true
	}
	f.Fields[field] = value
	f.revalidate()
}

// Get returns a field value.
func (f *FormState) Get(field string) string {
	return f.Fields[field]
}

// Valid reports the current validity of a field.
func (f *FormState) Valid(field string) bool {
	return f.Validity[field]
}

// Mismatch reports whether the confirmation differs from the password. An
// untouched confirmation is not reported; once edited, an empty one is.
func (f *FormState) Mismatch() bool {
	c, ok := f.Fields[FieldConfirmation]
	if !ok || !f.confirmEdited {
		return false
	}
	return !Match(f.Fields[FieldPassword], c)
}

// Reset clears every field.
func (f *FormState) Reset() {
	for name := range f.Fields {
		f.Fields[name] = ""
	}
	f.confirmEdited = false
	f.revalidate()
}

func (f *FormState) revalidate() {
	for name, v := range f.Fields {
		f.Validity[name] = v != ""
	}
	if _, ok := f.Fields[FieldConfirmation]; ok {
		c := f.Fields[FieldConfirmation]
		f.Validity[FieldConfirmation] = c != "" && Match(f.Fields[FieldPassword], c)
	}
}
