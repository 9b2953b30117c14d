package notify

// ModalKind distinguishes an alert (acknowledge only) from a confirm (yes/no).
type ModalKind int

const (
	ModalAlert ModalKind = iota
	ModalConfirm
)

// Modal is a blocking prompt. While one is open it receives every key.
type Modal struct {
	Kind  ModalKind
	Title string
	Text  string
	// OnConfirm identifies what a confirmed prompt does; the owner interprets it.
	OnConfirm any
}

// ModalAnsweredMsg reports how a modal was closed.
type ModalAnsweredMsg struct {
	Modal     Modal
	Confirmed bool
}

// Alert returns an acknowledge-only modal.
func Alert(text string) *Modal {
	return &Modal{Kind: ModalAlert, Title: "Notice", Text: text}
}

// Confirm returns a yes/no modal carrying payload back on answer.
func Confirm(text string, payload any) *Modal {
	return &Modal{Kind: ModalConfirm, Title: "Confirm", Text: text, OnConfirm: payload}
}
