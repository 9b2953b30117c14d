package client

// BulkAction describes one entry of the bulk action selector.
type BulkAction struct {
	ID   string // sent as the "action" field
	Name string
}

// BulkActions returns the bulk action selector entries in display order.
// The placeholder (no action) is not included.
func BulkActions() []BulkAction {
	return []BulkAction{
		{ID: "activate", Name: "Activate"},
		{ID: "suspend", Name: "Suspend"},
		{ID: "reset-password", Name: "Reset password"},
		{ID: "delete", Name: "Delete"},
	}
}

// NextRole returns the role after r in Roles, wrapping around.
func NextRole(r Role) Role {
	for i, role := range Roles {
		if role == r {
			return Roles[(i+1)%len(Roles)]
		}
	}
	return Roles[0]
}

// PrevRole returns the role before r in Roles, wrapping around.
func PrevRole(r Role) Role {
	for i, role := range Roles {
		if role == r {
			return Roles[(i-1+len(Roles))%len(Roles)]
		}
	}
	return Roles[len(Roles)-1]
}
