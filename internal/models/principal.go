package models

type Role string

const (
	RoleUser      Role = "user"
	RoleOrganizer Role = "organizer"
)

// Principal is the authenticated caller, resolved per request by the
// auth collaborator. Never persisted here.
type Principal struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

func (p Principal) IsOrganizer() bool {
	return p.Role == RoleOrganizer
}
