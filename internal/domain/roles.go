package domain

// Role is a capability tag checked before every mutating operation.
// Roles are an explicit identity-to-tags mapping, not a hierarchy.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleOrganizer     Role = "organizer"
	RoleBoothOperator Role = "booth_operator"
)

// Valid reports whether r is a known role tag.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOrganizer, RoleBoothOperator:
		return true
	}
	return false
}
