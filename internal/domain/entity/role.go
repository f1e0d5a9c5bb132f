package entity

// RoleNames constants
const (
	RoleClient = "client"
	RoleOwner  = "owner"
)

// Actor is the authenticated caller of an operation, as vouched for by the
// auth provider.
type Actor struct {
	UserID string
	Email  string
	Role   string
}

func (a Actor) IsOwner() bool {
	return a.Role == RoleOwner
}

// ValidRole reports whether role is one the booking API understands
func ValidRole(role string) bool {
	return role == RoleClient || role == RoleOwner
}
