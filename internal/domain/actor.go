package domain

// ActorRole differentiates citizens from county staff.
type ActorRole string

const (
	RoleCitizen ActorRole = "citizen"
	RoleStaff   ActorRole = "staff"
	RoleSystem  ActorRole = "system"
)

// Valid reports whether r is a known role.
func (r ActorRole) Valid() bool {
	switch r {
	case RoleCitizen, RoleStaff, RoleSystem:
		return true
	}
	return false
}

// Actor identifies who performed an operation.
type Actor struct {
	ID   string    `json:"id"`
	Role ActorRole `json:"role"`
}

// SystemActor is used for derived entries not triggered by a person.
var SystemActor = Actor{ID: "system", Role: RoleSystem}
