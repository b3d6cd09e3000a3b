package auth

import "strings"

// Role is a position in the single privilege hierarchy.
type Role string

const (
	RoleStaff      Role = "STAFF"
	RoleSupervisor Role = "SUPERVISOR"
	RoleManager    Role = "MANAGER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// hierarchy is ordered from least to most privileged.
var hierarchy = []Role{RoleStaff, RoleSupervisor, RoleManager, RoleAdmin, RoleSuperAdmin}

func (r Role) level() int {
	for i, h := range hierarchy {
		if h == r {
			return i
		}
	}
	return -1
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return r.level() >= 0 }

// AtLeast reports whether r is as privileged as min. Unknown roles are never
// privileged enough.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && min.Valid() && r.level() >= min.level()
}

// ParseRole normalizes s; ok is false for unknown roles.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Roles lists every role, least privileged first.
func Roles() []Role {
	out := make([]Role, len(hierarchy))
	copy(out, hierarchy)
	return out
}
