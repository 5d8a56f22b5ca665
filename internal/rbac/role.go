package rbac

// Role is the coarse-grained tier a user belongs to.
type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// roleRanks stores the hierarchy as explicit data so the ordering is a
// testable contract rather than a side effect of declaration order.
var roleRanks = map[Role]int{
	RoleUser:    0,
	RoleManager: 1,
	RoleAdmin:   2,
}

// ValidRoles returns all roles in ascending rank order.
func ValidRoles() []Role {
	return []Role{RoleUser, RoleManager, RoleAdmin}
}

// IsValidRole reports whether the role is one of the known tiers.
func IsValidRole(role Role) bool {
	_, ok := roleRanks[role]
	return ok
}

// RoleRank returns the hierarchy rank for a role, or -1 for an unknown
// role so it loses every comparison.
func RoleRank(role Role) int {
	if rank, ok := roleRanks[role]; ok {
		return rank
	}
	return -1
}

// HasRoleLevel reports whether userRole meets or exceeds requiredRole in
// the hierarchy. Unknown roles on either side fail the check.
func HasRoleLevel(userRole, requiredRole Role) bool {
	userRank := RoleRank(userRole)
	requiredRank := RoleRank(requiredRole)
	if userRank == -1 || requiredRank == -1 {
		return false
	}
	return userRank >= requiredRank
}

// CanAssignRole reports whether a user with fromRole may grant toRole to
// another user. Roles can only be granted up to the granter's own rank.
func CanAssignRole(fromRole, toRole Role) bool {
	fromRank := RoleRank(fromRole)
	toRank := RoleRank(toRole)
	if fromRank == -1 || toRank == -1 {
		return false
	}
	return fromRank >= toRank
}
