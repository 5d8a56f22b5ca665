package rbac

// rolePermissions is the single source of truth for what each role may do.
// Both the request-pipeline guards and the client-side session guards read
// this map, so server and client decisions cannot diverge.
//
// The matrix is monotonic by convention: every ability granted to user is
// granted to manager, and every ability granted to manager is granted to
// admin. Destructive *.delete actions and users.changeRole are withheld
// below admin; user management and business.edit are withheld below
// manager. The monotonicity property is asserted by the test suite.
var rolePermissions = map[Role][]Ability{
	RoleUser: {
		AbilityInvoicesView,
		AbilityInvoicesCreate,
		AbilityInvoicesEdit,
		AbilityInvoicesSend,
		AbilityInvoicesExport,
		AbilityClientsView,
		AbilityClientsCreate,
		AbilityClientsEdit,
		AbilityItemsView,
		AbilityItemsCreate,
		AbilityItemsEdit,
		AbilityLayoutsView,
		AbilityLayoutsCreate,
		AbilityLayoutsEdit,
		AbilityBusinessView,
	},
	RoleManager: {
		AbilityInvoicesView,
		AbilityInvoicesCreate,
		AbilityInvoicesEdit,
		AbilityInvoicesSend,
		AbilityInvoicesExport,
		AbilityClientsView,
		AbilityClientsCreate,
		AbilityClientsEdit,
		AbilityItemsView,
		AbilityItemsCreate,
		AbilityItemsEdit,
		AbilityLayoutsView,
		AbilityLayoutsCreate,
		AbilityLayoutsEdit,
		AbilityBusinessView,
		AbilityBusinessEdit,
		AbilityUsersView,
		AbilityUsersCreate,
		AbilityUsersEdit,
	},
	RoleAdmin: {
		AbilityInvoicesView,
		AbilityInvoicesCreate,
		AbilityInvoicesEdit,
		AbilityInvoicesSend,
		AbilityInvoicesExport,
		AbilityInvoicesDelete,
		AbilityClientsView,
		AbilityClientsCreate,
		AbilityClientsEdit,
		AbilityClientsDelete,
		AbilityItemsView,
		AbilityItemsCreate,
		AbilityItemsEdit,
		AbilityItemsDelete,
		AbilityLayoutsView,
		AbilityLayoutsCreate,
		AbilityLayoutsEdit,
		AbilityLayoutsDelete,
		AbilityBusinessView,
		AbilityBusinessEdit,
		AbilityUsersView,
		AbilityUsersCreate,
		AbilityUsersEdit,
		AbilityUsersDelete,
		AbilityUsersChangeRole,
	},
}

// abilityIndex backs Can with a set lookup; every authorization path goes
// through it, so a linear scan over the slices above would not do.
var abilityIndex = buildAbilityIndex()

func buildAbilityIndex() map[Role]map[Ability]struct{} {
	index := make(map[Role]map[Ability]struct{}, len(rolePermissions))
	for role, abilities := range rolePermissions {
		set := make(map[Ability]struct{}, len(abilities))
		for _, a := range abilities {
			set[a] = struct{}{}
		}
		index[role] = set
	}
	return index
}

// GetAbilities returns a copy of the configured ability list for a role.
// Unknown roles yield an empty slice, never an error.
func GetAbilities(role Role) []Ability {
	configured, ok := rolePermissions[role]
	if !ok {
		return []Ability{}
	}
	abilities := make([]Ability, len(configured))
	copy(abilities, configured)
	return abilities
}

// Can reports whether the role holds the ability. Unknown roles and
// unknown abilities degrade to false.
func Can(role Role, ability Ability) bool {
	set, ok := abilityIndex[role]
	if !ok {
		return false
	}
	_, ok = set[ability]
	return ok
}

// CanAll reports whether the role holds every listed ability. An empty
// list is trivially satisfied.
func CanAll(role Role, abilities []Ability) bool {
	for _, a := range abilities {
		if !Can(role, a) {
			return false
		}
	}
	return true
}

// CanAny reports whether the role holds at least one listed ability. An
// empty list is never satisfied.
func CanAny(role Role, abilities []Ability) bool {
	for _, a := range abilities {
		if Can(role, a) {
			return true
		}
	}
	return false
}

// MissingAbilities returns the subset of abilities the role does not
// hold, in input order. Used to report which checks failed an all-of
// requirement.
func MissingAbilities(role Role, abilities []Ability) []Ability {
	var missing []Ability
	for _, a := range abilities {
		if !Can(role, a) {
			missing = append(missing, a)
		}
	}
	return missing
}
