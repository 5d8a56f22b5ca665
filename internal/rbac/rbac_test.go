package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Abilities deliberately withheld from manager relative to admin, and
// from user relative to manager. Enumerated here so the monotonicity
// property below stays honest when the matrix changes.
var (
	withheldFromManager = map[Ability]struct{}{
		AbilityInvoicesDelete:  {},
		AbilityClientsDelete:   {},
		AbilityItemsDelete:     {},
		AbilityLayoutsDelete:   {},
		AbilityUsersDelete:     {},
		AbilityUsersChangeRole: {},
	}
	withheldFromUser = map[Ability]struct{}{
		AbilityUsersView:    {},
		AbilityUsersCreate:  {},
		AbilityUsersEdit:    {},
		AbilityBusinessEdit: {},
	}
)

func TestMatrixMonotonicity(t *testing.T) {
	for _, a := range GetAbilities(RoleUser) {
		assert.True(t, Can(RoleManager, a), "manager should inherit user ability %s", a)
	}
	for _, a := range GetAbilities(RoleManager) {
		assert.True(t, Can(RoleAdmin, a), "admin should inherit manager ability %s", a)
	}

	// The withheld sets are exactly the gaps between adjacent tiers.
	for _, a := range GetAbilities(RoleAdmin) {
		if !Can(RoleManager, a) {
			_, ok := withheldFromManager[a]
			assert.True(t, ok, "ability %s withheld from manager but not enumerated", a)
		}
	}
	for _, a := range GetAbilities(RoleManager) {
		if !Can(RoleUser, a) {
			_, ok := withheldFromUser[a]
			assert.True(t, ok, "ability %s withheld from user but not enumerated", a)
		}
	}
	for a := range withheldFromManager {
		assert.False(t, Can(RoleManager, a), "withheld ability %s leaked to manager", a)
		assert.True(t, Can(RoleAdmin, a), "withheld ability %s missing from admin", a)
	}
	for a := range withheldFromUser {
		assert.False(t, Can(RoleUser, a), "withheld ability %s leaked to user", a)
		assert.True(t, Can(RoleManager, a), "withheld ability %s missing from manager", a)
	}
}

func TestHierarchyTotality(t *testing.T) {
	roles := ValidRoles()
	for _, r1 := range roles {
		for _, r2 := range roles {
			forward := HasRoleLevel(r1, r2)
			backward := HasRoleLevel(r2, r1)
			if r1 == r2 {
				assert.True(t, forward, "%s should satisfy itself", r1)
				assert.True(t, backward, "%s should satisfy itself", r2)
				continue
			}
			assert.NotEqual(t, forward, backward,
				"exactly one of HasRoleLevel(%s,%s) / HasRoleLevel(%s,%s) must hold", r1, r2, r2, r1)
		}
	}
}

func TestHasRoleLevel(t *testing.T) {
	tests := []struct {
		userRole Role
		required Role
		want     bool
	}{
		{RoleAdmin, RoleManager, true},
		{RoleUser, RoleManager, false},
		{RoleManager, RoleManager, true},
		{RoleAdmin, RoleAdmin, true},
		{RoleManager, RoleAdmin, false},
		{RoleUser, RoleUser, true},
		{"not-a-role", RoleUser, false},
		{RoleAdmin, "not-a-role", false},
		{"", RoleUser, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HasRoleLevel(tt.userRole, tt.required),
			"HasRoleLevel(%q, %q)", tt.userRole, tt.required)
	}
}

func TestFailClosedOnUnknownInput(t *testing.T) {
	assert.False(t, Can("not-a-role", AbilityInvoicesView))
	assert.False(t, Can("not-a-role", "not-an-ability"))
	assert.False(t, Can(RoleAdmin, "not-an-ability"))
	assert.False(t, HasRoleLevel("not-a-role", RoleUser))
	assert.Empty(t, GetAbilities("not-a-role"))
	assert.False(t, IsValidRole("not-a-role"))
	assert.Equal(t, -1, RoleRank("not-a-role"))
}

func TestCanAllCanAnyBoundaryLaws(t *testing.T) {
	for _, role := range ValidRoles() {
		assert.True(t, CanAll(role, nil), "CanAll(%s, empty) must be true", role)
		assert.False(t, CanAny(role, nil), "CanAny(%s, empty) must be false", role)

		// CanAll(role, S) holds iff S is a subset of the role's abilities;
		// CanAny holds iff the intersection is non-empty.
		granted := GetAbilities(role)
		assert.True(t, CanAll(role, granted))
		assert.True(t, CanAny(role, append([]Ability{"not-an-ability"}, granted[0])))
		assert.False(t, CanAll(role, append(granted, "not-an-ability")))
		assert.False(t, CanAny(role, []Ability{"not-an-ability"}))
	}
}

func TestCapabilityScenarios(t *testing.T) {
	assert.True(t, Can(RoleAdmin, AbilityUsersDelete))
	assert.False(t, Can(RoleManager, AbilityUsersDelete))
	assert.False(t, Can(RoleUser, AbilityUsersDelete))

	assert.True(t, CanAll(RoleManager, []Ability{AbilityInvoicesView, AbilityInvoicesCreate, AbilityInvoicesEdit}))
	assert.False(t, CanAll(RoleManager, []Ability{AbilityInvoicesView, AbilityInvoicesDelete}))

	managerAbilities := GetAbilities(RoleManager)
	assert.Contains(t, managerAbilities, AbilityClientsEdit)
	assert.NotContains(t, managerAbilities, AbilityClientsDelete)

	assert.False(t, Can(RoleUser, AbilityUsersCreate))
}

func TestQueryIdempotence(t *testing.T) {
	first := GetAbilities(RoleManager)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, GetAbilities(RoleManager))
		assert.True(t, Can(RoleManager, AbilityInvoicesView))
		assert.False(t, Can(RoleManager, AbilityUsersChangeRole))
	}
}

func TestGetAbilitiesReturnsCopy(t *testing.T) {
	abilities := GetAbilities(RoleUser)
	require.NotEmpty(t, abilities)
	abilities[0] = "tampered"
	assert.NotContains(t, GetAbilities(RoleUser), Ability("tampered"))
}

func TestMissingAbilities(t *testing.T) {
	missing := MissingAbilities(RoleManager, []Ability{AbilityInvoicesView, AbilityInvoicesDelete, AbilityUsersChangeRole})
	assert.Equal(t, []Ability{AbilityInvoicesDelete, AbilityUsersChangeRole}, missing)
	assert.Nil(t, MissingAbilities(RoleAdmin, GetAbilities(RoleAdmin)))
}

func TestCanAccessBusiness(t *testing.T) {
	identity := Identity{ID: "u1", Role: RoleAdmin, BusinessID: "A"}
	assert.True(t, CanAccessBusiness(identity, "A"))
	assert.False(t, CanAccessBusiness(identity, "B"), "admin of A must not pass for B")

	// Role-independent
	for _, role := range ValidRoles() {
		identity.Role = role
		assert.True(t, CanAccessBusiness(identity, "A"))
		assert.False(t, CanAccessBusiness(identity, "B"))
	}

	assert.False(t, CanAccessBusiness(Identity{}, ""))
	assert.False(t, CanAccessBusiness(Identity{BusinessID: "A"}, ""))
}

func TestCanAssignRole(t *testing.T) {
	assert.True(t, CanAssignRole(RoleAdmin, RoleManager))
	assert.True(t, CanAssignRole(RoleManager, RoleManager))
	assert.False(t, CanAssignRole(RoleManager, RoleAdmin))
	assert.False(t, CanAssignRole("not-a-role", RoleUser))
	assert.False(t, CanAssignRole(RoleAdmin, "not-a-role"))
}

func TestIdentityComplete(t *testing.T) {
	assert.True(t, Identity{ID: "u1", Role: RoleUser, BusinessID: "b1"}.Complete())
	assert.False(t, Identity{ID: "u1", Role: RoleUser}.Complete())
	assert.False(t, Identity{ID: "u1", BusinessID: "b1"}.Complete())
	assert.False(t, Identity{Role: RoleUser, BusinessID: "b1"}.Complete())
}
