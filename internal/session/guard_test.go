package session

import (
	"testing"

	"faktura/internal/rbac"

	"github.com/stretchr/testify/assert"
)

func TestPageGuardMinRole(t *testing.T) {
	guard := PageGuard{MinRole: rbac.RoleManager}

	tests := []struct {
		role rbac.Role
		want Decision
	}{
		{rbac.RoleAdmin, RenderChildren},
		{rbac.RoleManager, RenderChildren},
		{rbac.RoleUser, RenderFallback},
		{"not-a-role", RenderFallback},
	}
	for _, tt := range tests {
		got := guard.Evaluate(StateReady, rbac.Identity{Role: tt.role})
		assert.Equal(t, tt.want, got, "role %q", tt.role)
	}
}

func TestPageGuardExplicitRoles(t *testing.T) {
	guard := PageGuard{Roles: []rbac.Role{rbac.RoleUser, rbac.RoleAdmin}}

	assert.Equal(t, RenderChildren, guard.Evaluate(StateReady, rbac.Identity{Role: rbac.RoleUser}))
	assert.Equal(t, RenderChildren, guard.Evaluate(StateReady, rbac.Identity{Role: rbac.RoleAdmin}))
	// An explicit list is exact membership, not a hierarchy floor.
	assert.Equal(t, RenderFallback, guard.Evaluate(StateReady, rbac.Identity{Role: rbac.RoleManager}))
	assert.Equal(t, RenderFallback, guard.Evaluate(StateReady, rbac.Identity{Role: "not-a-role"}))
}

func TestPageGuardLoadingNeverFlashesDenial(t *testing.T) {
	guard := PageGuard{MinRole: rbac.RoleAdmin}

	for _, state := range []State{StateIdle, StateLoading} {
		assert.Equal(t, RenderNothing, guard.Evaluate(state, rbac.Identity{}), "state %d", state)
	}

	optimistic := PageGuard{MinRole: rbac.RoleAdmin, Optimistic: true}
	assert.Equal(t, RenderChildren, optimistic.Evaluate(StateLoading, rbac.Identity{}))
	// Once resolved, the optimistic guard still denies.
	assert.Equal(t, RenderFallback, optimistic.Evaluate(StateReady, rbac.Identity{Role: rbac.RoleUser}))
}

func TestAbilityGuardModes(t *testing.T) {
	all := AbilityGuard{Abilities: []rbac.Ability{rbac.AbilityInvoicesView, rbac.AbilityInvoicesDelete}}
	any := AbilityGuard{Abilities: []rbac.Ability{rbac.AbilityInvoicesView, rbac.AbilityInvoicesDelete}, Mode: ModeAny}

	manager := rbac.Identity{Role: rbac.RoleManager}
	admin := rbac.Identity{Role: rbac.RoleAdmin}

	assert.Equal(t, RenderFallback, all.Evaluate(StateReady, manager))
	assert.Equal(t, RenderChildren, all.Evaluate(StateReady, admin))
	assert.Equal(t, RenderChildren, any.Evaluate(StateReady, manager))
}

func TestAbilityGuardSilent(t *testing.T) {
	guard := AbilityGuard{Abilities: []rbac.Ability{rbac.AbilityUsersChangeRole}, Silent: true}

	assert.Equal(t, RenderNothing, guard.Evaluate(StateReady, rbac.Identity{Role: rbac.RoleUser}))
	assert.Equal(t, RenderChildren, guard.Evaluate(StateReady, rbac.Identity{Role: rbac.RoleAdmin}))
}

func TestAbilityGuardLoading(t *testing.T) {
	guard := AbilityGuard{Abilities: []rbac.Ability{rbac.AbilityInvoicesView}}

	assert.Equal(t, RenderNothing, guard.Evaluate(StateLoading, rbac.Identity{}))
	assert.Equal(t, RenderNothing, guard.Evaluate(StateFailed, rbac.Identity{}))
}

func TestAbilityGuardEmptyListLaws(t *testing.T) {
	// Same boundary laws as the capability API: all-of over nothing is
	// satisfied, any-of over nothing never is.
	all := AbilityGuard{}
	any := AbilityGuard{Mode: ModeAny}

	user := rbac.Identity{Role: rbac.RoleUser}
	assert.Equal(t, RenderChildren, all.Evaluate(StateReady, user))
	assert.Equal(t, RenderFallback, any.Evaluate(StateReady, user))
}
