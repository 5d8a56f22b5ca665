package session

import (
	"faktura/internal/rbac"
)

// Decision is what a guard tells the UI to do. Guards here drive
// affordance only: hiding a button is UX, the server gate is the
// security boundary.
type Decision int

const (
	// RenderNothing: show neither the protected content nor a denial.
	// Used while the session is loading or when a guard is silent.
	RenderNothing Decision = iota
	// RenderChildren: show the protected content.
	RenderChildren
	// RenderFallback: show the denial / fallback view.
	RenderFallback
)

// Mode selects how an AbilityGuard combines multiple abilities.
type Mode int

const (
	ModeAll Mode = iota
	ModeAny
)

// PageGuard gates a whole page on a role requirement. Set MinRole for a
// hierarchy check, or Roles for an explicit any-of list.
type PageGuard struct {
	MinRole rbac.Role
	Roles   []rbac.Role
	// Optimistic renders children while the session is still loading
	// instead of rendering nothing. Denials still land once resolved.
	Optimistic bool
}

func (g PageGuard) Evaluate(state State, identity rbac.Identity) Decision {
	switch state {
	case StateReady:
		if g.satisfied(identity.Role) {
			return RenderChildren
		}
		return RenderFallback
	case StateIdle, StateLoading:
		// Never flash the denial view before the session resolves.
		if g.Optimistic {
			return RenderChildren
		}
		return RenderNothing
	default:
		// A failed load is an error state, not a denial.
		return RenderNothing
	}
}

func (g PageGuard) satisfied(role rbac.Role) bool {
	if len(g.Roles) > 0 {
		for _, allowed := range g.Roles {
			if role == allowed && rbac.IsValidRole(role) {
				return true
			}
		}
		return false
	}
	return rbac.HasRoleLevel(role, g.MinRole)
}

// AbilityGuard gates a component on one or more abilities.
type AbilityGuard struct {
	Abilities []rbac.Ability
	Mode      Mode
	// Silent always renders nothing on denial, regardless of any
	// fallback the caller supplies.
	Silent bool
}

func (g AbilityGuard) Evaluate(state State, identity rbac.Identity) Decision {
	switch state {
	case StateReady:
		if g.satisfied(identity.Role) {
			return RenderChildren
		}
		if g.Silent {
			return RenderNothing
		}
		return RenderFallback
	case StateIdle, StateLoading:
		return RenderNothing
	default:
		return RenderNothing
	}
}

func (g AbilityGuard) satisfied(role rbac.Role) bool {
	if g.Mode == ModeAny {
		return rbac.CanAny(role, g.Abilities)
	}
	return rbac.CanAll(role, g.Abilities)
}
