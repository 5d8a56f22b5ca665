package middleware

import (
	"fmt"
	"net/http"

	"faktura/internal/rbac"

	"github.com/labstack/echo/v4"
)

// Guard factories produce route middleware enforcing a role or ability
// requirement against the identity attached by AuthMiddleware. A request
// that never authenticated is rejected 401 before any ability check; a
// resolved identity that fails the check is rejected 403 with a payload
// naming the requirement and the caller's own role, nothing else.

// RequireRole admits callers whose role meets or exceeds minRole in the
// hierarchy.
func RequireRole(minRole rbac.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				return unauthorized("Not authenticated")
			}
			if !rbac.HasRoleLevel(identity.Role, minRole) {
				return forbidden(rbac.Denial{
					Code:     rbac.CodeForbidden,
					Message:  fmt.Sprintf("Requires role %s or above", minRole),
					Required: string(minRole),
					UserRole: identity.Role,
				})
			}
			return next(c)
		}
	}
}

// RequireAbility admits callers whose role holds the ability.
func RequireAbility(ability rbac.Ability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				return unauthorized("Not authenticated")
			}
			if !rbac.Can(identity.Role, ability) {
				return forbidden(rbac.Denial{
					Code:     rbac.CodeForbidden,
					Message:  fmt.Sprintf("Requires ability %s", ability),
					Required: string(ability),
					UserRole: identity.Role,
				})
			}
			return next(c)
		}
	}
}

// RequireAllAbilities admits callers holding every listed ability. The
// denial payload names the specific missing abilities.
func RequireAllAbilities(abilities ...rbac.Ability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				return unauthorized("Not authenticated")
			}
			if missing := rbac.MissingAbilities(identity.Role, abilities); len(missing) > 0 {
				return forbidden(rbac.Denial{
					Code:     rbac.CodeForbidden,
					Message:  fmt.Sprintf("Requires all of %v", abilities),
					Required: joinAbilities(abilities),
					UserRole: identity.Role,
					Missing:  missing,
				})
			}
			return next(c)
		}
	}
}

// RequireAnyAbility admits callers holding at least one listed ability.
func RequireAnyAbility(abilities ...rbac.Ability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				return unauthorized("Not authenticated")
			}
			if !rbac.CanAny(identity.Role, abilities) {
				return forbidden(rbac.Denial{
					Code:     rbac.CodeForbidden,
					Message:  fmt.Sprintf("Requires any of %v", abilities),
					Required: joinAbilities(abilities),
					UserRole: identity.Role,
				})
			}
			return next(c)
		}
	}
}

func forbidden(denial rbac.Denial) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusForbidden, denial)
}

func joinAbilities(abilities []rbac.Ability) string {
	out := ""
	for i, a := range abilities {
		if i > 0 {
			out += ","
		}
		out += string(a)
	}
	return out
}
