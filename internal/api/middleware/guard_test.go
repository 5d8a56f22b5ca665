package middleware

import (
	"encoding/json"
	"net/http"
	"testing"

	"faktura/internal/rbac"
	"faktura/internal/utils"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appWithRole(role rbac.Role, guard echo.MiddlewareFunc) *echo.Echo {
	user := validUser()
	user.Role = role
	verifier := &stubVerifier{claims: &utils.Claims{UserID: user.ID}}
	return newAuthApp(verifier, &stubProfiles{user: user, active: true}, guard)
}

func decodeDenial(t *testing.T, body []byte) rbac.Denial {
	t.Helper()
	var denial rbac.Denial
	require.NoError(t, json.Unmarshal(body, &denial))
	return denial
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		role    rbac.Role
		minRole rbac.Role
		want    int
	}{
		{rbac.RoleAdmin, rbac.RoleManager, http.StatusOK},
		{rbac.RoleManager, rbac.RoleManager, http.StatusOK},
		{rbac.RoleUser, rbac.RoleManager, http.StatusForbidden},
		{rbac.RoleManager, rbac.RoleAdmin, http.StatusForbidden},
	}
	for _, tt := range tests {
		e := appWithRole(tt.role, RequireRole(tt.minRole))
		rec := doRequest(e, "Bearer token")
		assert.Equal(t, tt.want, rec.Code, "role %s against min %s", tt.role, tt.minRole)
	}
}

func TestRequireRoleDenialPayload(t *testing.T) {
	e := appWithRole(rbac.RoleUser, RequireRole(rbac.RoleManager))
	rec := doRequest(e, "Bearer token")

	require.Equal(t, http.StatusForbidden, rec.Code)
	denial := decodeDenial(t, rec.Body.Bytes())
	assert.Equal(t, rbac.CodeForbidden, denial.Code)
	assert.Equal(t, "manager", denial.Required)
	assert.Equal(t, rbac.RoleUser, denial.UserRole)
}

func TestRequireAbility(t *testing.T) {
	e := appWithRole(rbac.RoleUser, RequireAbility(rbac.AbilityUsersCreate))
	rec := doRequest(e, "Bearer token")

	require.Equal(t, http.StatusForbidden, rec.Code)
	denial := decodeDenial(t, rec.Body.Bytes())
	assert.Equal(t, rbac.CodeForbidden, denial.Code)
	assert.Equal(t, "users.create", denial.Required)
	assert.Equal(t, rbac.RoleUser, denial.UserRole)

	e = appWithRole(rbac.RoleManager, RequireAbility(rbac.AbilityUsersCreate))
	rec = doRequest(e, "Bearer token")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAllAbilitiesReportsMissing(t *testing.T) {
	guard := RequireAllAbilities(rbac.AbilityInvoicesView, rbac.AbilityInvoicesDelete, rbac.AbilityUsersChangeRole)

	e := appWithRole(rbac.RoleManager, guard)
	rec := doRequest(e, "Bearer token")

	require.Equal(t, http.StatusForbidden, rec.Code)
	denial := decodeDenial(t, rec.Body.Bytes())
	assert.Equal(t, []rbac.Ability{rbac.AbilityInvoicesDelete, rbac.AbilityUsersChangeRole}, denial.Missing)

	e = appWithRole(rbac.RoleAdmin, guard)
	rec = doRequest(e, "Bearer token")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAnyAbility(t *testing.T) {
	guard := RequireAnyAbility(rbac.AbilityUsersDelete, rbac.AbilityUsersChangeRole)

	e := appWithRole(rbac.RoleManager, guard)
	rec := doRequest(e, "Bearer token")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	e = appWithRole(rbac.RoleAdmin, guard)
	rec = doRequest(e, "Bearer token")
	assert.Equal(t, http.StatusOK, rec.Code)
}

// A request with no credential must be rejected 401 before any ability
// evaluation; a valid credential with an insufficient ability must be
// rejected 403, never 401.
func TestGateRejectionOrdering(t *testing.T) {
	guard := RequireAbility(rbac.AbilityUsersCreate)

	e := appWithRole(rbac.RoleUser, guard)

	rec := doRequest(e, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), rbac.CodeUnauthorized)
	assert.NotContains(t, rec.Body.String(), rbac.CodeForbidden)

	rec = doRequest(e, "Bearer token")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), rbac.CodeForbidden)
}

func TestGuardShortCircuits(t *testing.T) {
	handlerRan := false
	e := echo.New()
	user := validUser()
	user.Role = rbac.RoleUser
	auth := NewAuthMiddleware(&stubVerifier{claims: &utils.Claims{UserID: user.ID}}, &stubProfiles{user: user, active: true})
	e.GET("/protected", func(c echo.Context) error {
		handlerRan = true
		return c.NoContent(http.StatusOK)
	}, auth.Middleware(), RequireRole(rbac.RoleAdmin))

	rec := doRequest(e, "Bearer token")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, handlerRan, "downstream handler must not run on denial")
}

func TestGuardWithoutAuthStageIs401(t *testing.T) {
	// A guard placed on a route that never authenticated fails closed
	// with 401, not 403 and not an allow.
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RequireAbility(rbac.AbilityInvoicesView))

	rec := doRequest(e, "Bearer token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
