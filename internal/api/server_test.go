package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"faktura/internal/rbac"

	"github.com/go-advanced-admin/admin"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminContext(identity *rbac.Identity, headers map[string]string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	c := e.NewContext(req, httptest.NewRecorder())
	if identity != nil {
		c.Set("identity", *identity)
	}
	return c
}

func TestAdminPermissionCheckerRequiresIdentity(t *testing.T) {
	// An unauthenticated request is denied even when it claims a role
	// through headers; the checker only trusts the resolved identity.
	ok, err := adminPermissionChecker(admin.PermissionRequest{}, adminContext(nil, map[string]string{
		"X-Admin-Role": "admin",
	}))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdminPermissionCheckerByRole(t *testing.T) {
	tests := []struct {
		role rbac.Role
		want bool
	}{
		{rbac.RoleAdmin, true},
		{rbac.RoleManager, false},
		{rbac.RoleUser, false},
		{rbac.Role("superadmin"), false},
	}
	for _, tt := range tests {
		identity := rbac.Identity{ID: "u1", Role: tt.role, BusinessID: "b1"}
		ok, err := adminPermissionChecker(admin.PermissionRequest{}, adminContext(&identity, nil))
		require.NoError(t, err)
		assert.Equal(t, tt.want, ok, "role %s", tt.role)
	}
}

func TestAdminPermissionCheckerRejectsForeignContext(t *testing.T) {
	ok, err := adminPermissionChecker(admin.PermissionRequest{}, struct{}{})
	require.NoError(t, err)
	assert.False(t, ok)
}
