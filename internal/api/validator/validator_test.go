package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRoleTag(t *testing.T) {
	v := NewValidator()
	require.NotNil(t, v)

	base := ChangeRoleRequest{UserID: "7f2a1c9e-3d44-4b03-9a52-68a2c4e0a001"}

	for _, role := range []string{"user", "manager", "admin"} {
		req := base
		req.Role = role
		assert.NoError(t, v.Validate(req), "role %q", role)
	}

	for _, role := range []string{"owner", "ADMIN", "superadmin", ""} {
		req := base
		req.Role = role
		assert.Error(t, v.Validate(req), "role %q", role)
	}
}

func TestInvoiceRequestValidation(t *testing.T) {
	v := NewValidator()
	require.NotNil(t, v)

	valid := InvoiceRequest{
		ClientID:   "7f2a1c9e-3d44-4b03-9a52-68a2c4e0a001",
		BusinessID: "7f2a1c9e-3d44-4b03-9a52-68a2c4e0a002",
		Status:     "DRAFT",
		Currency:   "EUR",
		DueAt:      time.Now().Add(14 * 24 * time.Hour),
		Lines: []InvoiceLineRequest{
			{Description: "Consulting", Quantity: 8, UnitPrice: 120, TaxRate: 19},
		},
	}
	assert.NoError(t, v.Validate(valid))

	noLines := valid
	noLines.Lines = nil
	assert.Error(t, v.Validate(noLines))

	badStatus := valid
	badStatus.Status = "SHIPPED"
	assert.Error(t, v.Validate(badStatus))

	badLine := valid
	badLine.Lines = []InvoiceLineRequest{{Description: "x", Quantity: 0}}
	assert.Error(t, v.Validate(badLine))
}

func TestInviteRequestValidation(t *testing.T) {
	v := NewValidator()
	require.NotNil(t, v)

	valid := BusinessInviteRequest{
		Email:      "new.hire@example.com",
		Name:       "New Hire",
		Role:       "user",
		BusinessID: "7f2a1c9e-3d44-4b03-9a52-68a2c4e0a001",
		ExpiresAt:  time.Now().Add(24 * time.Hour),
	}
	assert.NoError(t, v.Validate(valid))

	expired := valid
	expired.ExpiresAt = time.Now().Add(-time.Hour)
	assert.Error(t, v.Validate(expired))

	badRole := valid
	badRole.Role = "root"
	assert.Error(t, v.Validate(badRole))
}

func TestValidationErrorsMessage(t *testing.T) {
	v := NewValidator()
	require.NotNil(t, v)

	err := v.Validate(ChangeRoleRequest{})
	require.Error(t, err)

	verrs, ok := err.(ValidationErrors)
	require.True(t, ok)
	assert.Contains(t, verrs.Error(), "validation failed on fields")
}
