package rbac

// Identity is the resolved caller attached to a request once the gate has
// verified the credential and loaded the profile. Downstream handlers
// depend on this typed contract instead of loose context values.
type Identity struct {
	ID         string `json:"id"`
	Role       Role   `json:"role"`
	BusinessID string `json:"businessId"`
	Email      string `json:"email,omitempty"`
	FullName   string `json:"fullName,omitempty"`
}

// Complete reports whether the identity carries everything the gate
// requires. An identity missing its role or business is treated as not
// authenticated, not as a server fault.
func (i Identity) Complete() bool {
	return i.ID != "" && i.Role != "" && i.BusinessID != ""
}

// CanAccessBusiness reports whether the identity belongs to the target
// business. Strict equality: an admin of one business never passes for
// another. Callers must invoke this explicitly wherever cross-tenant
// access is possible; it does not gate requests on its own.
func CanAccessBusiness(identity Identity, targetBusinessID string) bool {
	if identity.BusinessID == "" || targetBusinessID == "" {
		return false
	}
	return identity.BusinessID == targetBusinessID
}

// Denial codes shared by the gate and its clients.
const (
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
)

// Denial describes a failed check: what was required versus what the
// caller held. It reveals only the caller's own role, never another
// tenant's data.
type Denial struct {
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	Required string    `json:"required,omitempty"`
	UserRole Role      `json:"userRole,omitempty"`
	Missing  []Ability `json:"missing,omitempty"`
}
