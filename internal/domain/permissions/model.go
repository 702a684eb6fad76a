// Package permissions provides role and capability resolution for the ledger.
// Every mutating or reporting component consults the resolver before acting.
package permissions

import (
	"tiendapos/internal/core/id"
)

// Role is a closed enumeration of actor roles.
type Role string

const (
	// RoleSuperuser is the distinguished super-role. Its effective
	// permission set is always all-true, regardless of the stored matrix.
	RoleSuperuser Role = "superuser"

	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleSeller  Role = "seller"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleSuperuser, RoleAdmin, RoleManager, RoleSeller:
		return true
	}
	return false
}

// Capability names a single boolean permission.
type Capability string

const (
	CapManageWarehouse       Capability = "manage_warehouse"
	CapManageSales           Capability = "manage_sales"
	CapViewReports           Capability = "view_reports"
	CapAccessSettings        Capability = "access_settings"
	CapDeleteSales           Capability = "delete_sales"
	CapManageUsers           Capability = "manage_users"
	CapManagePermissions     Capability = "manage_permissions"
	CapManageCategories      Capability = "manage_categories"
	CapManageDataTools       Capability = "manage_data_tools"
	CapChangeGeneralSettings Capability = "change_general_settings"
)

// AllCapabilities lists every known capability.
// The order is stable so serialized sets stay diff-friendly.
var AllCapabilities = []Capability{
	CapManageWarehouse,
	CapManageSales,
	CapViewReports,
	CapAccessSettings,
	CapDeleteSales,
	CapManageUsers,
	CapManagePermissions,
	CapManageCategories,
	CapManageDataTools,
	CapChangeGeneralSettings,
}

// IsValid reports whether c is a known capability.
func (c Capability) IsValid() bool {
	for _, known := range AllCapabilities {
		if c == known {
			return true
		}
	}
	return false
}

// PermissionSet is the resolved boolean capability set for an actor.
// Missing keys mean "not granted".
type PermissionSet map[Capability]bool

// Allows reports whether the capability is granted.
func (s PermissionSet) Allows(c Capability) bool {
	return s[c]
}

// Clone returns an independent copy of the set.
func (s PermissionSet) Clone() PermissionSet {
	out := make(PermissionSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// FullSet returns a set granting every known capability.
func FullSet() PermissionSet {
	out := make(PermissionSet, len(AllCapabilities))
	for _, c := range AllCapabilities {
		out[c] = true
	}
	return out
}

// EmptySet returns a set granting nothing.
func EmptySet() PermissionSet {
	return make(PermissionSet)
}

// Matrix is the stored role→capability configuration for a tenant.
// The super-role never appears in it.
type Matrix map[Role]PermissionSet

// Clone returns an independent copy of the matrix.
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for role, set := range m {
		out[role] = set.Clone()
	}
	return out
}

// Actor identifies who is performing an operation.
type Actor struct {
	ID       id.ID
	TenantID id.ID
	Role     Role
}
