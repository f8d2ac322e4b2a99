package auth

// Role describes a dashboard account role.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleAttendant  Role = "attendant"
	RoleTechnician Role = "technician"
)

// Permission is a coarse capability token granted to a role.
type Permission string

const (
	PermViewAll       Permission = "view_all"
	PermEditAll       Permission = "edit_all"
	PermDeleteAll     Permission = "delete_all"
	PermManageUsers   Permission = "manage_users"
	PermViewReports   Permission = "view_reports"
	PermViewClients   Permission = "view_clients"
	PermEditClients   Permission = "edit_clients"
	PermViewOrders    Permission = "view_orders"
	PermEditOrders    Permission = "edit_orders"
	PermEditOwnOrders Permission = "edit_own_orders"
	PermViewRoutes    Permission = "view_routes"
	PermViewFinancial Permission = "view_financial"
)

// rolePermissions is the fixed role to permission table. It is never mutated
// after init; callers only see copies.
var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermViewAll,
		PermEditAll,
		PermDeleteAll,
		PermManageUsers,
		PermViewReports,
	},
	RoleAttendant: {
		PermViewClients,
		PermEditClients,
		PermViewOrders,
		PermEditOrders,
		PermViewFinancial,
	},
	RoleTechnician: {
		PermViewOrders,
		PermEditOwnOrders,
		PermViewRoutes,
	},
}

// RolePermissions returns the permissions granted to a role. Unknown roles
// get an empty set.
func RolePermissions(role Role) []Permission {
	perms := rolePermissions[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// HasPermission reports whether role holds perm.
func HasPermission(role Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// ValidRole returns true when role is one of the supported account roles.
func ValidRole(role string) bool {
	switch Role(role) {
	case RoleAdmin, RoleAttendant, RoleTechnician:
		return true
	default:
		return false
	}
}

// DisplayName returns a human label for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleAttendant:
		return "Attendant"
	case RoleTechnician:
		return "Technician"
	default:
		return string(r)
	}
}
