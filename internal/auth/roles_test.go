package auth

import (
	"slices"
	"testing"
)

func TestRolePermissions(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected []Permission
	}{
		{
			name:     "admin",
			role:     RoleAdmin,
			expected: []Permission{PermViewAll, PermEditAll, PermDeleteAll, PermManageUsers, PermViewReports},
		},
		{
			name:     "attendant",
			role:     RoleAttendant,
			expected: []Permission{PermViewClients, PermEditClients, PermViewOrders, PermEditOrders, PermViewFinancial},
		},
		{
			name:     "technician",
			role:     RoleTechnician,
			expected: []Permission{PermViewOrders, PermEditOwnOrders, PermViewRoutes},
		},
		{
			name:     "unknown role",
			role:     Role("supervisor"),
			expected: []Permission{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RolePermissions(tt.role)
			if !slices.Equal(got, tt.expected) {
				t.Fatalf("permissions mismatch for %q: got=%v want=%v", tt.role, got, tt.expected)
			}
		})
	}
}

func TestRolePermissionsReturnsCopy(t *testing.T) {
	perms := RolePermissions(RoleAttendant)
	perms[0] = PermManageUsers

	if HasPermission(RoleAttendant, PermManageUsers) {
		t.Fatal("mutating returned slice changed the role table")
	}
	if !HasPermission(RoleAttendant, PermViewClients) {
		t.Fatal("attendant lost view_clients")
	}
}

func TestAdminLacksScopedTokens(t *testing.T) {
	for _, p := range []Permission{PermViewOrders, PermEditOrders, PermViewClients, PermViewFinancial} {
		if HasPermission(RoleAdmin, p) {
			t.Errorf("admin unexpectedly holds %q", p)
		}
	}
}

func TestValidRole(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{"admin", true},
		{"attendant", true},
		{"technician", true},
		{"", false},
		{"Admin", false},
		{"root", false},
	}

	for _, tt := range tests {
		if got := ValidRole(tt.role); got != tt.want {
			t.Errorf("ValidRole(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}
