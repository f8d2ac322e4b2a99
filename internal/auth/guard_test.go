package auth

import (
	"testing"
	"time"
)

func TestAuthorize(t *testing.T) {
	admin := &Session{UserID: 1, Username: "boss", Role: RoleAdmin}
	attendant := &Session{UserID: 2, Username: "desk", Role: RoleAttendant}
	tech := &Session{UserID: 3, Username: "5511999990000", Role: RoleTechnician}
	ghost := &Session{UserID: 4, Username: "ghost", Role: Role("intern")}

	tests := []struct {
		name string
		sess *Session
		perm Permission
		want bool
	}{
		{"unauthenticated", nil, PermViewOrders, false},
		{"admin manage users", admin, PermManageUsers, true},
		{"admin exact view_orders", admin, PermViewOrders, false},
		{"attendant financial", attendant, PermViewFinancial, true},
		{"attendant reports", attendant, PermViewReports, false},
		{"technician own orders", tech, PermEditOwnOrders, true},
		{"technician edit orders", tech, PermEditOrders, false},
		{"unknown role", ghost, PermViewOrders, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Authorize(tt.sess, tt.perm); got != tt.want {
				t.Fatalf("Authorize(%v, %q) = %v, want %v", tt.sess, tt.perm, got, tt.want)
			}
		})
	}
}

func TestAuthorizeAny(t *testing.T) {
	admin := &Session{Role: RoleAdmin}
	tech := &Session{Role: RoleTechnician}

	if !AuthorizeAny(admin, PermViewOrders, PermViewAll) {
		t.Error("admin should pass through view_all")
	}
	if AuthorizeAny(tech, PermViewClients, PermViewAll) {
		t.Error("technician should not see clients")
	}
	if AuthorizeAny(nil, PermViewOrders, PermViewAll) {
		t.Error("nil session must never pass")
	}
	if AuthorizeAny(admin) {
		t.Error("empty permission list must deny")
	}
}

func TestOrderAccess(t *testing.T) {
	tech := &Session{Username: "5511999990000", Role: RoleTechnician}
	attendant := &Session{Username: "desk", Role: RoleAttendant}
	admin := &Session{Username: "boss", Role: RoleAdmin}

	tests := []struct {
		name     string
		sess     *Session
		assigned string
		view     bool
		edit     bool
	}{
		{"technician own order", tech, "5511999990000", true, true},
		{"technician other order", tech, "5511888880000", false, false},
		{"technician unassigned order", tech, "", false, false},
		{"attendant any order", attendant, "5511888880000", true, true},
		{"admin via super tokens", admin, "", true, true},
		{"unauthenticated", nil, "5511999990000", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanViewOrder(tt.sess, tt.assigned); got != tt.view {
				t.Errorf("CanViewOrder = %v, want %v", got, tt.view)
			}
			if got := CanEditOrder(tt.sess, tt.assigned); got != tt.edit {
				t.Errorf("CanEditOrder = %v, want %v", got, tt.edit)
			}
		})
	}
}

func TestOwnsOrderRequiresTechnicianRole(t *testing.T) {
	attendant := &Session{Username: "5511999990000", Role: RoleAttendant}
	if OwnsOrder(attendant, "5511999990000") {
		t.Fatal("only technicians own orders")
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s := &Session{ExpiresAt: now.Add(time.Minute)}
	if s.Expired(now) {
		t.Error("session should still be valid")
	}
	if !s.Expired(now.Add(time.Minute)) {
		t.Error("session should be expired at its deadline")
	}
	if (&Session{}).Expired(now) {
		t.Error("zero deadline means no expiry")
	}
}
