package auth

import "time"

// Session is the authenticated state carried by a request. A nil *Session
// means the caller is unauthenticated.
type Session struct {
	UserID    int       `json:"user_id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session lifetime has elapsed at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Authorize reports whether sess holds perm exactly. Unauthenticated callers
// never pass.
func Authorize(sess *Session, perm Permission) bool {
	if sess == nil {
		return false
	}
	return HasPermission(sess.Role, perm)
}

// AuthorizeAny reports whether sess holds at least one of perms.
func AuthorizeAny(sess *Session, perms ...Permission) bool {
	for _, p := range perms {
		if Authorize(sess, p) {
			return true
		}
	}
	return false
}

// OwnsOrder reports whether a technician session is the one assigned to an
// order. assignedWhatsApp is the whatsapp_number of the order's technician
// record, empty when the order has no technician.
func OwnsOrder(sess *Session, assignedWhatsApp string) bool {
	if sess == nil || sess.Role != RoleTechnician {
		return false
	}
	return assignedWhatsApp != "" && assignedWhatsApp == sess.Username
}

// CanViewOrder decides read access to a single order. For technicians the
// ownership check is decisive.
func CanViewOrder(sess *Session, assignedWhatsApp string) bool {
	if sess == nil {
		return false
	}
	if sess.Role == RoleTechnician {
		return Authorize(sess, PermViewOrders) && OwnsOrder(sess, assignedWhatsApp)
	}
	return AuthorizeAny(sess, PermViewOrders, PermViewAll)
}

// CanEditOrder decides write access to a single order.
func CanEditOrder(sess *Session, assignedWhatsApp string) bool {
	if sess == nil {
		return false
	}
	if sess.Role == RoleTechnician {
		return Authorize(sess, PermEditOwnOrders) && OwnsOrder(sess, assignedWhatsApp)
	}
	return AuthorizeAny(sess, PermEditOrders, PermEditAll)
}
