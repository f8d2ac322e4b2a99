package models

import "time"

// Service order statuses, in lifecycle order.
const (
	OrderPending   = "pending"
	OrderAssigned  = "assigned"
	OrderEnRoute   = "en_route"
	OrderArrived   = "arrived"
	OrderCompleted = "completed"
)

// ValidOrderStatus reports whether s belongs to the order vocabulary.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderPending, OrderAssigned, OrderEnRoute, OrderArrived, OrderCompleted:
		return true
	}
	return false
}

// ServiceOrder is a unit of field work joined with its client and
// technician.
type ServiceOrder struct {
	ID                 int        `db:"id" json:"id"`
	Status             string     `db:"status" json:"status"`
	Notes              *string    `db:"notes" json:"notes"`
	CreatedAt          *time.Time `db:"created_at" json:"createdAt"`
	CompletedAt        *time.Time `db:"completed_at" json:"completedAt"`
	ClientID           int        `db:"client_id" json:"clientId"`
	ClientName         string     `db:"client_name" json:"clientName"`
	ClientWhatsApp     string     `db:"client_whatsapp" json:"clientWhatsapp"`
	ClientAddress      *string    `db:"client_address" json:"clientAddress"`
	TechnicianID       *int       `db:"technician_id" json:"technicianId"`
	TechnicianName     *string    `db:"technician_name" json:"technicianName"`
	TechnicianWhatsApp *string    `db:"technician_whatsapp" json:"technicianWhatsapp"`
	TechnicianLocation *string    `db:"technician_location" json:"technicianLocation"`
}

// AssignedWhatsApp returns the assigned technician's number, or "" when the
// order is unassigned.
func (o *ServiceOrder) AssignedWhatsApp() string {
	if o.TechnicianWhatsApp == nil {
		return ""
	}
	return *o.TechnicianWhatsApp
}

// OrderSummary is the compact order row shown on client and technician pages.
type OrderSummary struct {
	ID          int        `db:"id" json:"id"`
	Status      string     `db:"status" json:"status"`
	CreatedAt   *time.Time `db:"created_at" json:"createdAt"`
	CompletedAt *time.Time `db:"completed_at" json:"completedAt"`
	ClientName  *string    `db:"client_name" json:"clientName,omitempty"`
}

// MapOrder is an active order placed on the dispatch map.
type MapOrder struct {
	ID             int     `db:"id" json:"id"`
	Status         string  `db:"status" json:"status"`
	Address        *string `db:"address" json:"address"`
	TechnicianName *string `db:"technician_name" json:"technicianName"`
}

// ServicePhoto is a picture uploaded by a technician for an order.
type ServicePhoto struct {
	ID             int        `db:"id" json:"id"`
	ServiceOrderID int        `db:"service_order_id" json:"serviceOrderId"`
	Type           string     `db:"type" json:"type"`
	PhotoURL       string     `db:"photo_url" json:"photoUrl"`
	CreatedAt      *time.Time `db:"created_at" json:"createdAt"`
}
