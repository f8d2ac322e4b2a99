package models

import "time"

// Technician statuses.
const (
	TechnicianAvailable = "available"
	TechnicianBusy      = "busy"
	TechnicianOffline   = "offline"
)

// ValidTechnicianStatus reports whether s belongs to the technician vocabulary.
func ValidTechnicianStatus(s string) bool {
	switch s {
	case TechnicianAvailable, TechnicianBusy, TechnicianOffline:
		return true
	}
	return false
}

// Technician is a field worker. WhatsAppNumber doubles as the username of the
// technician's dashboard account.
type Technician struct {
	ID             int        `db:"id" json:"id"`
	Name           string     `db:"name" json:"name"`
	WhatsAppNumber string     `db:"whatsapp_number" json:"whatsappNumber"`
	Status         string     `db:"status" json:"status"`
	LastLocation   *string    `db:"last_location" json:"lastLocation"`
	LastActive     *time.Time `db:"last_active" json:"lastActive"`
}

// TechnicianOption is the short technician row used by assignment forms.
type TechnicianOption struct {
	ID     int    `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Status string `db:"status" json:"status"`
}

// TechnicianStats summarizes a technician's order history.
type TechnicianStats struct {
	TotalOrders          int      `json:"totalOrders"`
	CompletedOrders      int      `json:"completedOrders"`
	AvgCompletionMinutes *float64 `json:"avgCompletionMinutes"`
}

// TechnicianPerformance is one row of the performance report.
type TechnicianPerformance struct {
	TechnicianID int    `json:"technicianId"`
	Name         string `json:"name"`
	TechnicianStats
}
