package models

import "time"

// DashboardStats is the headline counter set, also persisted as daily
// snapshots in dashboard_stats.
type DashboardStats struct {
	ID                 int       `db:"id" json:"id,omitempty"`
	StatDate           time.Time `db:"stat_date" json:"statDate"`
	TotalClients       int       `db:"total_clients" json:"totalClients"`
	TotalAppointments  int       `db:"total_appointments" json:"totalAppointments"`
	TotalServiceOrders int       `db:"total_service_orders" json:"totalServiceOrders"`
	PendingOrders      int       `db:"pending_orders" json:"pendingOrders"`
	CompletedOrders    int       `db:"completed_orders" json:"completedOrders"`
	TotalRevenue       float64   `db:"total_revenue" json:"totalRevenue"`
	PendingInvoices    int       `db:"pending_invoices" json:"pendingInvoices"`
	ActiveTechnicians  int       `db:"active_technicians" json:"activeTechnicians"`
	CreatedAt          time.Time `db:"created_at" json:"createdAt"`
}

// Alert is a dashboard warning with a link to the affected listing.
type Alert struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Link    string `json:"link"`
}

// DashboardOverview is the full dashboard payload. Each block is loaded
// independently; Failed lists the blocks that could not be read.
type DashboardOverview struct {
	Stats              DashboardStats     `json:"stats"`
	OrdersByStatus     map[string]int     `json:"ordersByStatus"`
	RevenueByMonth     map[string]float64 `json:"revenueByMonth"`
	InteractionsByType map[string]int     `json:"interactionsByType"`
	Alerts             []Alert            `json:"alerts"`
	Failed             []string           `json:"failed,omitempty"`
}
