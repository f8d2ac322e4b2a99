package models

import "time"

// Invoice statuses.
const (
	InvoiceOpen = "open"
	InvoicePaid = "paid"
)

// Invoice is a bill issued to a client, joined with the client's name.
type Invoice struct {
	ID             int        `db:"id" json:"id"`
	ClientID       int        `db:"client_id" json:"clientId"`
	Amount         float64    `db:"amount" json:"amount"`
	DueDate        time.Time  `db:"due_date" json:"dueDate"`
	Status         string     `db:"status" json:"status"`
	Description    *string    `db:"description" json:"description"`
	ClientName     string     `db:"client_name" json:"clientName"`
	ClientWhatsApp string     `db:"client_whatsapp" json:"clientWhatsapp"`
	CreatedAt      *time.Time `db:"created_at" json:"createdAt"`
}

// InvoiceSummary is the compact invoice row shown on the client page.
type InvoiceSummary struct {
	ID          int       `db:"id" json:"id"`
	Amount      float64   `db:"amount" json:"amount"`
	DueDate     time.Time `db:"due_date" json:"dueDate"`
	Status      string    `db:"status" json:"status"`
	Description *string   `db:"description" json:"description"`
}

// MoneyTotal is a count and sum of invoice amounts.
type MoneyTotal struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// FinancialSummary backs the financial overview.
type FinancialSummary struct {
	Open     MoneyTotal `json:"open"`
	PaidLast MoneyTotal `json:"paidLast30Days"`
	Overdue  MoneyTotal `json:"overdue"`
	PixKey   string     `json:"pixKey"`
}

// FinancialReport aggregates invoices over [Start, End).
type FinancialReport struct {
	Period       string                `json:"period"`
	Start        time.Time             `json:"start"`
	End          time.Time             `json:"end"`
	RevenueTotal float64               `json:"revenueTotal"`
	ByStatus     map[string]MoneyTotal `json:"byStatus"`
	DailyRevenue map[string]float64    `json:"dailyRevenue"`
}
