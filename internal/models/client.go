package models

import "time"

// Client is a customer known to the messaging bot.
type Client struct {
	ID                  int        `db:"id" json:"id"`
	Name                string     `db:"name" json:"name"`
	WhatsAppNumber      string     `db:"whatsapp_number" json:"whatsappNumber"`
	Address             *string    `db:"address" json:"address"`
	LastInteractionType *string    `db:"last_interaction_type" json:"lastInteractionType"`
	LastInteractionAt   *time.Time `db:"last_interaction_at" json:"lastInteractionAt"`
	CreatedAt           *time.Time `db:"created_at" json:"createdAt"`
}

// ClientOption is the short client row used by create forms.
type ClientOption struct {
	ID             int     `db:"id" json:"id"`
	Name           string  `db:"name" json:"name"`
	WhatsAppNumber string  `db:"whatsapp_number" json:"whatsappNumber"`
	Address        *string `db:"address" json:"address"`
}

// Appointment is a visit scheduled through the bot.
type Appointment struct {
	ID              int        `db:"id" json:"id"`
	Specialty       *string    `db:"specialty" json:"specialty"`
	AppointmentDate *time.Time `db:"appointment_date" json:"appointmentDate"`
	Status          *string    `db:"status" json:"status"`
	CreatedAt       *time.Time `db:"created_at" json:"createdAt"`
}
