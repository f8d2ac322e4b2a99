// Package sqlitetest provides an in-memory database carrying the bot's
// operational tables and the dashboard's own tables, for tests.
package sqlitetest

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE clients (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	whatsapp_number TEXT NOT NULL,
	address TEXT,
	last_interaction_type TEXT,
	last_interaction_at DATETIME,
	created_at DATETIME
);
CREATE TABLE technicians (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	whatsapp_number TEXT NOT NULL UNIQUE,
	status TEXT NOT NULL DEFAULT 'offline',
	last_location TEXT,
	last_active DATETIME,
	created_at DATETIME
);
CREATE TABLE service_orders (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	client_id INTEGER NOT NULL,
	technician_id INTEGER,
	status TEXT NOT NULL,
	notes TEXT,
	created_at DATETIME,
	completed_at DATETIME
);
CREATE TABLE invoices (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	client_id INTEGER NOT NULL,
	amount REAL NOT NULL,
	due_date DATETIME NOT NULL,
	status TEXT NOT NULL,
	description TEXT,
	created_at DATETIME
);
CREATE TABLE appointments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	client_id INTEGER NOT NULL,
	specialty TEXT,
	appointment_date DATETIME,
	status TEXT,
	created_at DATETIME
);
CREATE TABLE service_photos (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	service_order_id INTEGER NOT NULL,
	type TEXT NOT NULL,
	photo_url TEXT NOT NULL,
	created_at DATETIME
);
CREATE TABLE settings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	value TEXT
);
CREATE TABLE dashboard_users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'attendant',
	full_name TEXT NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL,
	last_login DATETIME
);
CREATE TABLE dashboard_stats (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	stat_date DATETIME NOT NULL,
	total_clients INTEGER NOT NULL DEFAULT 0,
	total_appointments INTEGER NOT NULL DEFAULT 0,
	total_service_orders INTEGER NOT NULL DEFAULT 0,
	pending_orders INTEGER NOT NULL DEFAULT 0,
	completed_orders INTEGER NOT NULL DEFAULT 0,
	total_revenue REAL NOT NULL DEFAULT 0,
	pending_invoices INTEGER NOT NULL DEFAULT 0,
	active_technicians INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);
`

// Open returns a fresh in-memory database with the schema applied. It is
// closed when the test ends.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()

	sqlx.BindDriver("sqlite", sqlx.QUESTION)
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Seeder inserts fixture rows and fails the test on error.
type Seeder struct {
	t  testing.TB
	db *sqlx.DB
}

// NewSeeder wraps db for fixture inserts.
func NewSeeder(t testing.TB, db *sqlx.DB) *Seeder {
	return &Seeder{t: t, db: db}
}

func (s *Seeder) insert(query string, args ...any) int {
	s.t.Helper()
	res, err := s.db.Exec(query, args...)
	if err != nil {
		s.t.Fatalf("seed %q: %v", query, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		s.t.Fatalf("seed id: %v", err)
	}
	return int(id)
}

// Client inserts a client.
func (s *Seeder) Client(name, number, address string, lastInteraction time.Time) int {
	s.t.Helper()
	return s.insert(`INSERT INTO clients (name, whatsapp_number, address, last_interaction_type, last_interaction_at, created_at)
		VALUES (?, ?, ?, 'support', ?, ?)`, name, number, address, lastInteraction, lastInteraction)
}

// Technician inserts a technician.
func (s *Seeder) Technician(name, number, status string) int {
	s.t.Helper()
	return s.insert(`INSERT INTO technicians (name, whatsapp_number, status, created_at) VALUES (?, ?, ?, ?)`,
		name, number, status, time.Now().UTC())
}

// Order inserts a service order. technicianID 0 leaves it unassigned.
func (s *Seeder) Order(clientID, technicianID int, status string, createdAt time.Time) int {
	s.t.Helper()
	var tech any
	if technicianID != 0 {
		tech = technicianID
	}
	return s.insert(`INSERT INTO service_orders (client_id, technician_id, status, created_at) VALUES (?, ?, ?, ?)`,
		clientID, tech, status, createdAt)
}

// CompletedOrder inserts a completed order with both timestamps.
func (s *Seeder) CompletedOrder(clientID, technicianID int, createdAt, completedAt time.Time) int {
	s.t.Helper()
	return s.insert(`INSERT INTO service_orders (client_id, technician_id, status, created_at, completed_at)
		VALUES (?, ?, 'completed', ?, ?)`, clientID, technicianID, createdAt, completedAt)
}

// Invoice inserts an invoice.
func (s *Seeder) Invoice(clientID int, amount float64, due time.Time, status, description string) int {
	s.t.Helper()
	return s.insert(`INSERT INTO invoices (client_id, amount, due_date, status, description, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		clientID, amount, due, status, description, time.Now().UTC())
}

// Appointment inserts an appointment.
func (s *Seeder) Appointment(clientID int, specialty string, at time.Time) int {
	s.t.Helper()
	return s.insert(`INSERT INTO appointments (client_id, specialty, appointment_date, status, created_at) VALUES (?, ?, ?, 'scheduled', ?)`,
		clientID, specialty, at, at)
}

// Photo inserts a service photo.
func (s *Seeder) Photo(orderID int, kind, url string, at time.Time) int {
	s.t.Helper()
	return s.insert(`INSERT INTO service_photos (service_order_id, type, photo_url, created_at) VALUES (?, ?, ?, ?)`,
		orderID, kind, url, at)
}
