package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/opsdash/internal/models"
)

// ClientField names an updatable client column.
type ClientField int

const (
	ClientName ClientField = iota + 1
	ClientAddress
)

var clientUpdates = updateSpec[ClientField]{
	table: "clients",
	columns: []fieldColumn[ClientField]{
		{ClientName, "name"},
		{ClientAddress, "address"},
	},
}

var clientList = listSpec{
	resource:      "clients",
	columns:       "c.id, c.name, c.whatsapp_number, c.address, c.last_interaction_type, c.last_interaction_at, c.created_at",
	from:          "FROM clients c",
	searchColumns: []string{"c.name", "c.whatsapp_number"},
	orderBy:       "c.last_interaction_at DESC, c.id ASC",
}

// ClientRepository provides data access methods for the bot's clients table.
type ClientRepository struct {
	db *sqlx.DB
}

// NewClientRepository creates a new ClientRepository.
func NewClientRepository(db *sqlx.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// List returns a page of clients matching q. It fails soft.
func (r *ClientRepository) List(ctx context.Context, q ListQuery) Page[models.Client] {
	return listPage[models.Client](ctx, r.db, clientList, q)
}

// GetByID finds a client by numeric id. Returns sql.ErrNoRows when absent.
func (r *ClientRepository) GetByID(ctx context.Context, id int) (*models.Client, error) {
	var c models.Client
	err := r.db.GetContext(ctx, &c, r.db.Rebind(`
		SELECT id, name, whatsapp_number, address, last_interaction_type, last_interaction_at, created_at
		FROM clients WHERE id = ?`), id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Exists reports whether a client with id exists.
func (r *ClientRepository) Exists(ctx context.Context, id int) (bool, error) {
	n, err := countWhere(ctx, r.db, `SELECT COUNT(*) FROM clients WHERE id = ?`, id)
	return n > 0, err
}

// Options returns every client ordered by name, for create forms.
func (r *ClientRepository) Options(ctx context.Context) ([]models.ClientOption, error) {
	out := []models.ClientOption{}
	err := r.db.SelectContext(ctx, &out, `SELECT id, name, whatsapp_number, address FROM clients ORDER BY name, id`)
	return out, err
}

// Update changes the given whitelisted fields of a client.
func (r *ClientRepository) Update(ctx context.Context, id int, fields map[ClientField]any) error {
	q, args, err := clientUpdates.build(id, fields)
	if err != nil {
		return err
	}
	n, err := exec(ctx, r.db, q, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// RecentAppointments returns the latest appointments of a client.
func (r *ClientRepository) RecentAppointments(ctx context.Context, clientID, limit int) ([]models.Appointment, error) {
	out := []models.Appointment{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT id, specialty, appointment_date, status, created_at
		FROM appointments
		WHERE client_id = ?
		ORDER BY appointment_date DESC, id DESC
		LIMIT ?`), clientID, limit)
	return out, err
}

// InteractionsByType counts clients by their last interaction type.
func (r *ClientRepository) InteractionsByType(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Type  string `db:"last_interaction_type"`
		Count int    `db:"count"`
	}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT last_interaction_type, COUNT(*) AS count
		FROM clients
		WHERE last_interaction_type IS NOT NULL
		GROUP BY last_interaction_type`)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Type] = row.Count
	}
	return out, nil
}
