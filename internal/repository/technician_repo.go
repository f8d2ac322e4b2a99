package repository

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/opsdash/internal/models"
)

// TechnicianField names an updatable technician column.
type TechnicianField int

const (
	TechnicianName TechnicianField = iota + 1
	TechnicianStatus
)

var technicianUpdates = updateSpec[TechnicianField]{
	table: "technicians",
	columns: []fieldColumn[TechnicianField]{
		{TechnicianName, "name"},
		{TechnicianStatus, "status"},
	},
}

var technicianList = listSpec{
	resource:      "technicians",
	columns:       "t.id, t.name, t.whatsapp_number, t.status, t.last_location, t.last_active",
	from:          "FROM technicians t",
	searchColumns: []string{"t.name", "t.whatsapp_number"},
	statusColumn:  "t.status",
	orderBy:       "t.name ASC, t.id ASC",
}

// TechnicianRepository provides data access for the technicians table.
type TechnicianRepository struct {
	db *sqlx.DB
}

// NewTechnicianRepository creates a new TechnicianRepository.
func NewTechnicianRepository(db *sqlx.DB) *TechnicianRepository {
	return &TechnicianRepository{db: db}
}

// List returns a page of technicians matching q. It fails soft.
func (r *TechnicianRepository) List(ctx context.Context, q ListQuery) Page[models.Technician] {
	return listPage[models.Technician](ctx, r.db, technicianList, q)
}

// GetByID finds a technician by id. Returns sql.ErrNoRows when absent.
func (r *TechnicianRepository) GetByID(ctx context.Context, id int) (*models.Technician, error) {
	var t models.Technician
	err := r.db.GetContext(ctx, &t, r.db.Rebind(`
		SELECT id, name, whatsapp_number, status, last_location, last_active
		FROM technicians WHERE id = ?`), id)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// IDByWhatsApp resolves the technician record linked to a technician account.
// Returns sql.ErrNoRows when no record carries the number.
func (r *TechnicianRepository) IDByWhatsApp(ctx context.Context, number string) (int, error) {
	var id int
	err := r.db.GetContext(ctx, &id, r.db.Rebind(`SELECT id FROM technicians WHERE whatsapp_number = ? ORDER BY id LIMIT 1`), number)
	return id, err
}

// Exists reports whether a technician with id exists.
func (r *TechnicianRepository) Exists(ctx context.Context, id int) (bool, error) {
	n, err := countWhere(ctx, r.db, `SELECT COUNT(*) FROM technicians WHERE id = ?`, id)
	return n > 0, err
}

// WhatsAppTaken reports whether number is already registered.
func (r *TechnicianRepository) WhatsAppTaken(ctx context.Context, number string) (bool, error) {
	n, err := countWhere(ctx, r.db, `SELECT COUNT(*) FROM technicians WHERE whatsapp_number = ?`, number)
	return n > 0, err
}

// Create inserts an offline technician and returns its id.
func (r *TechnicianRepository) Create(ctx context.Context, name, number string, createdAt time.Time) (int, error) {
	return insertReturningID(ctx, r.db, `
		INSERT INTO technicians (name, whatsapp_number, status, created_at)
		VALUES (?, ?, ?, ?)`, name, number, models.TechnicianOffline, createdAt)
}

// Update changes the given whitelisted fields of a technician.
func (r *TechnicianRepository) Update(ctx context.Context, id int, fields map[TechnicianField]any) error {
	q, args, err := technicianUpdates.build(id, fields)
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

// Assignable returns technicians that can take new orders.
func (r *TechnicianRepository) Assignable(ctx context.Context) ([]models.TechnicianOption, error) {
	out := []models.TechnicianOption{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT id, name, status FROM technicians
		WHERE status IN (?, ?)
		ORDER BY name, id`), models.TechnicianAvailable, models.TechnicianBusy)
	return out, err
}

// Located returns technicians that are not offline and have reported a position.
func (r *TechnicianRepository) Located(ctx context.Context) ([]models.Technician, error) {
	out := []models.Technician{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT id, name, whatsapp_number, status, last_location, last_active
		FROM technicians
		WHERE status <> ? AND last_location IS NOT NULL
		ORDER BY name, id`), models.TechnicianOffline)
	return out, err
}

// CountByStatus counts technicians with status.
func (r *TechnicianRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	return countWhere(ctx, r.db, `SELECT COUNT(*) FROM technicians WHERE status = ?`, status)
}

type orderTiming struct {
	Status      *string    `db:"status"`
	CreatedAt   *time.Time `db:"created_at"`
	CompletedAt *time.Time `db:"completed_at"`
}

// Stats summarizes every order assigned to a technician.
func (r *TechnicianRepository) Stats(ctx context.Context, id int) (models.TechnicianStats, error) {
	var rows []orderTiming
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT status, created_at, completed_at FROM service_orders WHERE technician_id = ?`), id)
	if err != nil {
		return models.TechnicianStats{}, err
	}
	return summarizeOrders(rows), nil
}

// Performance aggregates orders created since start for every technician,
// best performers first.
func (r *TechnicianRepository) Performance(ctx context.Context, since time.Time) ([]models.TechnicianPerformance, error) {
	var rows []struct {
		TechnicianID int        `db:"technician_id"`
		Name         string     `db:"name"`
		OrderID      *int       `db:"order_id"`
		Status       *string    `db:"status"`
		CreatedAt    *time.Time `db:"created_at"`
		CompletedAt  *time.Time `db:"completed_at"`
	}
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT t.id AS technician_id, t.name, so.id AS order_id, so.status, so.created_at, so.completed_at
		FROM technicians t
		LEFT JOIN service_orders so ON t.id = so.technician_id AND so.created_at >= ?
		ORDER BY t.name, t.id`), since)
	if err != nil {
		return nil, err
	}

	var out []models.TechnicianPerformance
	timings := map[int][]orderTiming{}
	for _, row := range rows {
		if _, ok := timings[row.TechnicianID]; !ok {
			timings[row.TechnicianID] = []orderTiming{}
			out = append(out, models.TechnicianPerformance{TechnicianID: row.TechnicianID, Name: row.Name})
		}
		if row.OrderID != nil {
			timings[row.TechnicianID] = append(timings[row.TechnicianID], orderTiming{
				Status:      row.Status,
				CreatedAt:   row.CreatedAt,
				CompletedAt: row.CompletedAt,
			})
		}
	}
	for i := range out {
		out[i].TechnicianStats = summarizeOrders(timings[out[i].TechnicianID])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedOrders > out[j].CompletedOrders
	})
	if out == nil {
		out = []models.TechnicianPerformance{}
	}
	return out, nil
}

// summarizeOrders counts orders and averages completion time in minutes over
// completed orders with both timestamps.
func summarizeOrders(rows []orderTiming) models.TechnicianStats {
	stats := models.TechnicianStats{TotalOrders: len(rows)}
	var minutes float64
	var timed int
	for _, row := range rows {
		if row.Status == nil || *row.Status != models.OrderCompleted {
			continue
		}
		stats.CompletedOrders++
		if row.CreatedAt != nil && row.CompletedAt != nil {
			minutes += row.CompletedAt.Sub(*row.CreatedAt).Minutes()
			timed++
		}
	}
	if timed > 0 {
		avg := minutes / float64(timed)
		stats.AvgCompletionMinutes = &avg
	}
	return stats
}
