package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/opsdash/internal/models"
)

// OrderField names an updatable service order column.
type OrderField int

const (
	OrderStatus OrderField = iota + 1
	OrderNotes
	OrderTechnician
	OrderCompletedAt
)

var orderUpdates = updateSpec[OrderField]{
	table: "service_orders",
	columns: []fieldColumn[OrderField]{
		{OrderStatus, "status"},
		{OrderNotes, "notes"},
		{OrderTechnician, "technician_id"},
		{OrderCompletedAt, "completed_at"},
	},
}

const orderColumns = `so.id, so.status, so.notes, so.created_at, so.completed_at,
	c.id AS client_id, c.name AS client_name, c.whatsapp_number AS client_whatsapp, c.address AS client_address,
	t.id AS technician_id, t.name AS technician_name, t.whatsapp_number AS technician_whatsapp,
	t.last_location AS technician_location`

const orderFrom = `FROM service_orders so
	JOIN clients c ON so.client_id = c.id
	LEFT JOIN technicians t ON so.technician_id = t.id`

var orderList = listSpec{
	resource:      "service_orders",
	columns:       orderColumns,
	from:          orderFrom,
	searchColumns: []string{"c.name", "c.address", "t.name"},
	statusColumn:  "so.status",
	orderBy:       "so.created_at DESC, so.id ASC",
}

// ActiveOrderStatuses are the statuses of orders still in the field.
var ActiveOrderStatuses = []string{models.OrderAssigned, models.OrderEnRoute, models.OrderArrived}

// OrderRepository provides data access for service orders.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// List returns a page of orders matching q. When technicianID is set only
// that technician's orders are considered. It fails soft.
func (r *OrderRepository) List(ctx context.Context, q ListQuery, technicianID *int) Page[models.ServiceOrder] {
	var scopes []scope
	if technicianID != nil {
		scopes = append(scopes, scope{column: "so.technician_id", value: *technicianID})
	}
	return listPage[models.ServiceOrder](ctx, r.db, orderList, q, scopes...)
}

// GetByID returns an order with its client and technician. Returns
// sql.ErrNoRows when absent.
func (r *OrderRepository) GetByID(ctx context.Context, id int) (*models.ServiceOrder, error) {
	var o models.ServiceOrder
	err := r.db.GetContext(ctx, &o, r.db.Rebind(`SELECT `+orderColumns+` `+orderFrom+` WHERE so.id = ?`), id)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserts an order and returns its id.
func (r *OrderRepository) Create(ctx context.Context, clientID int, technicianID *int, status string, notes *string, createdAt time.Time) (int, error) {
	return insertReturningID(ctx, r.db, `
		INSERT INTO service_orders (client_id, technician_id, status, notes, created_at)
		VALUES (?, ?, ?, ?, ?)`, clientID, technicianID, status, notes, createdAt)
}

// Update changes the given whitelisted fields of an order.
func (r *OrderRepository) Update(ctx context.Context, id int, fields map[OrderField]any) error {
	q, args, err := orderUpdates.build(id, fields)
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

// Photos returns the photos of an order in upload order.
func (r *OrderRepository) Photos(ctx context.Context, orderID int) ([]models.ServicePhoto, error) {
	out := []models.ServicePhoto{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT id, service_order_id, type, photo_url, created_at
		FROM service_photos
		WHERE service_order_id = ?
		ORDER BY created_at, id`), orderID)
	return out, err
}

// RecentByClient returns the latest orders of a client.
func (r *OrderRepository) RecentByClient(ctx context.Context, clientID, limit int) ([]models.OrderSummary, error) {
	out := []models.OrderSummary{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT id, status, created_at, completed_at
		FROM service_orders
		WHERE client_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`), clientID, limit)
	return out, err
}

// RecentByTechnician returns the latest orders assigned to a technician.
func (r *OrderRepository) RecentByTechnician(ctx context.Context, technicianID, limit int) ([]models.OrderSummary, error) {
	out := []models.OrderSummary{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT so.id, so.status, so.created_at, so.completed_at, c.name AS client_name
		FROM service_orders so
		JOIN clients c ON so.client_id = c.id
		WHERE so.technician_id = ?
		ORDER BY so.created_at DESC, so.id DESC
		LIMIT ?`), technicianID, limit)
	return out, err
}

// Active returns the orders still in the field, oldest first.
func (r *OrderRepository) Active(ctx context.Context) ([]models.MapOrder, error) {
	q, args, err := sqlx.In(`
		SELECT so.id, so.status, c.address, t.name AS technician_name
		FROM service_orders so
		JOIN clients c ON so.client_id = c.id
		LEFT JOIN technicians t ON so.technician_id = t.id
		WHERE so.status IN (?)
		ORDER BY so.created_at, so.id`, ActiveOrderStatuses)
	if err != nil {
		return nil, err
	}
	out := []models.MapOrder{}
	err = r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...)
	return out, err
}

// CountByStatus groups every order by status.
func (r *OrderRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS count FROM service_orders GROUP BY status`); err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

// Count counts orders whose status is one of statuses, or all orders when
// statuses is empty.
func (r *OrderRepository) Count(ctx context.Context, statuses ...string) (int, error) {
	if len(statuses) == 0 {
		return countWhere(ctx, r.db, `SELECT COUNT(*) FROM service_orders`)
	}
	q, args, err := sqlx.In(`SELECT COUNT(*) FROM service_orders WHERE status IN (?)`, statuses)
	if err != nil {
		return 0, err
	}
	return countWhere(ctx, r.db, q, args...)
}

// CountStale counts orders with one of statuses created before cutoff.
func (r *OrderRepository) CountStale(ctx context.Context, cutoff time.Time, statuses ...string) (int, error) {
	q, args, err := sqlx.In(`SELECT COUNT(*) FROM service_orders WHERE status IN (?) AND created_at < ?`, statuses, cutoff)
	if err != nil {
		return 0, err
	}
	return countWhere(ctx, r.db, q, args...)
}
