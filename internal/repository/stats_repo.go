package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/opsdash/internal/models"
)

// StatsRepository computes headline counters and stores daily snapshots in
// dashboard_stats.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Current computes the live counters.
func (r *StatsRepository) Current(ctx context.Context) (models.DashboardStats, error) {
	var s models.DashboardStats

	counts := []struct {
		dst   *int
		query string
		args  []any
	}{
		{&s.TotalClients, `SELECT COUNT(*) FROM clients`, nil},
		{&s.TotalAppointments, `SELECT COUNT(*) FROM appointments`, nil},
		{&s.TotalServiceOrders, `SELECT COUNT(*) FROM service_orders`, nil},
		{&s.PendingOrders, `SELECT COUNT(*) FROM service_orders WHERE status IN (?, ?, ?)`,
			[]any{models.OrderAssigned, models.OrderEnRoute, models.OrderArrived}},
		{&s.CompletedOrders, `SELECT COUNT(*) FROM service_orders WHERE status = ?`, []any{models.OrderCompleted}},
		{&s.PendingInvoices, `SELECT COUNT(*) FROM invoices WHERE status = ?`, []any{models.InvoiceOpen}},
		{&s.ActiveTechnicians, `SELECT COUNT(*) FROM technicians WHERE status = ?`, []any{models.TechnicianAvailable}},
	}
	for _, c := range counts {
		n, err := countWhere(ctx, r.db, c.query, c.args...)
		if err != nil {
			return models.DashboardStats{}, fmt.Errorf("count %q: %w", c.query, err)
		}
		*c.dst = n
	}

	if err := r.db.GetContext(ctx, &s.TotalRevenue, r.db.Rebind(
		`SELECT COALESCE(SUM(amount), 0) FROM invoices WHERE status = ?`), models.InvoicePaid); err != nil {
		return models.DashboardStats{}, fmt.Errorf("sum revenue: %w", err)
	}
	return s, nil
}

// SaveSnapshot stores s as the snapshot of its StatDate, replacing an earlier
// snapshot of the same day.
func (r *StatsRepository) SaveSnapshot(ctx context.Context, s *models.DashboardStats) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM dashboard_stats WHERE stat_date = ?`), s.StatDate); err != nil {
		return err
	}

	const insert = `INSERT INTO dashboard_stats (stat_date, total_clients, total_appointments, total_service_orders,
		pending_orders, completed_orders, total_revenue, pending_invoices, active_technicians, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	args := []any{s.StatDate, s.TotalClients, s.TotalAppointments, s.TotalServiceOrders,
		s.PendingOrders, s.CompletedOrders, s.TotalRevenue, s.PendingInvoices, s.ActiveTechnicians, s.CreatedAt}

	if tx.DriverName() == "postgres" {
		err = tx.QueryRowxContext(ctx, tx.Rebind(insert+" RETURNING id"), args...).Scan(&s.ID)
	} else {
		var res sql.Result
		res, err = tx.ExecContext(ctx, tx.Rebind(insert), args...)
		if err == nil {
			var id int64
			id, err = res.LastInsertId()
			s.ID = int(id)
		}
	}
	if err != nil {
		return err
	}
	return tx.Commit()
}

// Snapshots returns the stored snapshots from since onwards, oldest first.
func (r *StatsRepository) Snapshots(ctx context.Context, since time.Time) ([]models.DashboardStats, error) {
	out := []models.DashboardStats{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT id, stat_date, total_clients, total_appointments, total_service_orders, pending_orders,
			completed_orders, total_revenue, pending_invoices, active_technicians, created_at
		FROM dashboard_stats
		WHERE stat_date >= ?
		ORDER BY stat_date, id`), since)
	return out, err
}
