package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/opsdash/internal/models"
)

var invoiceList = listSpec{
	resource: "invoices",
	columns: `i.id, i.client_id, i.amount, i.due_date, i.status, i.description, i.created_at,
	c.name AS client_name, c.whatsapp_number AS client_whatsapp`,
	from:          "FROM invoices i JOIN clients c ON i.client_id = c.id",
	searchColumns: []string{"c.name", "c.whatsapp_number", "i.description"},
	statusColumn:  "i.status",
	orderBy:       "i.due_date DESC, i.id ASC",
}

// PaidAmount is one paid invoice reduced to its due date and amount.
type PaidAmount struct {
	DueDate time.Time `db:"due_date"`
	Amount  float64   `db:"amount"`
}

// DateRange bounds due dates as [From, Before). Zero values are open ends.
type DateRange struct {
	From   time.Time
	Before time.Time
}

func (d DateRange) where() (string, []any) {
	var clause string
	var args []any
	if !d.From.IsZero() {
		clause += " AND due_date >= ?"
		args = append(args, d.From)
	}
	if !d.Before.IsZero() {
		clause += " AND due_date < ?"
		args = append(args, d.Before)
	}
	return clause, args
}

// InvoiceRepository provides data access for the invoices table.
type InvoiceRepository struct {
	db *sqlx.DB
}

// NewInvoiceRepository creates a new InvoiceRepository.
func NewInvoiceRepository(db *sqlx.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// List returns a page of invoices matching q. It fails soft.
func (r *InvoiceRepository) List(ctx context.Context, q ListQuery) Page[models.Invoice] {
	return listPage[models.Invoice](ctx, r.db, invoiceList, q)
}

// Create inserts an open invoice and returns its id.
func (r *InvoiceRepository) Create(ctx context.Context, clientID int, amount float64, dueDate time.Time, description *string, createdAt time.Time) (int, error) {
	return insertReturningID(ctx, r.db, `
		INSERT INTO invoices (client_id, amount, due_date, status, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`, clientID, amount, dueDate, models.InvoiceOpen, description, createdAt)
}

// RecentByClient returns the invoices of a client with the latest due dates.
func (r *InvoiceRepository) RecentByClient(ctx context.Context, clientID, limit int) ([]models.InvoiceSummary, error) {
	out := []models.InvoiceSummary{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT id, amount, due_date, status, description
		FROM invoices
		WHERE client_id = ?
		ORDER BY due_date DESC, id DESC
		LIMIT ?`), clientID, limit)
	return out, err
}

// Totals counts and sums invoices with status whose due date falls in rng.
func (r *InvoiceRepository) Totals(ctx context.Context, status string, rng DateRange) (models.MoneyTotal, error) {
	clause, args := rng.where()
	var row struct {
		Count int     `db:"count"`
		Total float64 `db:"total"`
	}
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total
		FROM invoices WHERE status = ?`+clause), append([]any{status}, args...)...)
	if err != nil {
		return models.MoneyTotal{}, err
	}
	return models.MoneyTotal{Count: row.Count, Total: row.Total}, nil
}

// TotalsByStatus groups invoices due in rng by status.
func (r *InvoiceRepository) TotalsByStatus(ctx context.Context, rng DateRange) (map[string]models.MoneyTotal, error) {
	clause, args := rng.where()
	var rows []struct {
		Status string  `db:"status"`
		Count  int     `db:"count"`
		Total  float64 `db:"total"`
	}
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total
		FROM invoices WHERE 1=1`+clause+`
		GROUP BY status`), args...)
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.MoneyTotal, len(rows))
	for _, row := range rows {
		out[row.Status] = models.MoneyTotal{Count: row.Count, Total: row.Total}
	}
	return out, nil
}

// Paid returns the paid invoices due in rng, ordered by due date. Grouping by
// day or month is left to the caller so the SQL stays dialect neutral.
func (r *InvoiceRepository) Paid(ctx context.Context, rng DateRange) ([]PaidAmount, error) {
	clause, args := rng.where()
	out := []PaidAmount{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT due_date, amount FROM invoices
		WHERE status = ?`+clause+`
		ORDER BY due_date, id`), append([]any{models.InvoicePaid}, args...)...)
	return out, err
}

// CountOpenOverdue counts open invoices due before day.
func (r *InvoiceRepository) CountOpenOverdue(ctx context.Context, day time.Time) (int, error) {
	return countWhere(ctx, r.db, `SELECT COUNT(*) FROM invoices WHERE status = ? AND due_date < ?`, models.InvoiceOpen, day)
}
