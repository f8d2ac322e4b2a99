package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// insertReturningID executes an INSERT and returns the new row id. lib/pq has
// no LastInsertId, so postgres gets a RETURNING clause instead.
func insertReturningID(ctx context.Context, db *sqlx.DB, query string, args ...any) (int, error) {
	if db.DriverName() == "postgres" {
		var id int
		if err := db.QueryRowxContext(ctx, db.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	res, err := db.ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read insert id: %w", err)
	}
	return int(id), nil
}

// exec runs a statement and reports how many rows it touched.
func exec(ctx context.Context, db *sqlx.DB, query string, args ...any) (int64, error) {
	res, err := db.ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// countWhere runs a COUNT(*) query.
func countWhere(ctx context.Context, db *sqlx.DB, query string, args ...any) (int, error) {
	var n int
	if err := db.GetContext(ctx, &n, db.Rebind(query), args...); err != nil {
		return 0, err
	}
	return n, nil
}
