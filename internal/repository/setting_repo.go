package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SettingPixKey is the settings row holding the PIX payment key.
const SettingPixKey = "pix_key"

// SettingRepository reads and writes the bot's key/value settings table.
type SettingRepository struct {
	db *sqlx.DB
}

// NewSettingRepository creates a new SettingRepository.
func NewSettingRepository(db *sqlx.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get returns a setting value. Returns sql.ErrNoRows when unset.
func (r *SettingRepository) Get(ctx context.Context, name string) (string, error) {
	var v string
	err := r.db.GetContext(ctx, &v, r.db.Rebind(`SELECT value FROM settings WHERE name = ?`), name)
	return v, err
}

// Set creates or replaces a setting value.
func (r *SettingRepository) Set(ctx context.Context, name, value string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.GetContext(ctx, &n, tx.Rebind(`SELECT COUNT(*) FROM settings WHERE name = ?`), name); err != nil {
		return err
	}
	if n > 0 {
		_, err = tx.ExecContext(ctx, tx.Rebind(`UPDATE settings SET value = ? WHERE name = ?`), value, name)
	} else {
		_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO settings (name, value) VALUES (?, ?)`), name, value)
	}
	if err != nil {
		return err
	}
	return tx.Commit()
}
