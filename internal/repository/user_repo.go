package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/opsdash/internal/models"
)

const userColumns = `id, username, email, password_hash, role, full_name, is_active, created_at, last_login`

// UserRepository provides data access for dashboard_users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByUsername finds a user by login name. Returns sql.ErrNoRows when absent.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.db.GetContext(ctx, &u, r.db.Rebind(`SELECT `+userColumns+` FROM dashboard_users WHERE username = ?`), username)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID finds a user by id. Returns sql.ErrNoRows when absent.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	var u models.User
	err := r.db.GetContext(ctx, &u, r.db.Rebind(`SELECT `+userColumns+` FROM dashboard_users WHERE id = ?`), id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns all users, newest first.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	out := []models.User{}
	err := r.db.SelectContext(ctx, &out, `SELECT `+userColumns+` FROM dashboard_users ORDER BY created_at DESC, id DESC`)
	return out, err
}

// Create inserts a user and fills its id.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	id, err := insertReturningID(ctx, r.db, `
		INSERT INTO dashboard_users (username, email, password_hash, role, full_name, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, u.Role, u.FullName, u.IsActive, u.CreatedAt)
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

// UsernameTaken reports whether username is already registered.
func (r *UserRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	n, err := countWhere(ctx, r.db, `SELECT COUNT(*) FROM dashboard_users WHERE username = ?`, username)
	return n > 0, err
}

// EmailTaken reports whether email belongs to a user other than exceptID.
func (r *UserRepository) EmailTaken(ctx context.Context, email string, exceptID int) (bool, error) {
	n, err := countWhere(ctx, r.db, `SELECT COUNT(*) FROM dashboard_users WHERE email = ? AND id <> ?`, email, exceptID)
	return n > 0, err
}

// CountByRole counts users holding role.
func (r *UserRepository) CountByRole(ctx context.Context, role string) (int, error) {
	return countWhere(ctx, r.db, `SELECT COUNT(*) FROM dashboard_users WHERE role = ?`, role)
}

// UpdateLastLogin stamps a successful login.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int, at time.Time) error {
	_, err := exec(ctx, r.db, `UPDATE dashboard_users SET last_login = ? WHERE id = ?`, at, id)
	return err
}

// SetActive enables or disables an account.
func (r *UserRepository) SetActive(ctx context.Context, id int, active bool) error {
	n, err := exec(ctx, r.db, `UPDATE dashboard_users SET is_active = ? WHERE id = ?`, active, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateProfile changes name and email, and the password hash when non-nil.
func (r *UserRepository) UpdateProfile(ctx context.Context, id int, fullName, email string, passwordHash *string) error {
	var (
		n   int64
		err error
	)
	if passwordHash != nil {
		n, err = exec(ctx, r.db, `UPDATE dashboard_users SET full_name = ?, email = ?, password_hash = ? WHERE id = ?`,
			fullName, email, *passwordHash, id)
	} else {
		n, err = exec(ctx, r.db, `UPDATE dashboard_users SET full_name = ?, email = ? WHERE id = ?`, fullName, email, id)
	}
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
