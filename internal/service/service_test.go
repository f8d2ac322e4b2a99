package service

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/opsdash/internal/database/sqlitetest"
	"github.com/GTDGit/opsdash/internal/repository"
)

// fixedNow is the clock used by every service under test.
var fixedNow = time.Date(2026, 6, 17, 15, 30, 0, 0, time.UTC)

type fixture struct {
	db   *sqlx.DB
	seed *sqlitetest.Seeder

	users    *repository.UserRepository
	clients  *repository.ClientRepository
	techs    *repository.TechnicianRepository
	orders   *repository.OrderRepository
	invoices *repository.InvoiceRepository
	settings *repository.SettingRepository
	stats    *repository.StatsRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := sqlitetest.Open(t)
	return &fixture{
		db:       db,
		seed:     sqlitetest.NewSeeder(t, db),
		users:    repository.NewUserRepository(db),
		clients:  repository.NewClientRepository(db),
		techs:    repository.NewTechnicianRepository(db),
		orders:   repository.NewOrderRepository(db),
		invoices: repository.NewInvoiceRepository(db),
		settings: repository.NewSettingRepository(db),
		stats:    repository.NewStatsRepository(db),
	}
}

func clock() time.Time { return fixedNow }
