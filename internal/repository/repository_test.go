package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/GTDGit/opsdash/internal/database/sqlitetest"
	"github.com/GTDGit/opsdash/internal/models"
)

func TestUserRepository(t *testing.T) {
	db := sqlitetest.Open(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &models.User{
		Username:     "desk",
		Email:        "desk@example.com",
		PasswordHash: "hash",
		Role:         "attendant",
		FullName:     "Front Desk",
		IsActive:     true,
	}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if u.ID == 0 {
		t.Fatal("expected id to be set")
	}

	got, err := repo.GetByUsername(ctx, "desk")
	if err != nil {
		t.Fatalf("GetByUsername() error: %v", err)
	}
	if !got.IsActive || got.LastLogin != nil || got.Role != "attendant" {
		t.Fatalf("unexpected user: %+v", got)
	}

	if _, err := repo.GetByUsername(ctx, "nobody"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("unknown user: got %v, want sql.ErrNoRows", err)
	}

	taken, err := repo.UsernameTaken(ctx, "desk")
	if err != nil || !taken {
		t.Errorf("UsernameTaken = %v, %v", taken, err)
	}
	taken, err = repo.EmailTaken(ctx, "desk@example.com", u.ID)
	if err != nil || taken {
		t.Errorf("own email must not count as taken: %v, %v", taken, err)
	}

	at := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := repo.UpdateLastLogin(ctx, u.ID, at); err != nil {
		t.Fatalf("UpdateLastLogin() error: %v", err)
	}
	if err := repo.SetActive(ctx, u.ID, false); err != nil {
		t.Fatalf("SetActive() error: %v", err)
	}
	got, err = repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got.IsActive || got.LastLogin == nil || !got.LastLogin.Equal(at) {
		t.Fatalf("unexpected user after update: %+v", got)
	}

	n, err := repo.CountByRole(ctx, "admin")
	if err != nil || n != 0 {
		t.Errorf("CountByRole(admin) = %d, %v", n, err)
	}
}

func TestSettingRepository(t *testing.T) {
	db := sqlitetest.Open(t)
	repo := NewSettingRepository(db)
	ctx := context.Background()

	if _, err := repo.Get(ctx, SettingPixKey); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("unset key: got %v, want sql.ErrNoRows", err)
	}
	for _, v := range []string{"pix@example.com", "11.222.333/0001-44"} {
		if err := repo.Set(ctx, SettingPixKey, v); err != nil {
			t.Fatalf("Set(%q) error: %v", v, err)
		}
		got, err := repo.Get(ctx, SettingPixKey)
		if err != nil || got != v {
			t.Fatalf("Get() = %q, %v, want %q", got, err, v)
		}
	}
}

func TestTechnicianStatsAndPerformance(t *testing.T) {
	db := sqlitetest.Open(t)
	seed := sqlitetest.NewSeeder(t, db)
	ctx := context.Background()

	client := seed.Client("Fabi", "5511900000006", "Rua G", time.Now().UTC())
	joao := seed.Technician("Joao", "5511911111111", models.TechnicianAvailable)
	maria := seed.Technician("Maria", "5511922222222", models.TechnicianBusy)
	seed.Technician("Zeca", "5511944444444", models.TechnicianOffline)

	start := time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)
	seed.CompletedOrder(client, maria, start, start.Add(30*time.Minute))
	seed.CompletedOrder(client, maria, start.Add(time.Hour), start.Add(2*time.Hour))
	seed.Order(client, maria, models.OrderEnRoute, start.Add(3*time.Hour))
	seed.Order(client, joao, models.OrderAssigned, start)
	seed.CompletedOrder(client, joao, start.AddDate(0, 0, -30), start.AddDate(0, 0, -30).Add(time.Hour))

	repo := NewTechnicianRepository(db)

	stats, err := repo.Stats(ctx, maria)
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if stats.TotalOrders != 3 || stats.CompletedOrders != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.AvgCompletionMinutes == nil || *stats.AvgCompletionMinutes != 45 {
		t.Fatalf("avg completion = %v, want 45", stats.AvgCompletionMinutes)
	}

	perf, err := repo.Performance(ctx, start.AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("Performance() error: %v", err)
	}
	if len(perf) != 3 {
		t.Fatalf("expected a row per technician, got %d", len(perf))
	}
	if perf[0].Name != "Maria" || perf[0].CompletedOrders != 2 {
		t.Errorf("best performer first, got %+v", perf[0])
	}
	for _, p := range perf {
		switch p.Name {
		case "Joao":
			if p.TotalOrders != 1 || p.CompletedOrders != 0 || p.AvgCompletionMinutes != nil {
				t.Errorf("old orders must be excluded: %+v", p)
			}
		case "Zeca":
			if p.TotalOrders != 0 {
				t.Errorf("technician without orders: %+v", p)
			}
		}
	}

	id, err := repo.IDByWhatsApp(ctx, "5511922222222")
	if err != nil || id != maria {
		t.Errorf("IDByWhatsApp = %d, %v, want %d", id, err, maria)
	}
	if _, err := repo.IDByWhatsApp(ctx, "000"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("unknown number: got %v, want sql.ErrNoRows", err)
	}
}

func TestStatsRepository(t *testing.T) {
	db := sqlitetest.Open(t)
	seed := sqlitetest.NewSeeder(t, db)
	ctx := context.Background()

	client := seed.Client("Gil", "5511900000007", "Rua H", time.Now().UTC())
	tech := seed.Technician("Joao", "5511911111111", models.TechnicianAvailable)
	seed.Technician("Maria", "5511922222222", models.TechnicianOffline)
	now := time.Now().UTC()
	seed.Order(client, tech, models.OrderAssigned, now)
	seed.Order(client, tech, models.OrderArrived, now)
	seed.CompletedOrder(client, tech, now, now)
	seed.Order(client, 0, models.OrderPending, now)
	seed.Invoice(client, 120.5, now, models.InvoicePaid, "a")
	seed.Invoice(client, 79.5, now, models.InvoicePaid, "b")
	seed.Invoice(client, 30, now, models.InvoiceOpen, "c")
	seed.Appointment(client, "plumbing", now)

	repo := NewStatsRepository(db)
	s, err := repo.Current(ctx)
	if err != nil {
		t.Fatalf("Current() error: %v", err)
	}
	want := models.DashboardStats{
		TotalClients:       1,
		TotalAppointments:  1,
		TotalServiceOrders: 4,
		PendingOrders:      2,
		CompletedOrders:    1,
		TotalRevenue:       200,
		PendingInvoices:    1,
		ActiveTechnicians:  1,
	}
	if s != want {
		t.Fatalf("Current() = %+v, want %+v", s, want)
	}

	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		snap := s
		snap.StatDate = day
		snap.CreatedAt = now
		if err := repo.SaveSnapshot(ctx, &snap); err != nil {
			t.Fatalf("SaveSnapshot() error: %v", err)
		}
	}
	snaps, err := repo.Snapshots(ctx, day.AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("Snapshots() error: %v", err)
	}
	if len(snaps) != 1 || snaps[0].TotalServiceOrders != 4 {
		t.Fatalf("expected a single snapshot per day, got %+v", snaps)
	}
}
