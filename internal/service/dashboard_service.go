package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/opsdash/internal/metrics"
	"github.com/GTDGit/opsdash/internal/models"
	"github.com/GTDGit/opsdash/internal/repository"
)

const (
	revenueMonths   = 6
	staleOrderAfter = 24 * time.Hour

	// DefaultHistoryDays and MaxHistoryDays bound the snapshot history window.
	DefaultHistoryDays = 30
	MaxHistoryDays     = 365
)

// Overview blocks, reported in DashboardOverview.Failed.
const (
	BlockStats        = "stats"
	BlockOrders       = "orders_by_status"
	BlockRevenue      = "revenue_by_month"
	BlockInteractions = "interactions_by_type"
	BlockAlerts       = "alerts"
)

// DashboardService builds the landing dashboard and manages daily snapshots.
type DashboardService struct {
	statsRepo   *repository.StatsRepository
	orderRepo   *repository.OrderRepository
	invoiceRepo *repository.InvoiceRepository
	clientRepo  *repository.ClientRepository
	now         func() time.Time
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(statsRepo *repository.StatsRepository, orderRepo *repository.OrderRepository, invoiceRepo *repository.InvoiceRepository, clientRepo *repository.ClientRepository) *DashboardService {
	return &DashboardService{
		statsRepo:   statsRepo,
		orderRepo:   orderRepo,
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		now:         time.Now,
	}
}

// Overview loads every dashboard block. A failing block is left at its zero
// value and named in Failed; the others are still returned.
func (s *DashboardService) Overview(ctx context.Context) *models.DashboardOverview {
	now := s.now().UTC()
	out := &models.DashboardOverview{
		OrdersByStatus:     map[string]int{},
		RevenueByMonth:     map[string]float64{},
		InteractionsByType: map[string]int{},
		Alerts:             []models.Alert{},
	}

	fail := func(block string, err error) {
		metrics.ListFailuresTotal.WithLabelValues("dashboard_" + block).Inc()
		log.Error().Err(err).Str("block", block).Msg("Dashboard block unavailable")
		out.Failed = append(out.Failed, block)
	}

	if stats, err := s.statsRepo.Current(ctx); err != nil {
		fail(BlockStats, err)
	} else {
		out.Stats = stats
	}

	if byStatus, err := s.orderRepo.CountByStatus(ctx); err != nil {
		fail(BlockOrders, err)
	} else {
		out.OrdersByStatus = byStatus
	}

	if revenue, err := s.revenueByMonth(ctx, now); err != nil {
		fail(BlockRevenue, err)
	} else {
		out.RevenueByMonth = revenue
	}

	if interactions, err := s.clientRepo.InteractionsByType(ctx); err != nil {
		fail(BlockInteractions, err)
	} else {
		out.InteractionsByType = interactions
	}

	if alerts, err := s.alerts(ctx, now); err != nil {
		fail(BlockAlerts, err)
	} else {
		out.Alerts = alerts
	}
	return out
}

// revenueByMonth sums paid invoices of the last revenueMonths calendar
// months, current month included, keyed by YYYY-MM. Empty months are zero.
func (s *DashboardService) revenueByMonth(ctx context.Context, now time.Time) (map[string]float64, error) {
	y, m, _ := now.Date()
	start := time.Date(y, m-(revenueMonths-1), 1, 0, 0, 0, 0, now.Location())

	paid, err := s.invoiceRepo.Paid(ctx, repository.DateRange{From: start, Before: start.AddDate(0, revenueMonths, 0)})
	if err != nil {
		return nil, err
	}
	out := groupRevenue(paid, "2006-01")
	for i := 0; i < revenueMonths; i++ {
		key := start.AddDate(0, i, 0).Format("2006-01")
		if _, ok := out[key]; !ok {
			out[key] = 0
		}
	}
	return out, nil
}

func (s *DashboardService) alerts(ctx context.Context, now time.Time) ([]models.Alert, error) {
	alerts := []models.Alert{}

	overdue, err := s.invoiceRepo.CountOpenOverdue(ctx, startOfDay(now))
	if err != nil {
		return nil, fmt.Errorf("count overdue invoices: %w", err)
	}
	if overdue > 0 {
		alerts = append(alerts, models.Alert{
			Type:    "warning",
			Message: fmt.Sprintf("%d overdue invoice(s)", overdue),
			Link:    "/financial/invoices?status=open",
		})
	}

	stale, err := s.orderRepo.CountStale(ctx, now.Add(-staleOrderAfter), models.OrderAssigned, models.OrderEnRoute)
	if err != nil {
		return nil, fmt.Errorf("count stale orders: %w", err)
	}
	if stale > 0 {
		alerts = append(alerts, models.Alert{
			Type:    "danger",
			Message: fmt.Sprintf("%d order(s) waiting for more than 24 hours", stale),
			Link:    "/orders?status=assigned",
		})
	}
	return alerts, nil
}

// Snapshot stores the current counters as today's snapshot.
func (s *DashboardService) Snapshot(ctx context.Context) (*models.DashboardStats, error) {
	stats, err := s.statsRepo.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("compute stats: %w", err)
	}
	now := s.now().UTC()
	stats.StatDate = startOfDay(now)
	stats.CreatedAt = now
	if err := s.statsRepo.SaveSnapshot(ctx, &stats); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	log.Info().Str("date", stats.StatDate.Format(DateLayout)).Msg("Dashboard snapshot saved")
	return &stats, nil
}

// History returns the snapshots of the last days days. Out of range values
// fall back to DefaultHistoryDays.
func (s *DashboardService) History(ctx context.Context, days int) ([]models.DashboardStats, error) {
	if days < 1 || days > MaxHistoryDays {
		days = DefaultHistoryDays
	}
	since := startOfDay(s.now().UTC()).AddDate(0, 0, -(days - 1))
	out, err := s.statsRepo.Snapshots(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("load snapshots: %w", err)
	}
	return out, nil
}
