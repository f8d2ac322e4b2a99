package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/opsdash/internal/models"
	"github.com/GTDGit/opsdash/internal/repository"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// paidWindow is how far back the summary counts paid invoices.
const paidWindow = 30 * 24 * time.Hour

// FinancialService serves invoices, the PIX key and revenue reports.
type FinancialService struct {
	invoiceRepo *repository.InvoiceRepository
	clientRepo  *repository.ClientRepository
	settingRepo *repository.SettingRepository
	now         func() time.Time
}

// NewFinancialService constructs a FinancialService.
func NewFinancialService(invoiceRepo *repository.InvoiceRepository, clientRepo *repository.ClientRepository, settingRepo *repository.SettingRepository) *FinancialService {
	return &FinancialService{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		settingRepo: settingRepo,
		now:         time.Now,
	}
}

// Summary returns open, recently paid and overdue totals plus the PIX key.
func (s *FinancialService) Summary(ctx context.Context) (*models.FinancialSummary, error) {
	now := s.now().UTC()
	today := startOfDay(now)

	var out models.FinancialSummary
	var err error
	if out.Open, err = s.invoiceRepo.Totals(ctx, models.InvoiceOpen, repository.DateRange{}); err != nil {
		return nil, fmt.Errorf("open totals: %w", err)
	}
	if out.PaidLast, err = s.invoiceRepo.Totals(ctx, models.InvoicePaid, repository.DateRange{From: now.Add(-paidWindow)}); err != nil {
		return nil, fmt.Errorf("paid totals: %w", err)
	}
	if out.Overdue, err = s.invoiceRepo.Totals(ctx, models.InvoiceOpen, repository.DateRange{Before: today}); err != nil {
		return nil, fmt.Errorf("overdue totals: %w", err)
	}
	if out.PixKey, err = s.PixKey(ctx); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListInvoices returns a page of invoices.
func (s *FinancialService) ListInvoices(ctx context.Context, q repository.ListQuery) repository.Page[models.Invoice] {
	return s.invoiceRepo.List(ctx, q)
}

// CreateInvoiceRequest issues a new invoice. DueDate uses DateLayout.
type CreateInvoiceRequest struct {
	ClientID    int     `json:"client_id" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	DueDate     string  `json:"due_date" binding:"required"`
	Description *string `json:"description"`
}

// CreateInvoice issues an open invoice for an existing client and returns
// the new invoice id.
func (s *FinancialService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (int, error) {
	if req.Amount <= 0 {
		return 0, validationError("amount must be greater than zero")
	}
	due, err := time.Parse(DateLayout, strings.TrimSpace(req.DueDate))
	if err != nil {
		return 0, validationError("due_date must be formatted as YYYY-MM-DD")
	}

	ok, err := s.clientRepo.Exists(ctx, req.ClientID)
	if err != nil {
		return 0, fmt.Errorf("check client: %w", err)
	}
	if !ok {
		return 0, ErrClientNotFound
	}

	id, err := s.invoiceRepo.Create(ctx, req.ClientID, req.Amount, due, trimmedOrNil(req.Description), s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("create invoice: %w", err)
	}
	log.Info().Int("invoice_id", id).Int("client_id", req.ClientID).Float64("amount", req.Amount).Msg("Invoice created")
	return id, nil
}

// PixKey returns the configured PIX key, or "" when none is set.
func (s *FinancialService) PixKey(ctx context.Context) (string, error) {
	v, err := s.settingRepo.Get(ctx, repository.SettingPixKey)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load pix key: %w", err)
	}
	return v, nil
}

// SetPixKey stores the PIX key.
func (s *FinancialService) SetPixKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return validationError("pix_key is required")
	}
	if err := s.settingRepo.Set(ctx, repository.SettingPixKey, key); err != nil {
		return fmt.Errorf("save pix key: %w", err)
	}
	return nil
}

// Report aggregates invoices due within period.
func (s *FinancialService) Report(ctx context.Context, period string) (*models.FinancialReport, error) {
	name, start, end := PeriodRange(period, s.now().UTC())
	rng := repository.DateRange{From: start, Before: end}

	byStatus, err := s.invoiceRepo.TotalsByStatus(ctx, rng)
	if err != nil {
		return nil, fmt.Errorf("totals by status: %w", err)
	}
	paid, err := s.invoiceRepo.Paid(ctx, rng)
	if err != nil {
		return nil, fmt.Errorf("paid invoices: %w", err)
	}

	r := &models.FinancialReport{
		Period:       name,
		Start:        start,
		End:          end,
		ByStatus:     byStatus,
		DailyRevenue: groupRevenue(paid, DateLayout),
	}
	for _, p := range paid {
		r.RevenueTotal += p.Amount
	}
	return r, nil
}

// groupRevenue sums paid amounts keyed by due date formatted with layout.
func groupRevenue(paid []repository.PaidAmount, layout string) map[string]float64 {
	out := make(map[string]float64)
	for _, p := range paid {
		out[p.DueDate.Format(layout)] += p.Amount
	}
	return out
}
