package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/GTDGit/opsdash/internal/models"
	"github.com/GTDGit/opsdash/internal/repository"
)

// detailLimit is how many related rows a detail page shows per block.
const detailLimit = 10

// ClientService serves the client pages.
type ClientService struct {
	clientRepo  *repository.ClientRepository
	orderRepo   *repository.OrderRepository
	invoiceRepo *repository.InvoiceRepository
}

// NewClientService constructs a ClientService.
func NewClientService(clientRepo *repository.ClientRepository, orderRepo *repository.OrderRepository, invoiceRepo *repository.InvoiceRepository) *ClientService {
	return &ClientService{clientRepo: clientRepo, orderRepo: orderRepo, invoiceRepo: invoiceRepo}
}

// ClientDetail is a client with its latest activity.
type ClientDetail struct {
	Client       *models.Client          `json:"client"`
	Appointments []models.Appointment    `json:"appointments"`
	Orders       []models.OrderSummary   `json:"orders"`
	Invoices     []models.InvoiceSummary `json:"invoices"`
}

// List returns a page of clients.
func (s *ClientService) List(ctx context.Context, q repository.ListQuery) repository.Page[models.Client] {
	return s.clientRepo.List(ctx, q)
}

// Detail returns a client with its last appointments, orders and invoices.
func (s *ClientService) Detail(ctx context.Context, id int) (*ClientDetail, error) {
	c, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("load client: %w", err)
	}

	d := &ClientDetail{Client: c}
	if d.Appointments, err = s.clientRepo.RecentAppointments(ctx, id, detailLimit); err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}
	if d.Orders, err = s.orderRepo.RecentByClient(ctx, id, detailLimit); err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	if d.Invoices, err = s.invoiceRepo.RecentByClient(ctx, id, detailLimit); err != nil {
		return nil, fmt.Errorf("load invoices: %w", err)
	}
	return d, nil
}

// UpdateClientRequest carries the editable client fields.
type UpdateClientRequest struct {
	Name    string  `json:"name" binding:"required"`
	Address *string `json:"address"`
}

// Update changes a client's name and address.
func (s *ClientService) Update(ctx context.Context, id int, req UpdateClientRequest) (*models.Client, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("name is required")
	}
	fields := map[repository.ClientField]any{repository.ClientName: name}
	if req.Address != nil {
		addr := strings.TrimSpace(*req.Address)
		fields[repository.ClientAddress] = addr
	}

	if err := s.clientRepo.Update(ctx, id, fields); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("update client: %w", err)
	}

	c, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload client: %w", err)
	}
	return c, nil
}
