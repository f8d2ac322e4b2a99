package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/opsdash/internal/auth"
	"github.com/GTDGit/opsdash/internal/models"
	"github.com/GTDGit/opsdash/internal/photos"
	"github.com/GTDGit/opsdash/internal/repository"
)

// OrderService serves the service order pages and enforces technician
// ownership.
type OrderService struct {
	orderRepo  *repository.OrderRepository
	clientRepo *repository.ClientRepository
	techRepo   *repository.TechnicianRepository
	signer     photos.Signer
	now        func() time.Time
}

// NewOrderService constructs an OrderService. A nil signer returns photo
// references unchanged.
func NewOrderService(orderRepo *repository.OrderRepository, clientRepo *repository.ClientRepository, techRepo *repository.TechnicianRepository, signer photos.Signer) *OrderService {
	if signer == nil {
		signer = photos.Passthrough{}
	}
	return &OrderService{
		orderRepo:  orderRepo,
		clientRepo: clientRepo,
		techRepo:   techRepo,
		signer:     signer,
		now:        time.Now,
	}
}

// OrderOptions feeds the create order form.
type OrderOptions struct {
	Clients     []models.ClientOption     `json:"clients"`
	Technicians []models.TechnicianOption `json:"technicians"`
}

// OrderDetail is an order with its photos grouped by photo type.
type OrderDetail struct {
	Order  *models.ServiceOrder             `json:"order"`
	Photos map[string][]models.ServicePhoto `json:"photos"`
}

// DispatchMap lists what is currently in the field.
type DispatchMap struct {
	Technicians []models.Technician `json:"technicians"`
	Orders      []models.MapOrder   `json:"orders"`
}

// List returns a page of orders visible to sess. Technician sessions only
// see orders of the technician record whose WhatsApp number matches their
// username; without such a record they see nothing.
func (s *OrderService) List(ctx context.Context, sess *auth.Session, q repository.ListQuery) repository.Page[models.ServiceOrder] {
	if sess != nil && sess.Role == auth.RoleTechnician {
		id, err := s.techRepo.IDByWhatsApp(ctx, sess.Username)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				log.Error().Err(err).Str("username", sess.Username).Msg("Failed to resolve technician record")
				p := repository.EmptyPage[models.ServiceOrder](q.Normalize().Page)
				p.Failed = true
				return p
			}
			log.Warn().Str("username", sess.Username).Msg("Technician account has no technician record")
			return repository.EmptyPage[models.ServiceOrder](q.Normalize().Page)
		}
		return s.orderRepo.List(ctx, q, &id)
	}
	return s.orderRepo.List(ctx, q, nil)
}

// Options returns the clients and assignable technicians for new orders.
func (s *OrderService) Options(ctx context.Context) (*OrderOptions, error) {
	clients, err := s.clientRepo.Options(ctx)
	if err != nil {
		return nil, fmt.Errorf("load clients: %w", err)
	}
	techs, err := s.techRepo.Assignable(ctx)
	if err != nil {
		return nil, fmt.Errorf("load technicians: %w", err)
	}
	return &OrderOptions{Clients: clients, Technicians: techs}, nil
}

// CreateOrderRequest opens a new service order.
type CreateOrderRequest struct {
	ClientID     int     `json:"client_id" binding:"required"`
	TechnicianID *int    `json:"technician_id"`
	Notes        *string `json:"notes"`
}

// Create opens an order. It starts assigned when a technician is given and
// pending otherwise.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*models.ServiceOrder, error) {
	ok, err := s.clientRepo.Exists(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("check client: %w", err)
	}
	if !ok {
		return nil, ErrClientNotFound
	}

	status := models.OrderPending
	if req.TechnicianID != nil {
		ok, err := s.techRepo.Exists(ctx, *req.TechnicianID)
		if err != nil {
			return nil, fmt.Errorf("check technician: %w", err)
		}
		if !ok {
			return nil, ErrTechnicianNotFound
		}
		status = models.OrderAssigned
	}

	notes := trimmedOrNil(req.Notes)
	id, err := s.orderRepo.Create(ctx, req.ClientID, req.TechnicianID, status, notes, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	log.Info().Int("order_id", id).Int("client_id", req.ClientID).Str("status", status).Msg("Service order created")

	return s.orderRepo.GetByID(ctx, id)
}

// Detail returns an order visible to sess together with its photos.
func (s *OrderService) Detail(ctx context.Context, sess *auth.Session, id int) (*OrderDetail, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanViewOrder(sess, o.AssignedWhatsApp()) {
		return nil, ErrPermissionDenied
	}

	list, err := s.orderRepo.Photos(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load photos: %w", err)
	}
	grouped := make(map[string][]models.ServicePhoto)
	for _, p := range list {
		url, err := s.signer.URL(ctx, p.PhotoURL)
		if err != nil {
			log.Warn().Err(err).Int("photo_id", p.ID).Msg("Failed to sign photo URL")
		} else {
			p.PhotoURL = url
		}
		grouped[p.Type] = append(grouped[p.Type], p)
	}
	return &OrderDetail{Order: o, Photos: grouped}, nil
}

// UpdateOrderRequest changes an order. Nil fields are left untouched.
type UpdateOrderRequest struct {
	Status       *string `json:"status"`
	Notes        *string `json:"notes"`
	TechnicianID *int    `json:"technician_id"`
}

// Update applies req to an order editable by sess. Moving to completed
// stamps completed_at. Reassignment is only honored for sessions holding
// edit_all and is silently skipped otherwise.
func (s *OrderService) Update(ctx context.Context, sess *auth.Session, id int, req UpdateOrderRequest) (*models.ServiceOrder, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanEditOrder(sess, o.AssignedWhatsApp()) {
		return nil, ErrPermissionDenied
	}

	fields := map[repository.OrderField]any{}
	if req.Status != nil {
		status := strings.TrimSpace(*req.Status)
		if !models.ValidOrderStatus(status) {
			return nil, validationError("status %q is not a valid order status", status)
		}
		fields[repository.OrderStatus] = status
		if status == models.OrderCompleted && o.Status != models.OrderCompleted {
			fields[repository.OrderCompletedAt] = s.now().UTC()
		}
	}
	if req.Notes != nil {
		fields[repository.OrderNotes] = trimmedOrNil(req.Notes)
	}
	if req.TechnicianID != nil && auth.Authorize(sess, auth.PermEditAll) {
		ok, err := s.techRepo.Exists(ctx, *req.TechnicianID)
		if err != nil {
			return nil, fmt.Errorf("check technician: %w", err)
		}
		if !ok {
			return nil, ErrTechnicianNotFound
		}
		fields[repository.OrderTechnician] = *req.TechnicianID
	}
	if len(fields) == 0 {
		return nil, validationError("nothing to update")
	}

	if err := s.orderRepo.Update(ctx, id, fields); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("update order: %w", err)
	}
	log.Info().Int("order_id", id).Str("by", sess.Username).Int("fields", len(fields)).Msg("Service order updated")

	return s.orderRepo.GetByID(ctx, id)
}

// Map returns located technicians and active orders for the dispatch map.
func (s *OrderService) Map(ctx context.Context) (*DispatchMap, error) {
	techs, err := s.techRepo.Located(ctx)
	if err != nil {
		return nil, fmt.Errorf("load technicians: %w", err)
	}
	orders, err := s.orderRepo.Active(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active orders: %w", err)
	}
	return &DispatchMap{Technicians: techs, Orders: orders}, nil
}

func (s *OrderService) load(ctx context.Context, id int) (*models.ServiceOrder, error) {
	o, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("load order: %w", err)
	}
	return o, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
