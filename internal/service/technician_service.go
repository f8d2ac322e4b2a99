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

// TechnicianService serves the technician pages.
type TechnicianService struct {
	techRepo  *repository.TechnicianRepository
	orderRepo *repository.OrderRepository
	now       func() time.Time
}

// NewTechnicianService constructs a TechnicianService.
func NewTechnicianService(techRepo *repository.TechnicianRepository, orderRepo *repository.OrderRepository) *TechnicianService {
	return &TechnicianService{techRepo: techRepo, orderRepo: orderRepo, now: time.Now}
}

// TechnicianDetail is a technician with its latest orders and statistics.
type TechnicianDetail struct {
	Technician *models.Technician     `json:"technician"`
	Orders     []models.OrderSummary  `json:"orders"`
	Stats      models.TechnicianStats `json:"stats"`
}

// PerformanceReport ranks technicians by completed orders in a period.
type PerformanceReport struct {
	Period      string                         `json:"period"`
	Start       time.Time                      `json:"start"`
	End         time.Time                      `json:"end"`
	Technicians []models.TechnicianPerformance `json:"technicians"`
}

// List returns a page of technicians.
func (s *TechnicianService) List(ctx context.Context, q repository.ListQuery) repository.Page[models.Technician] {
	return s.techRepo.List(ctx, q)
}

// Detail returns a technician with its last orders and order statistics.
func (s *TechnicianService) Detail(ctx context.Context, id int) (*TechnicianDetail, error) {
	t, err := s.techRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTechnicianNotFound
		}
		return nil, fmt.Errorf("load technician: %w", err)
	}

	d := &TechnicianDetail{Technician: t}
	if d.Orders, err = s.orderRepo.RecentByTechnician(ctx, id, detailLimit); err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	if d.Stats, err = s.techRepo.Stats(ctx, id); err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}
	return d, nil
}

// CreateTechnicianRequest registers a new technician.
type CreateTechnicianRequest struct {
	Name           string `json:"name" binding:"required"`
	WhatsAppNumber string `json:"whatsapp_number" binding:"required"`
}

// Create registers an offline technician. The WhatsApp number must be unique.
func (s *TechnicianService) Create(ctx context.Context, req CreateTechnicianRequest) (*models.Technician, error) {
	name := strings.TrimSpace(req.Name)
	number := strings.TrimSpace(req.WhatsAppNumber)
	if name == "" || number == "" {
		return nil, validationError("name and whatsapp_number are required")
	}

	taken, err := s.techRepo.WhatsAppTaken(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("check whatsapp: %w", err)
	}
	if taken {
		return nil, ErrWhatsAppExists
	}

	id, err := s.techRepo.Create(ctx, name, number, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("create technician: %w", err)
	}
	log.Info().Int("technician_id", id).Str("name", name).Msg("Technician registered")

	return s.techRepo.GetByID(ctx, id)
}

// UpdateTechnicianRequest carries the editable technician fields.
type UpdateTechnicianRequest struct {
	Name   string `json:"name" binding:"required"`
	Status string `json:"status" binding:"required"`
}

// Update changes a technician's name and status.
func (s *TechnicianService) Update(ctx context.Context, id int, req UpdateTechnicianRequest) (*models.Technician, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("name is required")
	}
	if !models.ValidTechnicianStatus(req.Status) {
		return nil, validationError("status must be available, busy or offline")
	}

	err := s.techRepo.Update(ctx, id, map[repository.TechnicianField]any{
		repository.TechnicianName:   name,
		repository.TechnicianStatus: req.Status,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTechnicianNotFound
		}
		return nil, fmt.Errorf("update technician: %w", err)
	}
	return s.techRepo.GetByID(ctx, id)
}

// Performance reports completed orders per technician for orders created
// since the start of period.
func (s *TechnicianService) Performance(ctx context.Context, period string) (*PerformanceReport, error) {
	name, start, end := PeriodRange(period, s.now())
	rows, err := s.techRepo.Performance(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("load performance: %w", err)
	}
	return &PerformanceReport{Period: name, Start: start, End: end, Technicians: rows}, nil
}
