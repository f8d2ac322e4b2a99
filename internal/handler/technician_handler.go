package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/opsdash/internal/service"
	"github.com/GTDGit/opsdash/internal/utils"
)

// TechnicianHandler handles the technician pages.
type TechnicianHandler struct {
	techService *service.TechnicianService
}

// NewTechnicianHandler constructs a TechnicianHandler.
func NewTechnicianHandler(techService *service.TechnicianService) *TechnicianHandler {
	return &TechnicianHandler{techService: techService}
}

// ListTechnicians handles GET /technicians
func (h *TechnicianHandler) ListTechnicians(c *gin.Context) {
	utils.Page(c, "Technicians retrieved", h.techService.List(c.Request.Context(), listQuery(c)))
}

// GetTechnician handles GET /technicians/:id
func (h *TechnicianHandler) GetTechnician(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	d, err := h.techService.Detail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to retrieve technician")
		return
	}
	utils.Success(c, http.StatusOK, "Technician retrieved", d)
}

// CreateTechnician handles POST /technicians
func (h *TechnicianHandler) CreateTechnician(c *gin.Context) {
	var req service.CreateTechnicianRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.techService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create technician")
		return
	}
	utils.Success(c, http.StatusCreated, "Technician created successfully", t)
}

// UpdateTechnician handles PUT /technicians/:id
func (h *TechnicianHandler) UpdateTechnician(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req service.UpdateTechnicianRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.techService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Failed to update technician")
		return
	}
	utils.Success(c, http.StatusOK, "Technician updated successfully", t)
}

// Performance handles GET /technicians/performance
func (h *TechnicianHandler) Performance(c *gin.Context) {
	r, err := h.techService.Performance(c.Request.Context(), c.DefaultQuery("period", service.PeriodMonth))
	if err != nil {
		respondError(c, err, "Failed to build performance report")
		return
	}
	utils.Success(c, http.StatusOK, "Performance report", r)
}
