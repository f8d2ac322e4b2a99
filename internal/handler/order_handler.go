package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/opsdash/internal/middleware"
	"github.com/GTDGit/opsdash/internal/service"
	"github.com/GTDGit/opsdash/internal/utils"
)

// OrderHandler handles the service order pages.
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// ListOrders handles GET /orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	page := h.orderService.List(c.Request.Context(), middleware.GetSession(c), listQuery(c))
	utils.Page(c, "Service orders retrieved", page)
}

// Options handles GET /orders/options
func (h *OrderHandler) Options(c *gin.Context) {
	opts, err := h.orderService.Options(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load form options")
		return
	}
	utils.Success(c, http.StatusOK, "Options retrieved", opts)
}

// CreateOrder handles POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	o, err := h.orderService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create service order")
		return
	}
	utils.Success(c, http.StatusCreated, "Service order created successfully", o)
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	d, err := h.orderService.Detail(c.Request.Context(), middleware.GetSession(c), id)
	if err != nil {
		respondError(c, err, "Failed to retrieve service order")
		return
	}
	utils.Success(c, http.StatusOK, "Service order retrieved", d)
}

// UpdateOrder handles PUT /orders/:id
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req service.UpdateOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	o, err := h.orderService.Update(c.Request.Context(), middleware.GetSession(c), id, req)
	if err != nil {
		respondError(c, err, "Failed to update service order")
		return
	}
	utils.Success(c, http.StatusOK, "Service order updated successfully", o)
}

// Map handles GET /orders/map
func (h *OrderHandler) Map(c *gin.Context) {
	m, err := h.orderService.Map(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load dispatch map")
		return
	}
	utils.Success(c, http.StatusOK, "Dispatch map retrieved", m)
}
