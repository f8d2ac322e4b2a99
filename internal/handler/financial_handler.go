package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/opsdash/internal/service"
	"github.com/GTDGit/opsdash/internal/utils"
)

// FinancialHandler handles invoices, the PIX key and financial reports.
type FinancialHandler struct {
	financialService *service.FinancialService
}

// NewFinancialHandler constructs a FinancialHandler.
func NewFinancialHandler(financialService *service.FinancialService) *FinancialHandler {
	return &FinancialHandler{financialService: financialService}
}

// Summary handles GET /financial
func (h *FinancialHandler) Summary(c *gin.Context) {
	s, err := h.financialService.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load financial summary")
		return
	}
	utils.Success(c, http.StatusOK, "Financial summary", s)
}

// ListInvoices handles GET /financial/invoices
func (h *FinancialHandler) ListInvoices(c *gin.Context) {
	utils.Page(c, "Invoices retrieved", h.financialService.ListInvoices(c.Request.Context(), listQuery(c)))
}

// CreateInvoice handles POST /financial/invoices
func (h *FinancialHandler) CreateInvoice(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	id, err := h.financialService.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create invoice")
		return
	}
	utils.Success(c, http.StatusCreated, "Invoice created successfully", gin.H{"id": id})
}

// GetPixKey handles GET /financial/pix
func (h *FinancialHandler) GetPixKey(c *gin.Context) {
	key, err := h.financialService.PixKey(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load PIX key")
		return
	}
	utils.Success(c, http.StatusOK, "PIX key retrieved", gin.H{"pixKey": key})
}

// SetPixKey handles PUT /financial/pix
func (h *FinancialHandler) SetPixKey(c *gin.Context) {
	var req struct {
		PixKey string `json:"pix_key" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := h.financialService.SetPixKey(c.Request.Context(), req.PixKey); err != nil {
		respondError(c, err, "Failed to save PIX key")
		return
	}
	utils.Success(c, http.StatusOK, "PIX key saved", gin.H{"pixKey": req.PixKey})
}

// Report handles GET /financial/reports
func (h *FinancialHandler) Report(c *gin.Context) {
	r, err := h.financialService.Report(c.Request.Context(), c.DefaultQuery("period", service.PeriodMonth))
	if err != nil {
		respondError(c, err, "Failed to build financial report")
		return
	}
	utils.Success(c, http.StatusOK, "Financial report", r)
}
