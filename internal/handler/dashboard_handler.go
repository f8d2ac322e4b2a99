package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/opsdash/internal/service"
	"github.com/GTDGit/opsdash/internal/utils"
)

// DashboardHandler serves the landing dashboard and its snapshots.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Overview handles GET /dashboard. Blocks that failed to load are listed in
// data.failed; the response is still 200.
func (h *DashboardHandler) Overview(c *gin.Context) {
	utils.Success(c, http.StatusOK, "Dashboard retrieved", h.dashboardService.Overview(c.Request.Context()))
}

// Snapshot handles POST /dashboard/stats/snapshot
func (h *DashboardHandler) Snapshot(c *gin.Context) {
	s, err := h.dashboardService.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to save snapshot")
		return
	}
	utils.Success(c, http.StatusCreated, "Snapshot saved", s)
}

// History handles GET /dashboard/stats/history
func (h *DashboardHandler) History(c *gin.Context) {
	days, _ := strconv.Atoi(c.Query("days"))
	out, err := h.dashboardService.History(c.Request.Context(), days)
	if err != nil {
		respondError(c, err, "Failed to load snapshot history")
		return
	}
	utils.Success(c, http.StatusOK, "Snapshot history", out)
}
