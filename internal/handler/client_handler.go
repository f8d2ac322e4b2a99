package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/opsdash/internal/service"
	"github.com/GTDGit/opsdash/internal/utils"
)

// ClientHandler handles the client pages.
type ClientHandler struct {
	clientService *service.ClientService
}

// NewClientHandler constructs a ClientHandler.
func NewClientHandler(clientService *service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// ListClients handles GET /clients
func (h *ClientHandler) ListClients(c *gin.Context) {
	utils.Page(c, "Clients retrieved", h.clientService.List(c.Request.Context(), listQuery(c)))
}

// GetClient handles GET /clients/:id
func (h *ClientHandler) GetClient(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	d, err := h.clientService.Detail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to retrieve client")
		return
	}
	utils.Success(c, http.StatusOK, "Client retrieved", d)
}

// UpdateClient handles PUT /clients/:id
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req service.UpdateClientRequest
	if !bindJSON(c, &req) {
		return
	}
	client, err := h.clientService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Failed to update client")
		return
	}
	utils.Success(c, http.StatusOK, "Client updated successfully", client)
}
