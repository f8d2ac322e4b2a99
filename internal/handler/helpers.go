package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/opsdash/internal/repository"
	"github.com/GTDGit/opsdash/internal/service"
	"github.com/GTDGit/opsdash/internal/utils"
)

// listQuery reads search, status and page from the query string. A
// malformed page falls back to the first one.
func listQuery(c *gin.Context) repository.ListQuery {
	page, _ := strconv.Atoi(c.Query("page"))
	return repository.ListQuery{
		Search: c.Query("search"),
		Status: c.DefaultQuery("status", repository.StatusAll),
		Page:   page,
	}.Normalize()
}

// paramID parses the :id path parameter, answering 400 when invalid.
func paramID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		utils.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid id")
		return 0, false
	}
	return id, true
}

// respondError maps service errors onto the response envelope. Anything
// unknown is logged and answered with 500 and fallback.
func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		msg := strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": ")
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", msg)
	case errors.Is(err, service.ErrPermissionDenied):
		utils.Error(c, http.StatusForbidden, "PERMISSION_DENIED", "You do not have permission to access this page")
	case errors.Is(err, service.ErrUserNotFound):
		utils.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrClientNotFound):
		utils.Error(c, http.StatusNotFound, "CLIENT_NOT_FOUND", "Client not found")
	case errors.Is(err, service.ErrTechnicianNotFound):
		utils.Error(c, http.StatusNotFound, "TECHNICIAN_NOT_FOUND", "Technician not found")
	case errors.Is(err, service.ErrOrderNotFound):
		utils.Error(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Service order not found")
	case errors.Is(err, service.ErrUsernameExists):
		utils.Error(c, http.StatusConflict, "USERNAME_EXISTS", "Username already exists")
	case errors.Is(err, service.ErrEmailExists):
		utils.Error(c, http.StatusConflict, "EMAIL_EXISTS", "Email already in use")
	case errors.Is(err, service.ErrWhatsAppExists):
		utils.Error(c, http.StatusConflict, "WHATSAPP_EXISTS", "WhatsApp number already registered")
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return false
	}
	return true
}
