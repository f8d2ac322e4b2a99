package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/opsdash/internal/auth"
	"github.com/GTDGit/opsdash/internal/middleware"
	"github.com/GTDGit/opsdash/internal/models"
	"github.com/GTDGit/opsdash/internal/service"
	"github.com/GTDGit/opsdash/internal/utils"
)

// AuthHandler handles login, logout and account management.
type AuthHandler struct {
	authService *service.AuthService
	sessions    *middleware.SessionMiddleware
	limiter     *middleware.InvalidAuthRateLimiter
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(authService *service.AuthService, sessions *middleware.SessionMiddleware, limiter *middleware.InvalidAuthRateLimiter) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, limiter: limiter}
}

type userView struct {
	*models.User
	RoleName    string            `json:"roleName"`
	Permissions []auth.Permission `json:"permissions"`
}

func viewUser(u *models.User) userView {
	role := auth.Role(u.Role)
	return userView{User: u, RoleName: role.DisplayName(), Permissions: auth.RolePermissions(role)}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	u, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			h.limiter.Allow(c.ClientIP())
			utils.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
		case errors.Is(err, service.ErrAccountInactive):
			utils.Error(c, http.StatusUnauthorized, "ACCOUNT_INACTIVE", "Account is inactive")
		default:
			respondError(c, err, "Login failed")
		}
		return
	}

	token, err := h.sessions.Store().Create(c.Request.Context(), service.NewSession(u))
	if err != nil {
		log.Error().Err(err).Int("user_id", u.ID).Msg("Failed to create session")
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed")
		return
	}
	h.sessions.SetCookie(c, token)

	utils.Success(c, http.StatusOK, "Login successful", viewUser(u))
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := middleware.GetSessionToken(c); token != "" {
		if err := h.sessions.Store().Delete(c.Request.Context(), token); err != nil {
			log.Warn().Err(err).Msg("Failed to delete session")
		}
	}
	h.sessions.ClearCookie(c)
	utils.Success(c, http.StatusOK, "Logged out", nil)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	sess := middleware.GetSession(c)
	utils.Success(c, http.StatusOK, "Session retrieved", gin.H{
		"userId":      sess.UserID,
		"username":    sess.Username,
		"fullName":    sess.FullName,
		"role":        sess.Role,
		"roleName":    sess.Role.DisplayName(),
		"permissions": auth.RolePermissions(sess.Role),
		"expiresAt":   sess.ExpiresAt,
	})
}

// ListUsers handles GET /auth/users
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.authService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve users")
		return
	}
	out := make([]userView, 0, len(users))
	for i := range users {
		out = append(out, viewUser(&users[i]))
	}
	utils.Success(c, http.StatusOK, "Users retrieved", out)
}

// CreateUser handles POST /auth/users
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.authService.CreateUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create user")
		return
	}
	log.Info().Str("username", u.Username).Str("by", middleware.GetSession(c).Username).Msg("User created")
	utils.Success(c, http.StatusCreated, "User created successfully", viewUser(u))
}

// ToggleUser handles POST /auth/users/:id/toggle
func (h *AuthHandler) ToggleUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	u, err := h.authService.ToggleUser(c.Request.Context(), middleware.GetSession(c).UserID, id)
	if err != nil {
		respondError(c, err, "Failed to update user")
		return
	}
	msg := "User deactivated"
	if u.IsActive {
		msg = "User activated"
	}
	utils.Success(c, http.StatusOK, msg, viewUser(u))
}

// GetProfile handles GET /dashboard/profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	u, err := h.authService.GetUser(c.Request.Context(), middleware.GetSession(c).UserID)
	if err != nil {
		respondError(c, err, "Failed to retrieve profile")
		return
	}
	utils.Success(c, http.StatusOK, "Profile retrieved", viewUser(u))
}

// UpdateProfile handles PUT /dashboard/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req service.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.authService.UpdateProfile(c.Request.Context(), middleware.GetSession(c).UserID, req)
	if err != nil {
		respondError(c, err, "Failed to update profile")
		return
	}
	utils.Success(c, http.StatusOK, "Profile updated successfully", viewUser(u))
}
