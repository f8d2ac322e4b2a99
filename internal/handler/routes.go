package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GTDGit/opsdash/internal/auth"
	"github.com/GTDGit/opsdash/internal/middleware"
)

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health     *HealthHandler
	Auth       *AuthHandler
	Dashboard  *DashboardHandler
	Client     *ClientHandler
	Technician *TechnicianHandler
	Order      *OrderHandler
	Financial  *FinancialHandler
}

// RegisterRoutes registers all routes. Every route except health, metrics
// and login requires a session; permissions are checked per route.
func RegisterRoutes(router *gin.Engine, h *Handlers, sessions *middleware.SessionMiddleware, limiter *middleware.InvalidAuthRateLimiter) {
	router.GET("/health", h.Health.GetHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/auth/login", limiter.RejectBlocked(), h.Auth.Login)

	authed := router.Group("/", sessions.Handle())

	authGroup := authed.Group("/auth")
	authGroup.POST("/logout", h.Auth.Logout)
	authGroup.GET("/me", h.Auth.Me)
	users := authGroup.Group("/users", middleware.RequirePermission(auth.PermManageUsers))
	users.GET("", h.Auth.ListUsers)
	users.POST("", h.Auth.CreateUser)
	users.POST("/:id/toggle", h.Auth.ToggleUser)

	dashboard := authed.Group("/dashboard")
	dashboard.GET("", h.Dashboard.Overview)
	dashboard.GET("/profile", h.Auth.GetProfile)
	dashboard.PUT("/profile", h.Auth.UpdateProfile)
	dashboard.POST("/stats/snapshot", middleware.RequirePermission(auth.PermViewReports), h.Dashboard.Snapshot)
	dashboard.GET("/stats/history", middleware.RequirePermission(auth.PermViewReports), h.Dashboard.History)

	clients := authed.Group("/clients")
	clients.GET("", middleware.RequirePermission(auth.PermViewClients, auth.PermViewAll), h.Client.ListClients)
	clients.GET("/:id", middleware.RequirePermission(auth.PermViewClients, auth.PermViewAll), h.Client.GetClient)
	clients.PUT("/:id", middleware.RequirePermission(auth.PermEditClients, auth.PermEditAll), h.Client.UpdateClient)

	techs := authed.Group("/technicians")
	techs.GET("", middleware.RequirePermission(auth.PermViewAll), h.Technician.ListTechnicians)
	techs.GET("/performance", middleware.RequirePermission(auth.PermViewReports), h.Technician.Performance)
	techs.GET("/:id", middleware.RequirePermission(auth.PermViewAll), h.Technician.GetTechnician)
	techs.POST("", middleware.RequirePermission(auth.PermEditAll), h.Technician.CreateTechnician)
	techs.PUT("/:id", middleware.RequirePermission(auth.PermEditAll), h.Technician.UpdateTechnician)

	// Order detail and update check ownership in the service.
	orders := authed.Group("/orders")
	orders.GET("", middleware.RequirePermission(auth.PermViewOrders, auth.PermViewAll), h.Order.ListOrders)
	orders.GET("/options", middleware.RequirePermission(auth.PermEditOrders, auth.PermEditAll), h.Order.Options)
	orders.GET("/map", middleware.RequirePermission(auth.PermViewAll), h.Order.Map)
	orders.POST("", middleware.RequirePermission(auth.PermEditOrders, auth.PermEditAll), h.Order.CreateOrder)
	orders.GET("/:id", middleware.RequirePermission(auth.PermViewOrders, auth.PermViewAll), h.Order.GetOrder)
	orders.PUT("/:id", middleware.RequirePermission(auth.PermEditOrders, auth.PermEditAll, auth.PermEditOwnOrders), h.Order.UpdateOrder)

	financial := authed.Group("/financial")
	financial.GET("", middleware.RequirePermission(auth.PermViewFinancial, auth.PermViewAll), h.Financial.Summary)
	financial.GET("/invoices", middleware.RequirePermission(auth.PermViewFinancial, auth.PermViewAll), h.Financial.ListInvoices)
	financial.POST("/invoices", middleware.RequirePermission(auth.PermEditAll), h.Financial.CreateInvoice)
	financial.GET("/pix", middleware.RequirePermission(auth.PermEditAll), h.Financial.GetPixKey)
	financial.PUT("/pix", middleware.RequirePermission(auth.PermEditAll), h.Financial.SetPixKey)
	financial.GET("/reports", middleware.RequirePermission(auth.PermViewReports), h.Financial.Report)
}
