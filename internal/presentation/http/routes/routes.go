// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/AtRiskMedia/scarcity-go/internal/application/container"
	"github.com/AtRiskMedia/scarcity-go/internal/presentation/http/handlers"
	"github.com/AtRiskMedia/scarcity-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware(container.Config.CORSOrigins))

	// Initialize handlers
	urgencyHandlers := handlers.NewUrgencyHandlers(container.UrgencyService, container.Logger, container.PerfTracker)
	reservationHandlers := handlers.NewReservationHandlers(container.ReservationService, container.Logger, container.PerfTracker)
	dashboardHandlers := handlers.NewDashboardHandlers(container.DashboardService, container.Logger, container.PerfTracker)
	authHandlers := handlers.NewAuthHandlers(container.AuthService, container.Logger)
	sysopHandlers := handlers.NewSysOpHandlers(container.Logger, container.LogBroadcaster, container.PerfTracker)
	wsHandlers := handlers.NewWebSocketHandlers(container.Broadcaster, container.Config.CORSOrigins, container.Logger)
	healthHandlers := handlers.NewHealthHandlers(container.Engine)

	r.GET("/healthz", healthHandlers.GetHealth)

	api := r.Group("/api/v1")
	api.Use(middleware.VisitorMiddleware())
	{
		api.GET("/urgency/:packageId", urgencyHandlers.GetUrgency)
		api.GET("/inventory", urgencyHandlers.GetInventory)
		api.POST("/track", urgencyHandlers.PostTrack)
		api.GET("/social-proof", urgencyHandlers.GetSocialProof)
		api.GET("/ws", wsHandlers.HandleWebSocket)

		reservations := api.Group("/reservations")
		{
			reservations.POST("", reservationHandlers.PostReserve)
			reservations.POST("/complete", reservationHandlers.PostComplete)
			reservations.POST("/cancel", reservationHandlers.PostCancel)
		}

		api.POST("/admin/login", authHandlers.PostLogin)

		admin := api.Group("/admin")
		admin.Use(authHandlers.AdminAuthMiddleware())
		{
			admin.GET("/dashboard", dashboardHandlers.GetDashboard)
			admin.GET("/performance", sysopHandlers.GetPerformance)
			admin.GET("/logs/levels", sysopHandlers.GetLogLevels)
			admin.POST("/logs/levels", sysopHandlers.SetLogLevel)
			admin.GET("/logs/stream", sysopHandlers.StreamLogs)
		}
	}

	return r
}
