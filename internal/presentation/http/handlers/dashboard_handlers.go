package handlers

import (
	"net/http"

	"github.com/AtRiskMedia/scarcity-go/internal/application/services"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// DashboardHandlers serves the admin sales report.
type DashboardHandlers struct {
	dashboardService *services.DashboardService
	logger           *logging.ChanneledLogger
	perfTracker      *performance.Tracker
}

// NewDashboardHandlers creates dashboard handlers with injected dependencies
func NewDashboardHandlers(dashboardService *services.DashboardService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *DashboardHandlers {
	return &DashboardHandlers{
		dashboardService: dashboardService,
		logger:           logger,
		perfTracker:      perfTracker,
	}
}

// GetDashboard handles GET /api/v1/admin/dashboard
func (h *DashboardHandlers) GetDashboard(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_dashboard_request", "admin")
	defer marker.Complete()

	dashboard, err := h.dashboardService.Dashboard(c.Request.Context())
	if err != nil {
		marker.SetError(err)
		h.logger.Analytics().Error("Dashboard generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard"})
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Debug("Performance for GetDashboard request", "duration", marker.Elapsed())
	c.JSON(http.StatusOK, dashboard)
}
