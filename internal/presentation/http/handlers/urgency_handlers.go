package handlers

import (
	"net/http"
	"strings"

	"github.com/AtRiskMedia/scarcity-go/internal/application/services"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/scarcity-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// UrgencyHandlers serves the read-only storefront endpoints.
type UrgencyHandlers struct {
	urgencyService *services.UrgencyService
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewUrgencyHandlers creates urgency handlers with injected dependencies
func NewUrgencyHandlers(urgencyService *services.UrgencyService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *UrgencyHandlers {
	return &UrgencyHandlers{
		urgencyService: urgencyService,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// GetUrgency handles GET /api/v1/urgency/:packageId
func (h *UrgencyHandlers) GetUrgency(c *gin.Context) {
	packageID := c.Param("packageId")
	marker := h.perfTracker.StartOperation("get_urgency_request", packageID)
	defer marker.Complete()

	data, err := h.urgencyService.GetUrgency(packageID, middleware.GetVisitorID(c))
	if err != nil {
		marker.SetError(err)
		status := statusFor(err)
		c.JSON(status, gin.H{"error": publicMessage(status, err)})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, data)
}

// GetInventory handles GET /api/v1/inventory?ids=a,b
func (h *UrgencyHandlers) GetInventory(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_inventory_request", "catalog")
	defer marker.Complete()

	var ids []string
	for _, id := range strings.Split(c.Query("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	status, err := h.urgencyService.InventoryStatus(ids...)
	if err != nil {
		marker.SetError(err)
		code := statusFor(err)
		c.JSON(code, gin.H{"error": publicMessage(code, err)})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, status)
}

// PostTrack handles POST /api/v1/track
func (h *UrgencyHandlers) PostTrack(c *gin.Context) {
	var req struct {
		Action    string `json:"action"`
		PackageID string `json:"packageId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	visitorID := middleware.GetVisitorID(c)
	proof := h.urgencyService.TrackView(visitorID, req.PackageID)
	h.logger.Analytics().Debug("Visitor action tracked",
		"action", req.Action,
		"packageId", req.PackageID,
		"visitorId", logging.SanitizeSessionID(visitorID))

	c.JSON(http.StatusOK, gin.H{"success": true, "socialProof": proof})
}

// GetSocialProof handles GET /api/v1/social-proof. The request itself counts
// as a view.
func (h *UrgencyHandlers) GetSocialProof(c *gin.Context) {
	proof := h.urgencyService.TrackView(middleware.GetVisitorID(c), "")
	c.JSON(http.StatusOK, proof)
}
