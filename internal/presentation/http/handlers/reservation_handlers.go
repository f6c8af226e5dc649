package handlers

import (
	"net/http"

	"github.com/AtRiskMedia/scarcity-go/internal/application/services"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// ReservationHandlers serves the checkout lifecycle endpoints.
type ReservationHandlers struct {
	reservationService *services.ReservationService
	logger             *logging.ChanneledLogger
	perfTracker        *performance.Tracker
}

// NewReservationHandlers creates reservation handlers with injected dependencies
func NewReservationHandlers(reservationService *services.ReservationService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ReservationHandlers {
	return &ReservationHandlers{
		reservationService: reservationService,
		logger:             logger,
		perfTracker:        perfTracker,
	}
}

type reserveRequest struct {
	PackageID string `json:"packageId"`
	SessionID string `json:"sessionId"`
}

type sessionRequest struct {
	SessionID string `json:"sessionId"`
}

// PostReserve handles POST /api/v1/reservations
func (h *ReservationHandlers) PostReserve(c *gin.Context) {
	marker := h.perfTracker.StartOperation("reserve_request", c.ClientIP())
	defer marker.Complete()

	var req reserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		marker.SetError(err)
		h.logger.Reservation().Debug("Invalid reserve request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	result, err := h.reservationService.Reserve(req.PackageID, req.SessionID)
	if err != nil {
		marker.SetError(err)
		status := statusFor(err)
		c.JSON(status, gin.H{"success": false, "error": publicMessage(status, err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"reservationId":    result.ReservationID,
		"packageId":        result.PackageID,
		"expiresAt":        result.ExpiresAt,
		"remainingSeconds": result.RemainingSeconds,
		"replaced":         result.Replaced,
	})
}

// PostComplete handles POST /api/v1/reservations/complete
func (h *ReservationHandlers) PostComplete(c *gin.Context) {
	marker := h.perfTracker.StartOperation("complete_request", c.ClientIP())
	defer marker.Complete()

	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		marker.SetError(err)
		h.logger.Reservation().Debug("Invalid complete request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	result, err := h.reservationService.Complete(req.SessionID)
	if err != nil {
		marker.SetError(err)
		status := statusFor(err)
		c.JSON(status, gin.H{"success": false, "error": publicMessage(status, err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"packageId":          result.PackageID,
		"newInventoryStatus": result.NewInventoryStatus,
	})
}

// PostCancel handles POST /api/v1/reservations/cancel
func (h *ReservationHandlers) PostCancel(c *gin.Context) {
	marker := h.perfTracker.StartOperation("cancel_request", c.ClientIP())
	defer marker.Complete()

	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		marker.SetError(err)
		h.logger.Reservation().Debug("Invalid cancel request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	if err := h.reservationService.Cancel(req.SessionID); err != nil {
		marker.SetError(err)
		status := statusFor(err)
		c.JSON(status, gin.H{"success": false, "error": publicMessage(status, err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
