package handlers

import (
	"net/http"
	"time"

	"github.com/AtRiskMedia/scarcity-go/internal/domain/inventory"
	"github.com/gin-gonic/gin"
)

// HealthHandlers reports liveness.
type HealthHandlers struct {
	engine  *inventory.Engine
	started time.Time
}

func NewHealthHandlers(engine *inventory.Engine) *HealthHandlers {
	return &HealthHandlers{engine: engine, started: time.Now()}
}

// GetHealth handles GET /healthz
func (h *HealthHandlers) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":             "ok",
		"packages":           len(h.engine.PackageIDs()),
		"activeReservations": h.engine.ActiveReservations(),
		"uptime":             time.Since(h.started).Round(time.Second).String(),
	})
}
