package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// SysOpHandlers exposes operational endpoints to admins: live logs, log
// levels and operation timings.
type SysOpHandlers struct {
	logger         *logging.ChanneledLogger
	logBroadcaster *logging.LogBroadcaster
	perfTracker    *performance.Tracker
}

// NewSysOpHandlers creates sysop handlers. logBroadcaster may be nil.
func NewSysOpHandlers(logger *logging.ChanneledLogger, logBroadcaster *logging.LogBroadcaster, perfTracker *performance.Tracker) *SysOpHandlers {
	return &SysOpHandlers{
		logger:         logger,
		logBroadcaster: logBroadcaster,
		perfTracker:    perfTracker,
	}
}

// StreamLogs handles the SSE connection for live log streaming.
func (h *SysOpHandlers) StreamLogs(c *gin.Context) {
	broadcaster := h.logBroadcaster
	if broadcaster == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Log broadcaster not available"})
		return
	}

	levelFilter, ok := parseLevel(c.DefaultQuery("level", "INFO"))
	if !ok {
		levelFilter = slog.LevelInfo
	}
	client := broadcaster.NewClient(logging.AppliedFilters{
		Channel: logging.Channel(c.DefaultQuery("channel", "all")),
		Level:   levelFilter,
	})

	ctx := c.Request.Context()
	if !broadcaster.RegisterClient(ctx, client) {
		return
	}
	defer broadcaster.UnregisterClient(ctx, client)

	// The stream outlives the server's WriteTimeout.
	if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil {
		h.logger.System().Debug("Could not clear write deadline for log stream", "error", err)
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(c.Writer, ": connection established\n\n")
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case message, ok := <-client.Channel:
			if !ok {
				return false
			}
			fmt.Fprintf(w, "data: %s\n\n", message)
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// GetLogLevels handles GET /api/v1/admin/logs/levels
func (h *SysOpHandlers) GetLogLevels(c *gin.Context) {
	c.JSON(http.StatusOK, h.logger.GetChannelLevels())
}

// SetLogLevel handles POST /api/v1/admin/logs/levels
func (h *SysOpHandlers) SetLogLevel(c *gin.Context) {
	var req struct {
		Channel string `json:"channel" binding:"required"`
		Level   string `json:"level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	level, ok := parseLevel(req.Level)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid log level specified"})
		return
	}

	if err := h.logger.SetChannelLevel(logging.Channel(req.Channel), level); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to set log level", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": fmt.Sprintf("Log level for channel '%s' set to '%s'", req.Channel, req.Level)})
}

// GetPerformance handles GET /api/v1/admin/performance
func (h *SysOpHandlers) GetPerformance(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"overall":    h.perfTracker.GetOverallStats(),
		"operations": h.perfTracker.Stats(),
	})
}

func parseLevel(s string) (slog.Level, bool) {
	switch s {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
