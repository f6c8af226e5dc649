package handlers

import (
	"net/http"

	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WebSocketHandlers upgrades storefront clients onto the live update hub.
type WebSocketHandlers struct {
	broadcaster *messaging.InventoryBroadcaster
	upgrader    websocket.Upgrader
	logger      *logging.ChanneledLogger
}

// NewWebSocketHandlers creates the handler. Origins follow CORS_ORIGINS; a
// lone "*" accepts any origin.
func NewWebSocketHandlers(broadcaster *messaging.InventoryBroadcaster, origins []string, logger *logging.ChanneledLogger) *WebSocketHandlers {
	allowed := make(map[string]bool, len(origins))
	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return &WebSocketHandlers{
		broadcaster: broadcaster,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAll || origin == "" || allowed[origin]
			},
		},
	}
}

// HandleWebSocket handles GET /api/v1/ws
func (h *WebSocketHandlers) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WebSocket().Warn("WebSocket upgrade failed", "error", err, "clientIp", c.ClientIP())
		return
	}
	h.broadcaster.Serve(c.Request.Context(), conn)
}
