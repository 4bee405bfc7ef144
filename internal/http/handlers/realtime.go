package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yungbote/drawhub-backend/internal/platform/logger"
	"github.com/yungbote/drawhub-backend/internal/realtime"
)

type RealtimeHandler struct {
	log      *logger.Logger
	hub      *realtime.SSEHub
	upgrader *websocket.Upgrader
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub, allowedOrigins []string) *RealtimeHandler {
	return &RealtimeHandler{
		log:      log.With("handler", "RealtimeHandler"),
		hub:      hub,
		upgrader: realtime.NewUpgrader(allowedOrigins),
	}
}

// GET /api/realtime/sse
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	client := h.hub.NewSSEClient("sse")
	h.hub.AddChannel(client, realtime.ChannelDrawings)
	defer h.hub.CloseClient(client)

	h.log.Debug("SSE stream open", "client_id", client.ID)
	h.hub.ServeHTTP(c.Writer, c.Request, client)
	h.log.Debug("SSE stream closed", "client_id", client.ID)
}

// GET /api/realtime/ws
func (h *RealtimeHandler) WSStream(c *gin.Context) {
	client := h.hub.NewSSEClient("ws")
	h.hub.AddChannel(client, realtime.ChannelDrawings)
	defer h.hub.CloseClient(client)

	if err := h.hub.ServeWS(c.Writer, c.Request, h.upgrader, client); err != nil {
		h.log.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	h.log.Debug("WebSocket closed", "client_id", client.ID)
}
