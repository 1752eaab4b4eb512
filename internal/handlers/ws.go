package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/mizutanik/tasktree-api/internal/logging"
	"github.com/mizutanik/tasktree-api/internal/ws"
)

// WSHandler upgrades HTTP requests onto the realtime channel.
type WSHandler struct {
	hub *ws.Hub
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Cross-origin browsers are expected; the bearer middleware in
		// front of this handler is the actual gate.
		return true
	},
}

// Connect upgrades the request and hands the connection to the hub.
func (h *WSHandler) Connect(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Logger.Warnf("WebSocket upgrade failed: %v", err)
		return
	}

	h.hub.HandleConnection(conn, c.GetHeader("Authorization"))
}
