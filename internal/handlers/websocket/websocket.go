// internal/handlers/websocket/websocket.go
package websocket

import (
	"net/http"

	"lexsite-service/internal/middleware"
	"lexsite-service/internal/pkg/response"
	ws "lexsite-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the admin frontend origin in production
		return true
	},
}

type WebSocketHandler struct {
	hub    *ws.Hub
	logger *zap.Logger
}

func NewWebSocketHandler(hub *ws.Hub, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		logger: logger,
	}
}

// HandleConnection upgrades an authenticated admin connection. Each
// open tab holds one of these; session-ended and navigate events fan
// out to every tab holding the same token.
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	token := middleware.MustGetToken(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed",
			zap.Error(err),
			zap.String("ip", c.ClientIP()),
		)
		response.Error(c, http.StatusBadRequest, "websocket upgrade failed", err)
		return
	}

	h.hub.Serve(conn, token)
}
