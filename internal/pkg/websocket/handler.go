package websocket

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Handler upgrades authenticated requests to realtime connections
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler accepts connections from allowedOrigin; an empty origin allows any
func NewHandler(hub *Hub, allowedOrigin string, logger zerolog.Logger) *Handler {
	allowedOrigin = strings.TrimRight(allowedOrigin, "/")
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "" || origin == "" || strings.TrimRight(origin, "/") == allowedOrigin
			},
		},
		logger: logger,
	}
}

// Serve upgrades the request and binds the connection to userID
func (h *Handler) Serve(c *gin.Context, userID int64) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		userID: userID,
		logger: h.logger,
	}
	if !h.hub.join(client) {
		// shutting down
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
