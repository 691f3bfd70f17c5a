package session

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// NewWebSocketHandler returns an http.HandlerFunc that upgrades each
// request to a websocket and hands it to hub.
func NewWebSocketHandler(hub *Hub, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsConn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("websocket upgrade failed", "error", err)
			return
		}
		conn := NewConnection(wsConn, logger, hub.cfg.pingInterval(), hub.cfg.pongTimeout())
		hub.HandleConnection(conn)
	}
}
