// Package session is the Game Session hub: it owns the table, the
// per-player grace/removal timers, and the registry of live
// connections, and dispatches wire frames between them.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 8192
)

// ErrConnectionClosed is returned by Send after a connection has been
// closed.
var ErrConnectionClosed = errors.New("session: connection closed")

// Connection wraps a single websocket transport. Frames are already
// fully framed ({"type":...,"payload":...}) by the caller; Connection
// only owns the read/write pumps and the ping/pong heartbeat.
type Connection struct {
	conn     *websocket.Conn
	send     chan []byte
	logger   *log.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.RWMutex
	playerID string
	closeOnce sync.Once

	pingInterval time.Duration
	pongTimeout  time.Duration

	onMessage    func(*Connection, []byte)
	onDisconnect func(*Connection)
}

// NewConnection wraps conn. The caller (typically a Hub) must call
// SetCallbacks before calling Start.
func NewConnection(conn *websocket.Conn, logger *log.Logger, pingInterval, pongTimeout time.Duration) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		conn:         conn,
		send:         make(chan []byte, 64),
		logger:       logger.WithPrefix("conn"),
		ctx:          ctx,
		cancel:       cancel,
		pingInterval: pingInterval,
		pongTimeout:  pongTimeout,
	}
}

// SetCallbacks wires the connection's message and disconnect handlers.
// Must be called before Start.
func (c *Connection) SetCallbacks(onMessage func(*Connection, []byte), onDisconnect func(*Connection)) {
	c.onMessage = onMessage
	c.onDisconnect = onDisconnect
}

// Start launches the read and write pumps.
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// PlayerID returns the player id bound to this connection, empty
// before a successful join.
func (c *Connection) PlayerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// BindPlayer associates this connection with a player id.
func (c *Connection) BindPlayer(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
}

// Send enqueues an already-encoded frame for delivery. Never blocks:
// a full send buffer closes the connection.
func (c *Connection) Send(frame []byte) error {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Debug("send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- frame:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		c.logger.Warn("send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// Close closes the connection and its send channel exactly once.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

func (c *Connection) readPump() {
	defer func() {
		_ = c.Close()
		if c.onDisconnect != nil {
			c.onDisconnect(c)
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.pingInterval + c.pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.pingInterval + c.pongTimeout))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Debug("read error", "error", err)
			}
			return
		}
		if c.onMessage != nil {
			c.onMessage(c, frame)
		}
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(c.pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Debug("write error", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}
