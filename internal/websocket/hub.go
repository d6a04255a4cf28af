package websocket

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	maxMessageBytes = 1 << 20
	writeTimeout    = 10 * time.Second
	closeGrace      = time.Second
)

// ErrClosed is returned by reads on a connection the peer or the hub closed.
var ErrClosed = errors.New("websocket connection closed")

// Hub tracks open streaming connections so they can be closed together on
// shutdown. http.Server.Shutdown does not touch hijacked connections.
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID]*Conn
	upgrader    websocket.Upgrader
	logger      *zap.Logger
}

// NewHub accepts upgrades whose Origin is empty, matches allowedOrigin, or
// any origin when allowedOrigin is "*". A trailing slash on allowedOrigin is
// ignored.
func NewHub(allowedOrigin string, logger *zap.Logger) *Hub {
	allowedOrigin = strings.TrimRight(allowedOrigin, "/")

	return &Hub{
		connections: make(map[uuid.UUID]*Conn),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowedOrigin == "*" || origin == allowedOrigin
			},
		},
		logger: logger,
	}
}

// Accept upgrades the request and registers the connection. On failure the
// upgrader has already written an HTTP error response.
func (h *Hub) Accept(w http.ResponseWriter, r *http.Request) (*Conn, error) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return nil, err
	}
	ws.SetReadLimit(maxMessageBytes)

	c := &Conn{ID: uuid.New(), ws: ws, hub: h}

	h.mu.Lock()
	h.connections[c.ID] = c
	total := len(h.connections)
	h.mu.Unlock()

	h.logger.Info("websocket connected", zap.String("conn_id", c.ID.String()), zap.Int("total", total))
	return c, nil
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// CloseAll sends a going-away close frame to every connection and closes it.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	conns := make([]*Conn, 0, len(h.connections))
	for _, c := range h.connections {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		c.closeWith(websocket.CloseGoingAway, "server shutting down")
	}
}

func (h *Hub) unregister(c *Conn) {
	h.mu.Lock()
	_, ok := h.connections[c.ID]
	delete(h.connections, c.ID)
	h.mu.Unlock()

	if ok {
		h.logger.Info("websocket disconnected", zap.String("conn_id", c.ID.String()))
	}
}

// Conn is one registered connection. Writes are serialized; reads must come
// from a single goroutine.
type Conn struct {
	ID uuid.UUID

	ws        *websocket.Conn
	hub       *Hub
	writeMu   sync.Mutex
	closeOnce sync.Once
}

// ReadMessage blocks for the next text frame. Binary frames are skipped.
func (c *Conn) ReadMessage() ([]byte, error) {
	for {
		mt, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				return nil, ErrClosed
			}
			return nil, err
		}
		if mt == websocket.TextMessage {
			return data, nil
		}
	}
}

func (c *Conn) WriteJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(v)
}

// Close unregisters the connection and closes it normally. Safe to call
// more than once.
func (c *Conn) Close() {
	c.closeWith(websocket.CloseNormalClosure, "")
}

func (c *Conn) closeWith(code int, text string) {
	c.closeOnce.Do(func() {
		c.hub.unregister(c)

		c.writeMu.Lock()
		c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(closeGrace))
		c.writeMu.Unlock()

		c.ws.Close()
	})
}
