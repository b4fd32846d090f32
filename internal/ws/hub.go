// Package ws streams live alert events to dashboard clients over
// websockets
package ws

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/themobileprof/mamacare-be/internal/alerts"
	"github.com/themobileprof/mamacare-be/internal/api/middleware"
	"github.com/themobileprof/mamacare-be/pkg/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // token auth guards the feed
	},
}

// OutgoingMessage is one frame sent to a client
type OutgoingMessage struct {
	Type  string        `json:"type"` // "connected" or "alert"
	Alert *alerts.Event `json:"alert,omitempty"`
}

type client struct {
	conn   *websocket.Conn
	userID string
	send   chan OutgoingMessage
}

// Hub fans alert events out to every connected client. It implements
// alerts.Publisher.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*client]struct{}
	closed    bool
	jwtSecret string
	logger    *logging.Logger
}

// NewHub creates a hub that accepts clients holding a token signed with
// jwtSecret
func NewHub(jwtSecret string, logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	return &Hub{
		clients:   make(map[*client]struct{}),
		jwtSecret: jwtSecret,
		logger:    logger.With("component", "alert_feed"),
	}
}

// Publish queues e for every client. Clients whose buffer is full miss
// the event.
func (h *Hub) Publish(e alerts.Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	msg := OutgoingMessage{Type: "alert", Alert: &e}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("dropping alert for slow client", "user_id", c.userID, "type", e.Type)
		}
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// Stream authenticates the caller and upgrades the request to a
// websocket that receives alert events until it disconnects
func (h *Hub) Stream(c *gin.Context) {
	claims, err := middleware.ParseToken(middleware.TokenFromRequest(c), h.jwtSecret)
	if errors.Is(err, middleware.ErrMissingToken) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	cl := &client{
		conn:   conn,
		userID: claims.UserID,
		send:   make(chan OutgoingMessage, sendBuffer),
	}
	if !h.register(cl) {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	h.logger.Info("alert feed connected", "user_id", cl.userID)

	go h.writePump(cl)
	h.readPump(cl)
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	c.send <- OutgoingMessage{Type: "connected"}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// readPump discards client frames and notices disconnects
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
		h.logger.Info("alert feed disconnected", "user_id", c.userID)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket error", "user_id", c.userID, "error", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
