package api

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"sensor-bot/internal/logging"
	"sensor-bot/internal/models"
)

// MaxConnections caps the live alert feed.
const MaxConnections = 10

const (
	clientBuffer = 16
	writeTimeout = 5 * time.Second
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans dispatched alerts out to websocket clients. Each client has its own
// writer goroutine; a client whose buffer fills up is dropped.
type Hub struct {
	connections map[*websocket.Conn]*client
	mutex       sync.Mutex
	logger      *logging.Logger
}

func NewHub(logger *logging.Logger) *Hub {
	return &Hub{connections: make(map[*websocket.Conn]*client), logger: logger}
}

// Add registers conn and starts its writer. It returns false when the hub is full.
func (h *Hub) Add(conn *websocket.Conn) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if len(h.connections) >= MaxConnections {
		h.logger.Warnf("Max WebSocket connections reached (%d)", MaxConnections)
		return false
	}
	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}
	h.connections[conn] = c
	go h.writer(c)
	h.logger.Infof("Added WebSocket connection (total: %d)", len(h.connections))
	return true
}

// Remove unregisters and closes conn.
func (h *Hub) Remove(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if c, ok := h.connections[conn]; ok {
		h.drop(c)
		h.logger.Infof("Removed WebSocket connection (remaining: %d)", len(h.connections))
	}
}

func (h *Hub) Count() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.connections)
}

// Broadcast queues alert for every client without waiting on any socket.
func (h *Hub) Broadcast(alert models.Alert) {
	message, err := json.Marshal(alert)
	if err != nil {
		h.logger.Errorf("Failed to encode alert %s: %v", alert.ID, err)
		return
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, c := range h.connections {
		select {
		case c.send <- message:
		default:
			h.logger.Warnf("WebSocket client too slow, dropping it")
			h.drop(c)
		}
	}
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, c := range h.connections {
		h.drop(c)
	}
}

// drop must be called with the mutex held.
func (h *Hub) drop(c *client) {
	delete(h.connections, c.conn)
	close(c.send)
	_ = c.conn.Close()
}

func (h *Hub) writer(c *client) {
	for message := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			h.logger.Errorf("Failed to send WebSocket message: %v", err)
			h.Remove(c.conn)
			return
		}
	}
}
