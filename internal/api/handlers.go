package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"sensor-bot/internal/logging"
	"sensor-bot/internal/models"
)

// SnapshotSource returns the newest snapshot without blocking.
type SnapshotSource interface {
	Peek() (models.Snapshot, bool)
}

type Handler struct {
	snapshots SnapshotSource
	hub       *Hub
	logger    *logging.Logger
	upgrader  websocket.Upgrader
}

func NewHandler(snapshots SnapshotSource, hub *Hub, logger *logging.Logger) *Handler {
	return &Handler{
		snapshots: snapshots,
		hub:       hub,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

type snapshotResponse struct {
	TakenAt time.Time              `json:"taken_at"`
	Sensors []models.SensorReading `json:"sensors"`
}

func (h *Handler) GetSensors(c *gin.Context) {
	snap, ok := h.snapshots.Peek()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No snapshot yet"})
		return
	}
	c.JSON(http.StatusOK, snapshotResponse{TakenAt: snap.TakenAt, Sensors: snap.Readings()})
}

func (h *Handler) GetSensor(c *gin.Context) {
	name := c.Param("name")
	snap, ok := h.snapshots.Peek()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No snapshot yet"})
		return
	}
	if !snap.Has(name) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sensor not found"})
		return
	}
	v := snap.Get(name)
	c.JSON(http.StatusOK, models.SensorReading{Name: name, Value: v, Available: v.Available()})
}

// AlertsWebSocket streams every dispatched alert to the client as JSON.
func (h *Handler) AlertsWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("WebSocket upgrade failed: %v", err)
		return
	}
	if !h.hub.Add(conn) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too many connections"),
			time.Now().Add(time.Second))
		_ = conn.Close()
		return
	}
	defer h.hub.Remove(conn)

	// Clients only listen; reading detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
