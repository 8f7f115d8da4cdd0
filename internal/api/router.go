package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"sensor-bot/internal/logging"
)

func NewRouter(logger *logging.Logger, h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v0")
	{
		// Sensors
		api.GET("/sensors", h.GetSensors)
		api.GET("/sensors/:name", h.GetSensor)

		// Alerts
		api.GET("/alerts/ws", h.AlertsWebSocket)
	}
	return r
}
