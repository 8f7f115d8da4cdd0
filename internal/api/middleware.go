package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"sensor-bot/internal/logging"
)

func RequestLoggingMiddleware(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		switch {
		case status >= 500:
			logger.Errorf("Request: %s %s, Status: %d, Latency: %v", method, path, status, latency)
		case status >= 400:
			logger.Warnf("Request: %s %s, Status: %d, Latency: %v", method, path, status, latency)
		default:
			logger.Debugf("Request: %s %s, Status: %d, Latency: %v", method, path, status, latency)
		}
	}
}
