package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kiosk404/swarmscope/internal/pkg/logger"
)

const moduleName = "http"

// RequestLogger logs one line per request once it has been served.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		switch {
		case status >= 500:
			logger.ErrorX(moduleName, "[HTTP] %d %s %s (%s)", status, c.Request.Method, path, latency)
		case status >= 400:
			logger.WarnX(moduleName, "[HTTP] %d %s %s (%s)", status, c.Request.Method, path, latency)
		default:
			logger.DebugX(moduleName, "[HTTP] %d %s %s (%s)", status, c.Request.Method, path, latency)
		}
	}
}

// NoCache disables client side caching of API responses.
func NoCache() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")
		c.Next()
	}
}
