// Package middleware provides the gin middleware chain: request logging,
// token authentication and per-IP rate limiting.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pollstream/pollstream-api/internal/logger"
	"github.com/pollstream/pollstream-api/internal/metrics"
)

// RequestLogger returns a middleware function that logs request details
// and feeds the HTTP request counter.
func RequestLogger() gin.HandlerFunc {
	httpLog := logger.HTTP()
	return func(c *gin.Context) {
		startTime := time.Now()

		requestID := uuid.NewString()
		c.Set("request_id", requestID)

		httpLog.Info("Request started",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"remote_addr", c.ClientIP(),
		)

		c.Next()

		latency := time.Since(startTime)
		status := c.Writer.Status()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metrics.IncRequest(c.Request.Method, path, status)

		logLevel := httpLog.Info
		if status >= 400 {
			logLevel = httpLog.Error
		} else if status >= 300 {
			logLevel = httpLog.Warn
		}

		logLevel("Request completed",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", latency,
			"size", c.Writer.Size(),
		)
	}
}
