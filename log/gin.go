package log

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request ID back to the client
	RequestIDHeader = "X-Request-ID"

	contextKeyRequestID = "request_id"
)

// RequestID tags every request with an ID, reusing a client-supplied one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(contextKeyRequestID, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GinLogger returns a Gin middleware that logs requests using zerolog
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		// Process request
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		if raw != "" {
			path = path + "?" + raw
		}

		// Log based on status code
		event := Info()
		if status >= 500 {
			event = Error()
		} else if status >= 400 {
			event = Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Int("size", c.Writer.Size()).
			Dur("latency", latency).
			Str("ip", c.ClientIP())

		if id := c.GetString(contextKeyRequestID); id != "" {
			event.Str("request_id", id)
		}
		if errorMessage != "" {
			event.Str("error", errorMessage)
		}

		event.Msg("request")
	}
}
