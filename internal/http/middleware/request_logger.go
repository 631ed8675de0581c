package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/roguepikachu/vanish/pkg/logger"
)

// RequestLogger logs each HTTP request once it completes.
//
// Paste ids are bearer secrets, so matched requests are logged by route
// template (/p/:id) rather than by raw path.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		path := route
		if path == "" {
			path = c.Request.URL.Path
		}
		latency := time.Since(start)
		status := c.Writer.Status()
		size := c.Writer.Size()
		if size < 0 {
			size = 0
		}

		fields := map[string]any{
			"method":     c.Request.Method,
			"path":       path,
			"route":      route,
			"status":     status,
			"latency":    latency.String(),
			"latency_ms": latency.Milliseconds(),
			"bytes":      size,
			"ip":         c.ClientIP(),
			"ua":         c.Request.UserAgent(),
		}
		if len(c.Errors) > 0 {
			arr := make([]string, 0, len(c.Errors))
			for _, e := range c.Errors {
				arr = append(arr, e.Error())
			}
			fields["errors"] = strings.Join(arr, "; ")
		}

		entry := logger.With(c.Request.Context(), fields)
		switch {
		case status >= 500:
			entry.Error("request completed")
		case status >= 400:
			entry.Warn("request completed")
		default:
			entry.Info("request completed")
		}
	}
}
