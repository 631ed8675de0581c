package middleware

import (
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/roguepikachu/vanish/pkg"
	"github.com/roguepikachu/vanish/pkg/logger"
)

// Recovery turns a panic into a 500 in the format of the route that panicked:
// plain text on the HTML share page, the JSON error body everywhere else.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logger.With(c.Request.Context(), map[string]any{
				"panic": rec,
				"route": c.FullPath(),
				"stack": string(debug.Stack()),
			}).Error("panic recovered")

			if c.Writer.Written() {
				c.Abort()
				return
			}
			if strings.HasPrefix(c.FullPath(), pkg.ViewPathPrefix) {
				c.Header("Cache-Control", "no-store")
				c.String(http.StatusInternalServerError, "Internal Server Error")
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, pkg.NewError("internal_error", "internal server error"))
		}()
		c.Next()
	}
}
