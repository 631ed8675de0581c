package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/roguepikachu/vanish/pkg"
	"github.com/roguepikachu/vanish/pkg/ctxutil"
)

// HeaderTestNow carries the current time in Unix milliseconds.
const HeaderTestNow = "X-Test-Now-Ms"

// TestClock pins the request's notion of "now" to the X-Test-Now-Ms header so
// expiry can be exercised deterministically. Only install it in test mode;
// requests without the header keep using the real clock.
func TestClock() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderTestNow)
		if raw == "" {
			c.Next()
			return
		}
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, pkg.NewError("bad_request", "invalid "+HeaderTestNow+" header"))
			return
		}
		ctx := ctxutil.WithNow(c.Request.Context(), time.UnixMilli(ms).UTC())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
