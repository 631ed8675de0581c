// Package middleware provides HTTP middleware functions.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/roguepikachu/vanish/pkg/ctxutil"
)

const (
	headerRequestID = "X-Request-ID"
	headerClientID  = "X-Client-ID"

	maxCorrelationIDLen = 128
)

// correlationID returns the caller's id when it is safe to log, otherwise a
// fresh UUID. Ids are echoed into logs and headers, so only short printable
// ASCII without spaces is accepted.
func correlationID(given string) string {
	if given == "" || len(given) > maxCorrelationIDLen {
		return uuid.NewString()
	}
	for i := 0; i < len(given); i++ {
		if b := given[i]; b <= ' ' || b > '~' {
			return uuid.NewString()
		}
	}
	return given
}

// RequestIDMiddleware tags every request with a request id and client id,
// taken from X-Request-ID / X-Client-ID when usable, and echoes both back.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := correlationID(c.GetHeader(headerRequestID))
		clientID := correlationID(c.GetHeader(headerClientID))

		ctx := ctxutil.WithClientID(ctxutil.WithRequestID(c.Request.Context(), requestID), clientID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(headerRequestID, requestID)
		c.Header(headerClientID, clientID)
		c.Next()
	}
}
