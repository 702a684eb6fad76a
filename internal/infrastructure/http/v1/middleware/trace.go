package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tiendapos/internal/core/appctx"
)

const HeaderRequestID = "X-Request-ID"

// Trace middleware attaches a request correlation ID.
// Honors an incoming X-Request-ID header, otherwise generates one.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := appctx.WithTrace(c.Request.Context(), &appctx.TraceContext{
			RequestID: requestID,
		})
		c.Request = c.Request.WithContext(ctx)

		c.Set("request_id", requestID)
		c.Header(HeaderRequestID, requestID)

		c.Next()
	}
}
