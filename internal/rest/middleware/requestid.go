package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/vidinfra/taxengine/internal/types"
)

// RequestID attaches a request ID to the context, honoring one the
// caller already supplied.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("x-request-id")
		if requestID == "" {
			requestID = types.GenerateUUID()
		}

		ctx := types.SetRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("x-request-id", requestID)

		c.Next()
	}
}
