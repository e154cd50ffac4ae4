package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"user-service/pkg/logger"
)

// RequestID propagates X-Request-ID, generating one when the client sent none.
// The id is echoed in the response and stored in the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(logger.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Header(logger.RequestIDHeader, id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}
