package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/erplink/bridge/internal/interfaces/http/dto"
)

// BodyLimit returns a middleware that limits request body size. Deliveries
// whose declared length already exceeds the cap are rejected up front;
// chunked bodies are capped by a MaxBytesReader so the handler's read fails
// at the limit instead of buffering an unbounded payload.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponseWithRequestID(
					dto.ErrCodeRequestTooLarge,
					"Request body exceeds maximum allowed size",
					GetRequestID(c),
				))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
