package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBodyBytes is the transport-level payload ceiling. Photo payloads are
// base64 data URIs, so the transport allows far more than the 7MB
// application-level photo limit; oversized bodies fail loudly instead of
// being truncated.
const MaxBodyBytes = 50 << 20

// BodyLimit rejects request bodies larger than MaxBodyBytes.
func BodyLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)
		c.Next()
	}
}
