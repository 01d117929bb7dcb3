package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const privateCacheValue = "private, max-age=0, no-cache, no-store, must-revalidate"

// NoStore marks every API response as private. Editor views and group lists
// are per shop and change on every write.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Cache-Control", privateCacheValue)
		h.Set("CDN-Cache-Control", privateCacheValue)
		if c.Request.Method == http.MethodGet {
			h.Set("Vary", "Authorization")
		}
		c.Next()
	}
}
