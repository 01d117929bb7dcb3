package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/metafields/internal/pkg/response"
	"github.com/redis/go-redis/v9"
)

const (
	defaultRateLimitMax    = 50
	defaultRateLimitWindow = time.Second
)

// RateLimit enforces a fixed-window limit per shop, or per client IP before
// a shop is known. Redis errors let the request through.
func RateLimit(rdb *redis.Client, max int, window time.Duration) gin.HandlerFunc {
	if max <= 0 {
		max = defaultRateLimitMax
	}
	if window <= 0 {
		window = defaultRateLimitWindow
	}
	retryAfter := strconv.Itoa(int((window + time.Second - 1) / time.Second))

	return func(c *gin.Context) {
		if rdb == nil || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		subject := CurrentShop(c)
		if subject == "" {
			subject = c.ClientIP()
		}
		if subject == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		windowKey := time.Now().UnixNano() / int64(window)
		key := fmt.Sprintf("mf:rate_limit:%s:%d", subject, windowKey)

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			rdb.PExpire(ctx, key, window+time.Second)
		}

		if count > int64(max) {
			c.Header("Retry-After", retryAfter)
			response.TooManyRequests(c)
			return
		}
		c.Next()
	}
}
