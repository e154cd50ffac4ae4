package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"user-service/internal/adapter/ratelimit"
)

// RateLimiter returns a Gin middleware for rate limiting using Token Bucket algorithm.
// Buckets are keyed by method, route and client IP.
func RateLimiter(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Enabled() {
			c.Next()
			return
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		key := fmt.Sprintf("%s:%s:%s", c.Request.Method, path, c.ClientIP())

		if !limiter.Allow(c.Request.Context(), key) {
			cfg := limiter.Config()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": fmt.Sprintf("Rate limit exceeded: %.2f requests/second (burst capacity: %d)", cfg.RequestsPerSecond, cfg.BurstCapacity),
			})
			return
		}

		c.Next()
	}
}
