package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/helioshq/helios-webhooks/internal/logger"
	"github.com/helioshq/helios-webhooks/internal/ratelimit"
)

// RateLimit returns a gin middleware that throttles requests per client IP.
// Rejected requests get a 429 with a Retry-After header so well-behaved
// delivery systems back off instead of hammering the endpoint.
func RateLimit(guard ratelimit.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := guard.Allow(c.Request.Context(), c.ClientIP())
		if !decision.Allowed {
			retryAfter := int(decision.RetryAfter / time.Second)
			if decision.RetryAfter%time.Second > 0 || retryAfter < 1 {
				retryAfter++
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			logger.Warn("Rate limit exceeded",
				zap.String("client_ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
				zap.Duration("retry_after", decision.RetryAfter),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":    "rate_limited",
					"message": "Too many requests",
				},
			})
			return
		}

		c.Next()
	}
}
