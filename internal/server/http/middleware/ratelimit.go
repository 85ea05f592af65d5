package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/pkg/ratelimit"
)

// RateLimitObserver counts rejected requests per policy.
type RateLimitObserver interface {
	RateLimited(policy string)
}

// RateLimit enforces policy per client address and path. Store failures let
// the request through.
func RateLimit(limiter *ratelimit.Limiter, policy ratelimit.Policy, observer RateLimitObserver, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ClientIP(c) + ":" + c.Request.URL.Path
		res, err := limiter.Allow(c.Request.Context(), policy, key)
		if err != nil {
			logger.Warn("rate limit check failed",
				slog.String("policy", policy.Name),
				slog.String("error", err.Error()),
			)
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
		if res.Allowed {
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			c.Next()
			return
		}

		if observer != nil {
			observer.RateLimited(policy.Name)
		}
		retryAfter := int(math.Ceil(res.RetryAfter.Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		h.Set("X-RateLimit-Remaining", "0")
		h.Set("Retry-After", strconv.Itoa(retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "Demasiadas peticiones. Inténtalo de nuevo más tarde.",
			"retry_after": retryAfter,
		})
	}
}
