package ratelimit

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ZanzyTHEbar/student-risk-meter/internal/errors"
)

// KeyFunc names the caller a budget is charged to
type KeyFunc func(c *gin.Context) string

// ClientIP charges budgets to the client address
func ClientIP(c *gin.Context) string {
	return c.ClientIP()
}

// EndpointMiddleware limits each caller of endpoint to r. Limiter failures
// never block the request.
func (rl *RateLimiter) EndpointMiddleware(endpoint string, r Rate, keyFunc KeyFunc) gin.HandlerFunc {
	if keyFunc == nil {
		keyFunc = ClientIP
	}
	return func(c *gin.Context) {
		subject := keyFunc(c)
		if subject == "" {
			subject = c.ClientIP()
		}
		key := "ratelimit:" + endpoint + ":" + subject

		result, err := rl.Allow(c.Request.Context(), key, r)
		if err != nil {
			slog.Error("Endpoint rate limit check failed", "endpoint", endpoint, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			if rl.metrics != nil {
				rl.metrics.IncrementRateLimitBlock(endpoint)
			}

			retryAfter := int(result.RetryAfter.Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			apperrors.Respond(c, apperrors.NewRateLimitError(strconv.Itoa(retryAfter)+"s"))
			return
		}

		c.Next()
	}
}
