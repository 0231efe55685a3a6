package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WindowCounter increments a counter that expires after window.
type WindowCounter interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimit allows limit requests per client IP per fixed window. Counter
// errors let the request through.
func RateLimit(counter WindowCounter, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	if limit <= 0 || window <= 0 || counter == nil {
		return func(ctx *gin.Context) { ctx.Next() }
	}

	return func(ctx *gin.Context) {
		slot := time.Now().UnixNano() / int64(window)
		key := fmt.Sprintf("ratelimit:%s:%d", ctx.ClientIP(), slot)

		count, err := counter.IncrementWindow(ctx.Request.Context(), key, window)
		if err != nil {
			logger.Warn("Rate limiter unavailable", zap.Error(err))
			ctx.Next()
			return
		}

		remaining := int64(limit) - count
		ctx.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		ctx.Header("X-RateLimit-Remaining", strconv.FormatInt(max(remaining, 0), 10))

		if remaining < 0 {
			ctx.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "rate limit exceeded",
				"code":    "rate_limited",
			})
			return
		}

		ctx.Next()
	}
}
