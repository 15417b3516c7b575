package middleware

import (
	"github.com/haierkeys/interview-link-service/pkg/app"
	"github.com/haierkeys/interview-link-service/pkg/code"
	"github.com/haierkeys/interview-link-service/pkg/limiter"

	"github.com/gin-gonic/gin"
)

// RateLimiter 按 limiter.Face 的规则限流，超限时返回 ErrorTooManyRequests 并附带 Retry-After
// 未命中任何规则的请求直接放行
func RateLimiter(l limiter.Face) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := l.Key(c)
		if key == "" {
			c.Next()
			return
		}
		if bucket, ok := l.GetBucket(key); ok && bucket.TakeAvailable(1) == 0 {
			c.Header("Retry-After", "1")
			app.NewResponse(c).ToResponse(code.ErrorTooManyRequests)
			c.Abort()
			return
		}

		c.Next()
	}
}
