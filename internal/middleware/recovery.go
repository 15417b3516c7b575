package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/haierkeys/interview-link-service/pkg/app"
	"github.com/haierkeys/interview-link-service/pkg/code"
	"github.com/haierkeys/interview-link-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryWithLogger 捕获 handler panic，记录日志并返回 ErrorServerInternal
func RecoveryWithLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			fields := []zap.Field{
				zap.String(logger.FieldTraceID, GetTraceIDFromGin(c)),
				zap.String(logger.FieldMethod, c.Request.Method),
				zap.String("router", c.Request.URL.Path),
				zap.String("query", c.Request.URL.RawQuery),
				zap.String("ip", c.ClientIP()),
				zap.String("user-agent", c.Request.UserAgent()),
				zap.String("stack", string(debug.Stack())),
			}
			if id := c.Param("sessionId"); id != "" {
				fields = append(fields, zap.String(logger.FieldSessionID, id))
			}

			var errorMsg string
			switch v := r.(type) {
			case error:
				errorMsg = v.Error()
				log.Error("Recovered from panic", append(fields, zap.Error(v))...)
			case string:
				errorMsg = v
				log.Error("Recovered from panic", append(fields, zap.String("panic_value", v))...)
			default:
				// 非 error 类型的 panic 不向客户端暴露内容
				log.Error("Recovered from unknown panic", append(fields, zap.String("panic_value", fmt.Sprintf("%v", v)))...)
			}

			// 返回统一的错误响应
			app.NewResponse(c).ToResponse(code.ErrorServerInternal.WithDetails(errorMsg))
			c.Abort()
		}()

		c.Next()
	}
}
