package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/haierkeys/interview-link-service/pkg/app"
	"github.com/haierkeys/interview-link-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// AdminAuthToken guards the HR admin API with a static bearer token.
// An empty adminToken disables the admin API entirely.
// AdminAuthToken 管理接口 Token 认证中间件
func AdminAuthToken(adminToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := app.NewResponse(c)

		token := bearer(c)
		if token == "" || adminToken == "" {
			response.ToResponse(code.ErrorNotAdminToken)
			c.Abort()
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(adminToken)) != 1 {
			response.ToResponse(code.ErrorInvalidAdminAuth)
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearer(c *gin.Context) string {
	var token string
	if s := c.GetHeader("Authorization"); len(s) != 0 {
		token = s
	} else if s, exist := c.GetQuery("authorization"); exist {
		token = s
	}
	token = strings.TrimSpace(token)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
