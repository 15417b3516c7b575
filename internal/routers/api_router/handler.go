// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"errors"

	"github.com/haierkeys/interview-link-service/internal/app"
	"github.com/haierkeys/interview-link-service/internal/domain"
	pkgapp "github.com/haierkeys/interview-link-service/pkg/app"
	"github.com/haierkeys/interview-link-service/pkg/code"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 基础 Handler 结构体，封装 App Container
// 所有 API Handler 都应该嵌入此结构体以获得依赖注入能力
type Handler struct {
	App *app.App
}

// NewHandler 创建基础 Handler 实例
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// bind 参数绑定和验证，失败时直接写出响应
func bind(c *gin.Context, params any) bool {
	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		pkgapp.NewResponse(c).ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return false
	}
	return true
}

// respondError maps service errors onto response codes
func (h *Handler) respondError(c *gin.Context, err error) {
	response := pkgapp.NewResponse(c)

	var cObj *code.Code
	switch {
	case errors.As(err, &cObj):
		response.ToResponse(cObj)
	case errors.Is(err, domain.ErrLinkNotFound), errors.Is(err, domain.ErrSessionNotFound):
		response.ToResponse(code.ErrorLinkNotFound)
	case errors.Is(err, domain.ErrInvalidTransition):
		response.ToResponse(code.ErrorSessionTransition)
	case errors.Is(err, domain.ErrSessionNotActive):
		response.ToResponse(code.ErrorSessionNotActive)
	case errors.Is(err, pkgapp.ErrTokenExpired):
		response.ToResponse(code.ErrorLinkExpired)
	case errors.Is(err, pkgapp.ErrTokenInvalid):
		response.ToResponse(code.ErrorLinkInvalid)
	default:
		h.App.Logger().Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		response.ToResponse(code.Failed.WithDetails(err.Error()))
	}
}
