// Package websocket_router 提供面试音频通道的 WebSocket 路由处理器
package websocket_router

import (
	"errors"

	"github.com/haierkeys/interview-link-service/internal/app"
	"github.com/haierkeys/interview-link-service/internal/domain"
	"github.com/haierkeys/interview-link-service/internal/relay"
	pkgapp "github.com/haierkeys/interview-link-service/pkg/app"
	"github.com/haierkeys/interview-link-service/pkg/code"
	"github.com/haierkeys/interview-link-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errMissingRoomToken = errors.New("missing room token")

// RoomWSHandler 候选人音频通道处理器
// 每个连接对应一个 relay.Bridge，保存在 client attachment 中
type RoomWSHandler struct {
	App *app.App
}

// NewRoomWSHandler 创建 RoomWSHandler 实例
func NewRoomWSHandler(a *app.App) *RoomWSHandler {
	return &RoomWSHandler{App: a}
}

// Register 将所有钩子挂到 WebSocket 服务端
func (h *RoomWSHandler) Register(wss *pkgapp.WebsocketServer) {
	wss.UseVerify(h.Verify)
	wss.UseReject(h.Reject)
	wss.UseOpen(h.Open)
	wss.UseClose(h.Close)
	wss.Use(pkgapp.EnvelopeSessionStart, h.Forward)
	wss.Use(pkgapp.EnvelopeAudio, h.Forward)
}

// Verify checks the room token issued by Join. The session must be in progress.
func (h *RoomWSHandler) Verify(c *gin.Context) (pkgapp.ClientIdentity, error) {
	sessionID := c.Query("sessionId")
	token := c.Query("token")
	if token == "" || sessionID == "" {
		return pkgapp.ClientIdentity{}, errMissingRoomToken
	}
	entity, err := h.App.SessionService.VerifyRoomToken(c.Request.Context(), sessionID, token)
	if err != nil {
		return pkgapp.ClientIdentity{}, err
	}
	return pkgapp.ClientIdentity{SessionID: entity.SessionID, CandidateName: entity.CandidateName}, nil
}

// Reject 升级被拒绝时返回错误码
func (h *RoomWSHandler) Reject(c *gin.Context, err error) {
	var res *code.Code
	switch {
	case errors.Is(err, errMissingRoomToken):
		res = code.ErrorLinkMissingToken
	case errors.Is(err, pkgapp.ErrTokenExpired):
		res = code.ErrorLinkExpired
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrLinkNotFound):
		res = code.ErrorLinkNotFound
	case errors.Is(err, domain.ErrSessionNotActive):
		res = code.ErrorSessionNotActive
	default:
		res = code.ErrorLinkInvalid
	}
	pkgapp.NewResponse(c).ToResponse(res)
}

// Open attaches the connection to the relay hub
func (h *RoomWSHandler) Open(c *pkgapp.WebsocketClient) {
	bridge, err := h.App.Hub.Attach(c.Identity.SessionID, c.Identity.CandidateName, c)
	if err != nil {
		h.App.Logger().Warn("relay attach failed",
			zap.String(logger.FieldSessionID, c.Identity.SessionID), zap.Error(err))
		_ = c.Send(pkgapp.ErrorEnvelope(err.Error()))
		c.Close("relay unavailable")
		return
	}
	c.SetAttachment(bridge)
}

// Forward 将候选人的 session_start / audio 消息转发给 AI 面试官
func (h *RoomWSHandler) Forward(c *pkgapp.WebsocketClient, env pkgapp.Envelope) {
	bridge, ok := c.Attachment().(*relay.Bridge)
	if !ok {
		_ = c.Send(pkgapp.ErrorEnvelope(relay.ErrUpstreamUnavailable.Error()))
		return
	}
	if env.Type == pkgapp.EnvelopeSessionStart && env.CandidateName == "" {
		env.CandidateName = c.Identity.CandidateName
	}
	if err := bridge.Forward(env); err != nil {
		h.App.Logger().Debug("relay forward failed",
			zap.String(logger.FieldSessionID, c.Identity.SessionID),
			zap.String("type", env.Type),
			zap.Error(err))
		_ = c.Send(pkgapp.ErrorEnvelope(err.Error()))
	}
}

// Close 连接关闭时释放 bridge
func (h *RoomWSHandler) Close(c *pkgapp.WebsocketClient, err error) {
	if bridge, ok := c.Attachment().(*relay.Bridge); ok {
		bridge.Close()
	}
}
