package api_router

import (
	"time"

	"github.com/haierkeys/interview-link-service/internal/app"
	"github.com/haierkeys/interview-link-service/internal/domain"
	"github.com/haierkeys/interview-link-service/internal/dto"
	pkgapp "github.com/haierkeys/interview-link-service/pkg/app"
	"github.com/haierkeys/interview-link-service/pkg/code"
	"github.com/haierkeys/interview-link-service/pkg/convert"

	"github.com/gin-gonic/gin"
)

// AdminHandler HR 管理 API 路由处理器
type AdminHandler struct {
	*Handler
}

// NewAdminHandler 创建 AdminHandler 实例
func NewAdminHandler(a *app.App) *AdminHandler {
	return &AdminHandler{Handler: NewHandler(a)}
}

func (h *AdminHandler) linkDTO(link *domain.InterviewLink, url string) (*dto.LinkDTO, error) {
	out, err := convert.StructAssign(link, &dto.LinkDTO{})
	if err != nil {
		return nil, err
	}
	out.Token = link.Token
	out.URL = url
	return out, nil
}

// GenerateLink 生成面试链接
// @Summary Generate interview link
// @Tags Admin
// @Security AdminToken
// @Accept json
// @Produce json
// @Param params body dto.GenerateLinkRequest true "Link parameters"
// @Success 200 {object} pkgapp.Res{data=dto.LinkDTO} "Success"
// @Router /api/admin/links [post]
func (h *AdminHandler) GenerateLink(c *gin.Context) {
	params := &dto.GenerateLinkRequest{}
	if !bind(c, params) {
		return
	}

	link, url, err := h.App.LinkService.Generate(c.Request.Context(), domain.GenerateLinkParams{
		SessionID:      params.SessionID,
		CandidateEmail: params.CandidateEmail,
		CandidateName:  params.CandidateName,
		InterviewDate:  params.InterviewDate,
		Duration:       params.Duration,
		Position:       params.Position,
		InterviewType:  domain.InterviewType(params.InterviewType),
		Difficulty:     domain.Difficulty(params.Difficulty),
	})
	if err != nil {
		h.respondError(c, code.ErrorLinkGenerate.WithDetails(err.Error()))
		return
	}
	out, err := h.linkDTO(link, url)
	if err != nil {
		h.respondError(c, err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.SuccessCreate.WithData(out))
}

// RegenerateLink 为已有会话重新签发链接，旧链接随即失效
// @Router /api/admin/links/{sessionId}/regenerate [post]
func (h *AdminHandler) RegenerateLink(c *gin.Context) {
	params := &dto.SessionRequest{}
	if !bind(c, params) {
		return
	}
	link, url, err := h.App.LinkService.Regenerate(c.Request.Context(), params.SessionID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	out, err := h.linkDTO(link, url)
	if err != nil {
		h.respondError(c, err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.SuccessUpdate.WithData(out))
}

// CancelSession 取消面试
// @Router /api/admin/sessions/{sessionId}/cancel [post]
func (h *AdminHandler) CancelSession(c *gin.Context) {
	params := &dto.SessionRequest{}
	if !bind(c, params) {
		return
	}
	if err := h.App.SessionService.Cancel(c.Request.Context(), params.SessionID); err != nil {
		h.respondError(c, err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.SuccessUpdate)
}

// SendInvitations 批量发送面试邀请
// @Router /api/admin/send-invitations [post]
func (h *AdminHandler) SendInvitations(c *gin.Context) {
	params := &dto.SendInvitationsRequest{}
	if !bind(c, params) {
		return
	}

	batch := domain.InvitationBatch{
		Candidates: params.Candidates,
		Vacancy:    params.Vacancy,
		Duration:   params.Duration,
	}
	if params.InterviewDate != nil {
		batch.InterviewDate = *params.InterviewDate
	}

	results, summary, err := h.App.InvitationService.SendBatch(c.Request.Context(), batch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.SuccessSent.WithData(dto.SendInvitationsResponse{
		Results: results,
		Summary: summary,
	}))
}

// ErrorHistory 错误历史，可按类型与时间窗口过滤
// @Router /api/admin/errors [get]
func (h *AdminHandler) ErrorHistory(c *gin.Context) {
	params := &dto.ErrorHistoryRequest{}
	if !bind(c, params) {
		return
	}
	var list []domain.InterviewError
	if params.Type != "" {
		// minutes 为 0 时使用默认窗口
		within := time.Duration(params.Minutes) * time.Minute
		list = h.App.ErrorService.RecentOfType(domain.InterviewErrorType(params.Type), within)
	} else {
		list = h.App.ErrorService.History()
	}
	pkgapp.NewResponse(c).ToResponseList(code.Success, list, len(list))
}

// ClearErrors 清空错误历史
// @Router /api/admin/errors [delete]
func (h *AdminHandler) ClearErrors(c *gin.Context) {
	h.App.ErrorService.Clear()
	pkgapp.NewResponse(c).ToResponse(code.SuccessDelete)
}
