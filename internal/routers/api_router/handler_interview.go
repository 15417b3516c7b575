package api_router

import (
	"github.com/haierkeys/interview-link-service/internal/app"
	"github.com/haierkeys/interview-link-service/internal/domain"
	"github.com/haierkeys/interview-link-service/internal/dto"
	"github.com/haierkeys/interview-link-service/internal/service"
	pkgapp "github.com/haierkeys/interview-link-service/pkg/app"
	"github.com/haierkeys/interview-link-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// InterviewHandler 候选人面试 API 路由处理器
// 使用 App Container 注入依赖
type InterviewHandler struct {
	*Handler
}

// NewInterviewHandler 创建 InterviewHandler 实例
func NewInterviewHandler(a *app.App) *InterviewHandler {
	return &InterviewHandler{Handler: NewHandler(a)}
}

// Validate checks an invitation link
// @Summary 校验面试链接
// @Tags Interview
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param token query string true "Invitation token"
// @Success 200 {object} pkgapp.Res{data=domain.LinkValidationResult} "Success"
// @Router /api/interviews/validate/{sessionId} [get]
func (h *InterviewHandler) Validate(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.ValidateLinkRequest{}
	if !bind(c, params) {
		return
	}
	if params.Token == "" {
		response.ToResponse(code.ErrorLinkMissingToken)
		return
	}

	// 浏览器兼容性只记录，不阻断校验
	if ua := c.Request.UserAgent(); ua != "" {
		_ = h.App.ErrorService.CheckBrowserCompatibility(ua)
	}

	result, err := h.App.LinkService.Validate(c.Request.Context(), params.SessionID, params.Token)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !result.Valid {
		response.ToResponse(service.ReasonCode(result.Reason).WithData(result))
		return
	}
	response.ToResponse(code.Success.WithData(result))
}

// Details 获取面试信息
// @Router /api/interviews/{sessionId} [get]
func (h *InterviewHandler) Details(c *gin.Context) {
	params := &dto.SessionRequest{}
	if !bind(c, params) {
		return
	}
	details, err := h.App.SessionService.Details(c.Request.Context(), params.SessionID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(details))
}

// Join 加入面试，返回房间凭证
// @Router /api/interviews/{sessionId}/join [post]
func (h *InterviewHandler) Join(c *gin.Context) {
	params := &dto.JoinRequest{}
	if !bind(c, params) {
		return
	}
	creds, err := h.App.SessionService.Join(c.Request.Context(), params.SessionID, params.Token)
	if err != nil {
		h.respondError(c, err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(creds))
}

// End 结束面试
// @Router /api/interviews/{sessionId}/end [post]
func (h *InterviewHandler) End(c *gin.Context) {
	params := &dto.EndRequest{}
	if !bind(c, params) {
		return
	}
	// 仅持有房间令牌的候选人可以结束面试
	if _, err := h.App.SessionService.VerifyRoomToken(c.Request.Context(), params.SessionID, params.Token); err != nil {
		h.respondError(c, err)
		return
	}
	result, err := h.App.SessionService.End(c.Request.Context(), params.SessionID, params.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(result))
}

// ReportIssue 上报技术问题，返回工单号
// @Router /api/interviews/{sessionId}/report-issue [post]
func (h *InterviewHandler) ReportIssue(c *gin.Context) {
	params := &dto.ReportIssueRequest{}
	if !bind(c, params) {
		return
	}
	browser := params.BrowserInfo
	if browser == "" {
		browser = c.Request.UserAgent()
	}

	issue, err := h.App.ErrorService.ReportIssue(c.Request.Context(), domain.TechnicalIssue{
		SessionID:   params.SessionID,
		IssueType:   domain.IssueType(params.IssueType),
		Description: params.Description,
		BrowserInfo: browser,
	})
	if err != nil {
		h.respondError(c, code.ErrorIssueReport.WithDetails(err.Error()))
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.SuccessCreate.WithData(dto.ReportIssueResponse{TicketID: issue.TicketID}))
}

// RoomStatus 房间状态
// @Router /api/interviews/{sessionId}/room-status [get]
func (h *InterviewHandler) RoomStatus(c *gin.Context) {
	params := &dto.SessionRequest{}
	if !bind(c, params) {
		return
	}
	status, err := h.App.SessionService.RoomStatus(c.Request.Context(), params.SessionID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(status))
}

// Questions 面试问题列表
// @Router /api/interviews/{sessionId}/questions [get]
func (h *InterviewHandler) Questions(c *gin.Context) {
	params := &dto.SessionRequest{}
	if !bind(c, params) {
		return
	}
	questions, err := h.App.SessionService.Questions(c.Request.Context(), params.SessionID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	pkgapp.NewResponse(c).ToResponseList(code.Success, questions, len(questions))
}

// LogError records an error raised in the candidate's browser. Media and room
// errors arrive as raw messages and are classified; catalog types are used as-is.
// @Router /api/interviews/{sessionId}/errors [post]
func (h *InterviewHandler) LogError(c *gin.Context) {
	params := &dto.ClientErrorRequest{}
	if !bind(c, params) {
		return
	}

	var recorded domain.InterviewError
	t := domain.InterviewErrorType(params.Type)
	if _, known := domain.LookupErrorMeta(t); known {
		recorded = h.App.ErrorService.CreateForSession(params.SessionID, t, params.Details)
	} else {
		recorded = h.App.ErrorService.ClassifyRoomErrorForSession(params.SessionID, params.Type+": "+params.Details)
	}
	pkgapp.NewResponse(c).ToResponse(code.SuccessCreate.WithData(recorded))
}

// BrowserCheck reports whether the caller's browser can run the interview room
// @Router /api/interviews/browser-check [get]
func (h *InterviewHandler) BrowserCheck(c *gin.Context) {
	if e := h.App.ErrorService.CheckBrowserCompatibility(c.Request.UserAgent()); e != nil {
		pkgapp.NewResponse(c).ToResponse(code.Failed.WithData(e))
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success)
}
