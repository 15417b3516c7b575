// Package dto 定义 HTTP 请求与响应结构
package dto

import (
	"time"

	"github.com/haierkeys/interview-link-service/internal/domain"
)

// SessionRequest 只携带路径中的会话 ID
type SessionRequest struct {
	SessionID string `json:"sessionId" uri:"sessionId" binding:"required,session_id"`
}

// ValidateLinkRequest 校验链接请求
type ValidateLinkRequest struct {
	SessionID string `json:"sessionId" uri:"sessionId" binding:"required,session_id"`
	Token     string `json:"token" form:"token"` // 缺失时返回 ErrorLinkMissingToken
}

// JoinRequest 加入面试请求
type JoinRequest struct {
	SessionID string `json:"sessionId" uri:"sessionId" binding:"required,session_id"`
	Token     string `json:"token" form:"token" binding:"required"`
}

// EndRequest 结束面试请求
type EndRequest struct {
	SessionID string `json:"sessionId" uri:"sessionId" binding:"required,session_id"`
	Token     string `json:"token" form:"token" binding:"required"` // room token returned by join
	Reason    string `json:"reason" form:"reason" binding:"max=64"`
}

// ReportIssueRequest 技术问题上报
type ReportIssueRequest struct {
	SessionID   string `json:"sessionId" uri:"sessionId" binding:"required,session_id"`
	IssueType   string `json:"issueType" binding:"required,max=32"`
	Description string `json:"description" binding:"required,max=4000"`
	BrowserInfo string `json:"browserInfo" binding:"max=1000"` // 为空时使用 User-Agent
}

// ReportIssueResponse 上报结果
type ReportIssueResponse struct {
	TicketID string `json:"ticketId"`
}

// ClientErrorRequest 前端错误日志
type ClientErrorRequest struct {
	SessionID string `json:"sessionId" uri:"sessionId" binding:"required,session_id"`
	Type      string `json:"type" binding:"required,max=64"`
	Details   string `json:"details" binding:"max=4000"`
}

// GenerateLinkRequest HR 生成面试链接
type GenerateLinkRequest struct {
	SessionID      string    `json:"sessionId" binding:"omitempty,session_id"`
	CandidateEmail string    `json:"candidateEmail" binding:"required,email"`
	CandidateName  string    `json:"candidateName" binding:"required,max=128"`
	InterviewDate  time.Time `json:"interviewDate" binding:"required"`
	Duration       int       `json:"duration" binding:"omitempty,min=5,max=480"`
	Position       string    `json:"position" binding:"required,max=128"`
	InterviewType  string    `json:"interviewType" binding:"omitempty,oneof=technical behavioral cultural mixed"`
	Difficulty     string    `json:"difficulty" binding:"omitempty,oneof=junior middle senior"`
}

// LinkDTO 生成链接的响应
type LinkDTO struct {
	SessionID      string    `json:"sessionId"`
	URL            string    `json:"url"`
	Token          string    `json:"token"`
	CandidateEmail string    `json:"candidateEmail"`
	CandidateName  string    `json:"candidateName"`
	InterviewDate  time.Time `json:"interviewDate"`
	Duration       int       `json:"duration"`
	Position       string    `json:"position"`
	InterviewType  string    `json:"interviewType"`
	Difficulty     string    `json:"difficulty"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

// SendInvitationsRequest 批量发送面试邀请
type SendInvitationsRequest struct {
	Candidates    []domain.Candidate `json:"candidates" binding:"required,min=1,max=500,dive"`
	Vacancy       domain.Vacancy     `json:"vacancy" binding:"required"`
	InterviewDate *time.Time         `json:"interviewDate"`
	Duration      int                `json:"duration" binding:"omitempty,min=5,max=480"`
}

// SendInvitationsResponse 批量发送结果
type SendInvitationsResponse struct {
	Results []domain.InvitationResult `json:"results"`
	Summary domain.InvitationSummary  `json:"summary"`
}

// ErrorHistoryRequest 错误历史查询
type ErrorHistoryRequest struct {
	Type    string `form:"type" binding:"omitempty,max=64"`
	Minutes int    `form:"minutes" binding:"omitempty,min=1,max=1440"`
}

// VersionDTO 版本信息
type VersionDTO struct {
	Version   string `json:"version"`
	GitTag    string `json:"gitTag"`
	BuildTime string `json:"buildTime"`
}
