package domain

import (
	"context"
	"time"
)

// LinkRepository 面试链接仓储接口
type LinkRepository interface {
	// Save 创建或覆盖会话的链接
	Save(ctx context.Context, link *InterviewLink) (*InterviewLink, error)

	// GetBySessionID 根据会话ID获取链接，不存在返回 ErrLinkNotFound
	GetBySessionID(ctx context.Context, sessionID string) (*InterviewLink, error)

	// ListStale 面试时间早于 dateBefore 或链接过期时间早于 expiresBefore 的链接
	ListStale(ctx context.Context, dateBefore, expiresBefore time.Time) ([]*InterviewLink, error)

	// ListDueForReminder 面试时间在 (from, to] 内且尚未提醒的链接
	ListDueForReminder(ctx context.Context, from, to time.Time) ([]*InterviewLink, error)

	// MarkReminded 记录提醒时间
	MarkReminded(ctx context.Context, sessionID string, at time.Time) error
}

// SessionRepository 会话状态仓储接口
type SessionRepository interface {
	// Get 获取会话，不存在返回 ErrSessionNotFound
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Save 创建或更新会话
	Save(ctx context.Context, session *Session) error

	// CountByStatus 按状态统计会话数量
	CountByStatus(ctx context.Context) (map[SessionStatus]int64, error)
}

// IssueRepository 技术问题工单仓储接口
type IssueRepository interface {
	Create(ctx context.Context, issue *TechnicalIssue) error
	ListBySession(ctx context.Context, sessionID string) ([]*TechnicalIssue, error)
}
