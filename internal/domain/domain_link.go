// Package domain 定义领域模型和接口
package domain

import (
	"errors"
	"time"
)

var (
	ErrLinkNotFound    = errors.New("interview link not found")
	ErrSessionNotFound = errors.New("interview session not found")
)

// InterviewType 面试类型
type InterviewType string

const (
	InterviewTypeTechnical  InterviewType = "technical"
	InterviewTypeBehavioral InterviewType = "behavioral"
	InterviewTypeCultural   InterviewType = "cultural"
	InterviewTypeMixed      InterviewType = "mixed"
)

// Difficulty 面试难度
type Difficulty string

const (
	DifficultyJunior Difficulty = "junior"
	DifficultyMiddle Difficulty = "middle"
	DifficultySenior Difficulty = "senior"
)

// InterviewLink 面试邀请链接领域模型
type InterviewLink struct {
	SessionID      string        `json:"sessionId"`
	Token          string        `json:"token"`
	CandidateEmail string        `json:"candidateEmail"`
	CandidateName  string        `json:"candidateName"`
	InterviewDate  time.Time     `json:"interviewDate"`
	Duration       int           `json:"duration"` // 分钟
	Position       string        `json:"position"`
	InterviewType  InterviewType `json:"interviewType"`
	Difficulty     Difficulty    `json:"difficulty"`
	ExpiresAt      time.Time     `json:"expiresAt"`
	RemindedAt     time.Time     `json:"remindedAt"` // 零值表示尚未发送提醒
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// IsExpired reports whether the link itself has passed its 48h lifetime
func (l *InterviewLink) IsExpired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

// Reminded 是否已发送提醒
func (l *InterviewLink) Reminded() bool {
	return !l.RemindedAt.IsZero()
}

// GenerateLinkParams 生成链接参数
type GenerateLinkParams struct {
	SessionID      string
	CandidateEmail string
	CandidateName  string
	InterviewDate  time.Time
	Duration       int
	Position       string
	InterviewType  InterviewType
	Difficulty     Difficulty
}

// LinkClaims is the decoded payload of an invitation token.
type LinkClaims struct {
	ID             string    `json:"jti"`
	SessionID      string    `json:"sessionId"`
	CandidateEmail string    `json:"candidateEmail"`
	CandidateName  string    `json:"candidateName"`
	InterviewDate  time.Time `json:"interviewDate"`
	Position       string    `json:"position"`
	IssuedAt       time.Time `json:"iat"`
	ExpiresAt      time.Time `json:"exp"`
}

// ValidationReason 链接校验失败原因
type ValidationReason string

const (
	ReasonExpired      ValidationReason = "expired"
	ReasonInvalid      ValidationReason = "invalid"
	ReasonNotFound     ValidationReason = "not_found"
	ReasonAlreadyUsed  ValidationReason = "already_used"
	ReasonNotScheduled ValidationReason = "not_scheduled"
)

// LinkValidationResult 链接校验结果
type LinkValidationResult struct {
	Valid              bool             `json:"valid"`
	Reason             ValidationReason `json:"reason,omitempty"`
	InterviewData      *InterviewLink   `json:"interviewData,omitempty"`
	TimeUntilInterview int              `json:"timeUntilInterview"` // 分钟
}

// Rejected 构造失败结果
func Rejected(reason ValidationReason) *LinkValidationResult {
	return &LinkValidationResult{Valid: false, Reason: reason}
}
