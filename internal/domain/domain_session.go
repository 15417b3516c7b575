package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidTransition = errors.New("session status transition not allowed")
	ErrSessionNotActive  = errors.New("interview session is not in progress")
)

// SessionStatus 面试会话生命周期状态
type SessionStatus string

const (
	SessionScheduled  SessionStatus = "scheduled"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionCancelled  SessionStatus = "cancelled"
	SessionExpired    SessionStatus = "expired"
)

var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionScheduled:  {SessionInProgress, SessionCancelled, SessionExpired},
	SessionInProgress: {SessionCompleted},
}

// Valid 是否为已知状态
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionScheduled, SessionInProgress, SessionCompleted, SessionCancelled, SessionExpired:
		return true
	}
	return false
}

// IsTerminal 终态没有出边
func (s SessionStatus) IsTerminal() bool {
	return len(sessionTransitions[s]) == 0
}

// CanTransition reports whether from -> to is allowed. Same-status is allowed (no-op).
func CanTransition(from, to SessionStatus) bool {
	if from == to {
		return true
	}
	for _, next := range sessionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Session 会话状态
type Session struct {
	SessionID string
	Status    SessionStatus
	StartedAt time.Time
	EndedAt   time.Time
	Duration  int // 秒
	Result    ResultStatus
	UpdatedAt time.Time
}

// RoomCredentials 加入面试房间所需凭证
type RoomCredentials struct {
	RoomURL         string    `json:"roomUrl"`
	Token           string    `json:"token"`
	ExpiresAt       time.Time `json:"expiresAt"`
	EnableRecording bool      `json:"enableRecording"`
	MaxDuration     int       `json:"maxDuration"`
}

// ResultStatus 面试结束状态
type ResultStatus string

const (
	ResultCompleted      ResultStatus = "completed"
	ResultTerminated     ResultStatus = "terminated"
	ResultTechnicalIssue ResultStatus = "technical_issue"
)

// InterviewResult 面试结束结果
type InterviewResult struct {
	SessionID   string       `json:"sessionId"`
	Duration    int          `json:"duration"` // 实际时长，秒
	CompletedAt time.Time    `json:"completedAt"`
	Status      ResultStatus `json:"status"`
	NextSteps   string       `json:"nextSteps"`
}

// RoomStatus 房间状态
type RoomStatus struct {
	IsActive         bool `json:"isActive"`
	ParticipantCount int  `json:"participantCount"`
	AIBotJoined      bool `json:"aiBotJoined"`
}

// InterviewQuestion 面试问题
type InterviewQuestion struct {
	ID               string `json:"id"`
	Question         string `json:"question"`
	Category         string `json:"category"`         // introduction | technical | behavioral | cultural
	Difficulty       string `json:"difficulty"`       // easy | medium | hard
	ExpectedDuration int    `json:"expectedDuration"` // 秒
}

// InterviewDetails 候选人视角的面试信息
type InterviewDetails struct {
	SessionID     string        `json:"sessionId"`
	CandidateName string        `json:"candidateName"`
	Position      string        `json:"position"`
	ScheduledAt   time.Time     `json:"scheduledAt"`
	Duration      int           `json:"duration"`
	Status        SessionStatus `json:"status"`
	InterviewType InterviewType `json:"interviewType"`
	Difficulty    Difficulty    `json:"difficulty"`
}
