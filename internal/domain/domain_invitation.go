package domain

import "time"

// Candidate 邀请对象
type Candidate struct {
	ID    string `json:"id" binding:"required"`
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Score int    `json:"score"`
}

// Vacancy 职位
type Vacancy struct {
	Title   string `json:"title" binding:"required"`
	Company string `json:"company"`
}

// InvitationBatch 批量邀请
type InvitationBatch struct {
	Candidates    []Candidate
	Vacancy       Vacancy
	InterviewDate time.Time
	Duration      int
}

// InvitationResult 单个候选人的发送结果
type InvitationResult struct {
	CandidateID string `json:"candidateId"`
	Success     bool   `json:"success"`
	SessionID   string `json:"sessionId,omitempty"`
	EmailID     string `json:"emailId,omitempty"`
	Error       string `json:"error,omitempty"`
}

// InvitationSummary 发送汇总
type InvitationSummary struct {
	Total  int `json:"total"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}
