// Package model 定义数据库表结构
package model

import (
	"time"

	"gorm.io/gorm"
)

// InterviewLink 面试邀请链接表
type InterviewLink struct {
	SessionID      string     `gorm:"column:session_id;primaryKey;size:64" json:"sessionId"`
	Token          string     `gorm:"column:token;type:text;not null" json:"token"`
	CandidateEmail string     `gorm:"column:candidate_email;size:255;not null;index" json:"candidateEmail"`
	CandidateName  string     `gorm:"column:candidate_name;size:255;not null" json:"candidateName"`
	InterviewDate  time.Time  `gorm:"column:interview_date;not null;index" json:"interviewDate"`
	Duration       int        `gorm:"column:duration;not null;default:60" json:"duration"`
	Position       string     `gorm:"column:position;size:255" json:"position"`
	InterviewType  string     `gorm:"column:interview_type;size:32;default:mixed" json:"interviewType"`
	Difficulty     string     `gorm:"column:difficulty;size:32;default:middle" json:"difficulty"`
	ExpiresAt      time.Time  `gorm:"column:expires_at;not null;index" json:"expiresAt"`
	RemindedAt     *time.Time `gorm:"column:reminded_at" json:"remindedAt"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// InterviewSession 面试会话状态表
type InterviewSession struct {
	SessionID string     `gorm:"column:session_id;primaryKey;size:64" json:"sessionId"`
	Status    string     `gorm:"column:status;size:32;not null;default:scheduled;index" json:"status"`
	StartedAt *time.Time `gorm:"column:started_at" json:"startedAt"`
	EndedAt   *time.Time `gorm:"column:ended_at" json:"endedAt"`
	Duration  int        `gorm:"column:duration" json:"duration"`
	Result    string     `gorm:"column:result;size:32" json:"result"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TechnicalIssue 技术问题工单表
type TechnicalIssue struct {
	TicketID    string    `gorm:"column:ticket_id;primaryKey;size:64" json:"ticketId"`
	SessionID   string    `gorm:"column:session_id;size:64;not null;index" json:"sessionId"`
	IssueType   string    `gorm:"column:issue_type;size:32;not null" json:"issueType"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	BrowserInfo string    `gorm:"column:browser_info;size:512" json:"browserInfo"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

var tables = map[string]any{
	"InterviewLink":    &InterviewLink{},
	"InterviewSession": &InterviewSession{},
	"TechnicalIssue":   &TechnicalIssue{},
}

// AutoMigrate 迁移指定名称的表，名称为空时迁移全部
func AutoMigrate(db *gorm.DB, names ...string) error {
	if len(names) == 0 {
		return db.AutoMigrate(&InterviewLink{}, &InterviewSession{}, &TechnicalIssue{})
	}
	for _, name := range names {
		m, ok := tables[name]
		if !ok {
			continue
		}
		if err := db.AutoMigrate(m); err != nil {
			return err
		}
	}
	return nil
}
