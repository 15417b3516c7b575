package dao

import (
	"context"
	"errors"
	"time"

	"github.com/haierkeys/interview-link-service/internal/domain"
	"github.com/haierkeys/interview-link-service/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const tableInterviewSession = "InterviewSession"

// sessionRepository 实现 domain.SessionRepository 接口
type sessionRepository struct {
	dao *Dao
}

// NewSessionRepository 创建 SessionRepository 实例
func NewSessionRepository(dao *Dao) domain.SessionRepository {
	return &sessionRepository{dao: dao}
}

func optTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}

func ptrTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

func (r *sessionRepository) toDomain(m *model.InterviewSession) *domain.Session {
	return &domain.Session{
		SessionID: m.SessionID,
		Status:    domain.SessionStatus(m.Status),
		StartedAt: optTime(m.StartedAt),
		EndedAt:   optTime(m.EndedAt),
		Duration:  m.Duration,
		Result:    domain.ResultStatus(m.Result),
		UpdatedAt: m.UpdatedAt,
	}
}

func (r *sessionRepository) toModel(d *domain.Session) *model.InterviewSession {
	return &model.InterviewSession{
		SessionID: d.SessionID,
		Status:    string(d.Status),
		StartedAt: ptrTime(d.StartedAt),
		EndedAt:   ptrTime(d.EndedAt),
		Duration:  d.Duration,
		Result:    string(d.Result),
		UpdatedAt: d.UpdatedAt,
	}
}

func (r *sessionRepository) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	db, err := r.dao.DB(ctx, tableInterviewSession)
	if err != nil {
		return nil, err
	}
	var m model.InterviewSession
	if err := db.Where("session_id = ?", sessionID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return r.toDomain(&m), nil
}

// Save 创建或更新会话
func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	db, err := r.dao.DB(ctx, tableInterviewSession)
	if err != nil {
		return err
	}
	m := r.toModel(session)
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "started_at", "ended_at", "duration", "result", "updated_at"}),
	}).Create(m).Error
}

func (r *sessionRepository) CountByStatus(ctx context.Context) (map[domain.SessionStatus]int64, error) {
	db, err := r.dao.DB(ctx, tableInterviewSession)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Status string
		Total  int64
	}
	err = db.Model(&model.InterviewSession{}).
		Select("status, count(*) as total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[domain.SessionStatus]int64, len(rows))
	for _, row := range rows {
		out[domain.SessionStatus(row.Status)] = row.Total
	}
	return out, nil
}

var _ domain.SessionRepository = (*sessionRepository)(nil)
