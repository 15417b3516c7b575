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

const tableInterviewLink = "InterviewLink"

// linkRepository 实现 domain.LinkRepository 接口
type linkRepository struct {
	dao *Dao
}

// NewLinkRepository 创建 LinkRepository 实例
func NewLinkRepository(dao *Dao) domain.LinkRepository {
	return &linkRepository{dao: dao}
}

func (r *linkRepository) toDomain(m *model.InterviewLink) *domain.InterviewLink {
	if m == nil {
		return nil
	}
	l := &domain.InterviewLink{
		SessionID:      m.SessionID,
		Token:          m.Token,
		CandidateEmail: m.CandidateEmail,
		CandidateName:  m.CandidateName,
		InterviewDate:  m.InterviewDate.UTC(),
		Duration:       m.Duration,
		Position:       m.Position,
		InterviewType:  domain.InterviewType(m.InterviewType),
		Difficulty:     domain.Difficulty(m.Difficulty),
		ExpiresAt:      m.ExpiresAt.UTC(),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.RemindedAt != nil {
		l.RemindedAt = m.RemindedAt.UTC()
	}
	return l
}

func (r *linkRepository) toModel(d *domain.InterviewLink) *model.InterviewLink {
	if d == nil {
		return nil
	}
	m := &model.InterviewLink{
		SessionID:      d.SessionID,
		Token:          d.Token,
		CandidateEmail: d.CandidateEmail,
		CandidateName:  d.CandidateName,
		InterviewDate:  d.InterviewDate.UTC(),
		Duration:       d.Duration,
		Position:       d.Position,
		InterviewType:  string(d.InterviewType),
		Difficulty:     string(d.Difficulty),
		ExpiresAt:      d.ExpiresAt.UTC(),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	if !d.RemindedAt.IsZero() {
		at := d.RemindedAt.UTC()
		m.RemindedAt = &at
	}
	return m
}

// Save 按会话 ID 覆盖写入
func (r *linkRepository) Save(ctx context.Context, link *domain.InterviewLink) (*domain.InterviewLink, error) {
	db, err := r.dao.DB(ctx, tableInterviewLink)
	if err != nil {
		return nil, err
	}
	m := r.toModel(link)
	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"token", "candidate_email", "candidate_name", "interview_date", "duration",
			"position", "interview_type", "difficulty", "expires_at", "reminded_at", "updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

func (r *linkRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.InterviewLink, error) {
	db, err := r.dao.DB(ctx, tableInterviewLink)
	if err != nil {
		return nil, err
	}
	var m model.InterviewLink
	if err := db.Where("session_id = ?", sessionID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLinkNotFound
		}
		return nil, err
	}
	return r.toDomain(&m), nil
}

func (r *linkRepository) ListStale(ctx context.Context, dateBefore, expiresBefore time.Time) ([]*domain.InterviewLink, error) {
	db, err := r.dao.DB(ctx, tableInterviewLink)
	if err != nil {
		return nil, err
	}
	var ms []*model.InterviewLink
	err = db.Where("interview_date < ? OR expires_at < ?", dateBefore.UTC(), expiresBefore.UTC()).
		Order("interview_date").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return r.toDomains(ms), nil
}

func (r *linkRepository) ListDueForReminder(ctx context.Context, from, to time.Time) ([]*domain.InterviewLink, error) {
	db, err := r.dao.DB(ctx, tableInterviewLink)
	if err != nil {
		return nil, err
	}
	var ms []*model.InterviewLink
	err = db.Where("interview_date > ? AND interview_date <= ? AND reminded_at IS NULL", from.UTC(), to.UTC()).
		Order("interview_date").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return r.toDomains(ms), nil
}

func (r *linkRepository) MarkReminded(ctx context.Context, sessionID string, at time.Time) error {
	db, err := r.dao.DB(ctx, tableInterviewLink)
	if err != nil {
		return err
	}
	res := db.Model(&model.InterviewLink{}).Where("session_id = ?", sessionID).Update("reminded_at", at.UTC())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrLinkNotFound
	}
	return nil
}

func (r *linkRepository) toDomains(ms []*model.InterviewLink) []*domain.InterviewLink {
	out := make([]*domain.InterviewLink, 0, len(ms))
	for _, m := range ms {
		out = append(out, r.toDomain(m))
	}
	return out
}

var _ domain.LinkRepository = (*linkRepository)(nil)
